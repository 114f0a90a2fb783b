package server

import (
	"time"

	"bookwise/internal/timeutil"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds domain validation tags to gin's binding engine.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// clock: a "HH:MM" time of day, e.g. staff windows and schedule starts.
	_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := timeutil.ParseClock(fl.Field().String())
		return err == nil
	})

	// timezone: an IANA zone name the host can resolve.
	_ = v.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		if name == "" {
			return true
		}
		_, err := time.LoadLocation(name)
		return err == nil
	})
}
