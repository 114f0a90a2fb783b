package staff

import (
	"context"
	"time"
)

type Repository interface {
	// WindowsOn returns the availability windows applying to the given
	// staff member on the given calendar day: date-specific rows for that
	// day plus weekly rows matching its day of week.
	WindowsOn(ctx context.Context, userID int64, date time.Time) ([]Availability, error)
}
