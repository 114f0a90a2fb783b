package api

import (
	"net/http"

	"bookwise/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Fail writes err as a JSON error response, mapping the error kind to an
// HTTP status. Unclassified errors become 500s with a generic message so
// internals never leak to clients.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindForbidden:
		status = http.StatusForbidden
	}

	if status == http.StatusInternalServerError {
		c.JSON(status, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(status, ErrorResponse{
		Error:   err.Error(),
		Kind:    kind.String(),
		Details: apperr.DetailsOf(err),
	})
}
