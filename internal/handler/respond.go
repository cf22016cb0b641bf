package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"maintenance-app/tracking-service/internal/models"
)

// statusFor maps the service's error kinds onto HTTP codes. Handlers never
// look at backend-specific errors, only these sentinels.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrTransitionInFlight):
		return http.StatusConflict
	case errors.Is(err, models.ErrTransient), errors.Is(err, models.ErrMissingIndex):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
