package handlers

import (
	"errors"
	"net/http"

	"clinicflow/services/availability"
	"clinicflow/services/calendar"
	"clinicflow/services/flow"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses. Unclassified errors
// become a 500 with a generic message so internals never leak to patients.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *flow.ValidationError
		transitionErr *flow.InvalidTransitionError
		staleErr      *flow.StaleFlowStateError
		conflictErr   *flow.BookingConflictError
		notFoundErr   *availability.NotFoundError
		circuitErr    *calendar.CircuitOpenError
		externalErr   *calendar.ExternalServiceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.Is(err, flow.ErrFlowNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active booking flow"})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error(), "from": transitionErr.From, "to": transitionErr.To})
	case errors.As(err, &staleErr):
		c.JSON(http.StatusConflict, gin.H{"error": staleErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Error()})
	case errors.As(err, &circuitErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "calendar temporarily unavailable", "retryAfterSeconds": int(circuitErr.RetryAfter.Seconds())})
	case errors.As(err, &externalErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "calendar provider error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
