package httpapi

import (
	"errors"
	"net/http"

	"placement-portal/internal/accounts"
	"placement-portal/internal/audit"
	"placement-portal/internal/auth"
	"placement-portal/internal/placement"
	"placement-portal/internal/reporting"
	"placement-portal/internal/tenancy"
	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// statusFor is the single place where domain errors become HTTP statuses.
func statusFor(err error) int {
	switch {
	case auth.IsAuthenticationFailure(err):
		return http.StatusUnauthorized
	case errors.Is(err, tenancy.ErrForbidden), errors.Is(err, accounts.ErrRoleNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, tenancy.ErrNoTenantAssigned):
		return http.StatusConflict
	case errors.Is(err, accounts.ErrNotFound), errors.Is(err, placement.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, accounts.ErrEmailTaken), errors.Is(err, placement.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, accounts.ErrInvalidArgument),
		errors.Is(err, placement.ErrInvalidArgument),
		errors.Is(err, reporting.ErrInvalidRequest),
		errors.Is(err, audit.ErrInvalidEvent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts with the mapped status.
func writeError(c *gin.Context, err error) {
	status, msg := publicError(c, err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// publicError maps err to a status and the message a client may see.
// Authentication failures share one message; 5xx messages never carry internals.
func publicError(c *gin.Context, err error) (int, string) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case status == http.StatusUnauthorized:
		msg = "invalid credentials"
	case errors.Is(err, tenancy.ErrForbidden):
		msg = "forbidden"
	case errors.Is(err, tenancy.ErrNoTenantAssigned):
		msg = "no company assigned to this account"
	case status == http.StatusInternalServerError:
		logger.FromGin(c).Error("request failed", "err", err)
		msg = "internal error"
	}
	return status, msg
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// NoRoute answers requests that passed the gate but match no handler.
func NoRoute(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
