package rbac

import (
	"context"
	"net/http"

	"placement-portal/internal/auth"
	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// DecisionRecorder receives one outcome per authorization decision.
type DecisionRecorder interface {
	RecordAuthzDecision(ctx context.Context, method, outcome string)
}

// Enforce applies the rule table to every request. It must run after auth.Gate.
func Enforce(a *Authorizer, metrics DecisionRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var principal *auth.Principal
		if p, ok := auth.PrincipalFrom(ctx); ok {
			principal = &p
		}

		d := a.Authorize(principal, c.Request.Method, c.Request.URL.Path)
		if metrics != nil {
			metrics.RecordAuthzDecision(ctx, c.Request.Method, d.Outcome.String())
		}

		switch d.Outcome {
		case Admit:
			c.Next()
		case Unauthenticated:
			logger.FromGin(c).Warn("access denied",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"outcome", d.Outcome.String(),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		default:
			logger.FromGin(c).Warn("access denied",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"outcome", d.Outcome.String(),
				"user_id", principal.ID,
				"rule", d.Rule.Pattern,
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		}
	}
}
