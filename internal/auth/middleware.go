package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerScheme = "Bearer"

// PublicRoutes reports whether a route admits anonymous callers.
type PublicRoutes interface {
	IsPublic(method, path string) bool
}

// ValidationRecorder receives one result per token validation attempt.
type ValidationRecorder interface {
	RecordAuthValidation(ctx context.Context, result string)
}

type GateConfig struct {
	Authenticator *Authenticator
	Public        PublicRoutes

	// Bypass paths never inspect the Authorization header (login, register, verify).
	Bypass []string

	Metrics ValidationRecorder
}

// ExtractBearer returns the token from an Authorization header value.
func ExtractBearer(header string) (string, error) {
	h := strings.TrimSpace(header)
	if h == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", ErrMalformedHeader
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", ErrMalformedHeader
	}
	return tok, nil
}

// Gate authenticates the request and attaches a Principal, or marks it anonymous.
// It does not perform role checks; those belong to internal/rbac.
func Gate(cfg GateConfig) gin.HandlerFunc {
	bypass := make(map[string]struct{}, len(cfg.Bypass))
	for _, p := range cfg.Bypass {
		bypass[p] = struct{}{}
	}

	record := func(ctx context.Context, result string) {
		if cfg.Metrics != nil {
			cfg.Metrics.RecordAuthValidation(ctx, result)
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Already authenticated earlier in the chain.
		if p, ok := PrincipalFrom(ctx); ok {
			setGinIdentity(c, p)
			c.Next()
			return
		}

		path := c.Request.URL.Path
		if _, ok := bypass[path]; ok {
			c.Request = c.Request.WithContext(WithAnonymous(ctx))
			c.Next()
			return
		}

		public := cfg.Public != nil && cfg.Public.IsPublic(c.Request.Method, path)

		raw, err := ExtractBearer(c.GetHeader(authorizationHeader))
		if err != nil {
			switch {
			case errors.Is(err, ErrMissingToken) && public:
				c.Request = c.Request.WithContext(WithAnonymous(ctx))
				c.Next()
			case errors.Is(err, ErrMissingToken):
				record(ctx, "missing")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			case public:
				record(ctx, "malformed_header")
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed authorization header"})
			default:
				record(ctx, "malformed_header")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			}
			return
		}

		p, err := cfg.Authenticator.AuthenticateByToken(raw)
		if err != nil {
			record(ctx, "failure")
			logger.FromGin(c).Debug("token rejected", "path", path, "reason", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		record(ctx, "success")

		c.Request = c.Request.WithContext(WithPrincipal(ctx, p))
		setGinIdentity(c, p)
		c.Next()
	}
}

// Also store on gin context so the request logger can pick it up.
func setGinIdentity(c *gin.Context, p Principal) {
	c.Set("user_id", p.ID)
	c.Set("roles", RoleStrings(p.Roles))
}
