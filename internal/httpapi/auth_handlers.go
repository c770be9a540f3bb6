package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"placement-portal/internal/accounts"
	"placement-portal/internal/audit"
	"placement-portal/internal/auth"
	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string   `json:"token"`
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Roles     []string `json:"roles"`
	ExpiresAt int64    `json:"expires_at"`
}

func (h Handlers) recordLogin(c *gin.Context, result string) {
	if h.Metrics != nil {
		h.Metrics.RecordLoginAttempt(c.Request.Context(), result)
	}
}

func (h Handlers) auditLogin(c *gin.Context, typ audit.EventType, email, userID, reason string) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.LogLogin(c.Request.Context(), typ, email, userID, c.ClientIP(), reason); err != nil {
		logger.FromGin(c).Warn("audit append failed", "type", string(typ), "err", err)
	}
}

// Login exchanges email and password for a signed token.
// Unknown emails and wrong passwords get the same 401 body.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		badRequest(c, "email and password required")
		return
	}
	ctx := c.Request.Context()
	log := logger.FromGin(c)

	throttle := h.Throttle
	if throttle == nil {
		throttle = accounts.NopThrottle{}
	}
	allowed, err := throttle.Allow(ctx, email)
	if err != nil {
		// Throttle storage is best-effort; logins keep working without it.
		log.Warn("login throttle unavailable", "err", err)
		allowed = true
	}
	if !allowed {
		h.recordLogin(c, "throttled")
		h.auditLogin(c, audit.EventLoginThrottled, email, "", "too many failed attempts")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many failed login attempts, try again later"})
		return
	}

	sess, err := h.Auth.AuthenticateByCredential(ctx, email, req.Password)
	if err != nil {
		if !auth.IsAuthenticationFailure(err) {
			writeError(c, err)
			return
		}
		if ferr := throttle.Fail(ctx, email); ferr != nil {
			log.Warn("login throttle update failed", "err", ferr)
		}
		h.recordLogin(c, "failure")
		reason := "invalid credential"
		if errors.Is(err, auth.ErrNotFound) {
			reason = "unknown email"
		}
		h.auditLogin(c, audit.EventLoginFailed, email, "", reason)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := throttle.Reset(ctx, email); err != nil {
		log.Warn("login throttle reset failed", "err", err)
	}
	h.recordLogin(c, "success")
	h.auditLogin(c, audit.EventLoginSucceeded, email, sess.Principal.ID, "")

	c.JSON(http.StatusOK, loginResponse{
		Token:     sess.Token,
		ID:        sess.Principal.ID,
		Email:     sess.Principal.Email,
		Name:      sess.DisplayName,
		Roles:     auth.RoleStrings(sess.Principal.Roles),
		ExpiresAt: sess.Principal.ExpiresAt.Unix(),
	})
}

// Verify reports the identity inside a bearer token. It sits on a bypass path,
// so header problems are its own to report: 400 for a bad header, 401 for a bad token.
func (h Handlers) Verify(c *gin.Context) {
	raw, err := auth.ExtractBearer(c.GetHeader("Authorization"))
	if err != nil {
		badRequest(c, "missing or malformed authorization header")
		return
	}
	p, err := h.Auth.AuthenticateByToken(raw)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, auth.ErrExpired) {
			msg = "token expired"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         p.ID,
		"email":      p.Email,
		"roles":      auth.RoleStrings(p.Roles),
		"expires_at": p.ExpiresAt.Unix(),
	})
}

type registerRequest struct {
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	CompanyID *int64   `json:"companyId"`
}

func (r registerRequest) toAccounts() (accounts.RegisterRequest, error) {
	roles, err := auth.ParseRoles(r.Roles)
	if err != nil {
		return accounts.RegisterRequest{}, fmt.Errorf("%w: %v", accounts.ErrInvalidArgument, err)
	}
	return accounts.RegisterRequest{
		Email:     r.Email,
		Name:      r.Name,
		Password:  r.Password,
		Roles:     roles,
		CompanyID: r.CompanyID,
	}, nil
}

func (h Handlers) auditRegistered(c *gin.Context, actorID string, u accounts.User) {
	if h.Audit == nil {
		return
	}
	roles := strings.Join(auth.RoleStrings(u.Roles), ",")
	if err := h.Audit.LogUserRegistered(c.Request.Context(), actorID, u.ID, u.Email, c.ClientIP(), roles); err != nil {
		logger.FromGin(c).Warn("audit append failed", "type", string(audit.EventUserRegistered), "err", err)
	}
}

// RegisterStudent is public self-registration; it only ever creates STUDENT accounts.
func (h Handlers) RegisterStudent(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid json")
		return
	}
	req, err := body.toAccounts()
	if err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.auditRegistered(c, "", u)
	c.JSON(http.StatusCreated, u)
}

func (h Handlers) AdminRegister(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid json")
		return
	}
	req, err := body.toAccounts()
	if err != nil {
		writeError(c, err)
		return
	}
	u, err := h.Accounts.AdminRegister(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	h.auditRegistered(c, p.ID, u)
	c.JSON(http.StatusCreated, u)
}

// Me returns the caller's account together with the scope it currently resolves to.
func (h Handlers) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	u, err := h.Accounts.Get(c.Request.Context(), p.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := gin.H{"user": u}
	if s, err := h.Scopes.Resolve(c.Request.Context(), p); err == nil {
		out["scope"] = gin.H{"kind": s.Kind().String(), "company_ids": s.CompanyIDs()}
	} else {
		_, msg := publicError(c, err)
		out["scope"] = gin.H{"error": msg}
	}
	c.JSON(http.StatusOK, out)
}
