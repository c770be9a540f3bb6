package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"placement-portal/internal/accounts"
	"placement-portal/internal/audit"
	"placement-portal/internal/auth"
	"placement-portal/internal/placement"
	"placement-portal/internal/reporting"
	"placement-portal/internal/tenancy"
	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoginRecorder receives one result per credential login.
type LoginRecorder interface {
	RecordLoginAttempt(ctx context.Context, result string)
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, resolve scope, call internal services, return JSON.
type Handlers struct {
	Auth      *auth.Authenticator
	Accounts  *accounts.Service
	Throttle  accounts.Throttle
	Scopes    *tenancy.Resolver
	Placement *placement.Service
	Reports   *reporting.Service
	Audit     *audit.Service
	Metrics   LoginRecorder

	// Ready maps a dependency name to its check, for /readyz.
	Ready map[string]ReadinessCheck
}

// Mount registers every API route. Authentication and role checks run as
// engine-wide middleware before any of these handlers.
func (h Handlers) Mount(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/register", h.RegisterStudent)
		authGroup.GET("/verify", h.Verify)
		authGroup.POST("/admin-register", h.AdminRegister)
		authGroup.GET("/me", h.Me)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/users/:id", h.GetUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.POST("/officers/:id/companies/:cid", h.AssignOfficer)
		admin.DELETE("/officers/:id/companies/:cid", h.UnassignOfficer)
		admin.GET("/audit", h.AuditEvents)
	}

	companies := api.Group("/company")
	{
		companies.POST("", h.CreateCompany)
		companies.GET("", h.ListCompanies)
		companies.GET("/officer-companies", h.OfficerCompanies)
		companies.GET("/:id", h.GetCompany)
	}

	openings := api.Group("/job-openings")
	{
		openings.GET("", h.ListPublicOpenings)
		openings.GET("/managed", h.ListManagedOpenings)
		openings.GET("/:id", h.GetOpening)
		openings.POST("", h.CreateOpening)
		openings.PUT("/:id/status", h.SetOpeningStatus)
	}

	applications := api.Group("/job-applications")
	{
		applications.POST("", h.Apply)
		applications.GET("", h.ListApplications)
		applications.GET("/:id", h.GetApplication)
		applications.PUT("/:id/status", h.SetApplicationStatus)
		applications.DELETE("/:id", h.DeleteApplication)
	}

	offers := api.Group("/job-offers")
	{
		offers.POST("", h.CreateOffer)
		offers.GET("", h.ListOffers)
		offers.GET("/:id", h.GetOffer)
		offers.PUT("/:id/status", h.SetOfferStatus)
	}

	onboarding := api.Group("/onboarding")
	{
		onboarding.GET("", h.ListOnboardings)
		onboarding.POST("", h.CreateOnboarding)
	}

	interviews := api.Group("/interview-schedules")
	{
		interviews.GET("", h.ListInterviews)
		interviews.POST("", h.ScheduleInterview)
	}

	profiles := api.Group("/student/profile")
	{
		profiles.POST("", h.SaveProfile)
		profiles.GET("", h.ListProfiles)
		profiles.GET("/me", h.MyProfile)
		profiles.GET("/:userId", h.GetProfile)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
	}

	api.GET("/reports/summary", h.PlacementSummary)
	api.GET("/reports/department-wise", h.DepartmentWise)
}

// principal returns the caller attached by the gate. Handlers behind a
// protected rule always have one; the check guards against miswiring.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return p, ok
}

// scope resolves the caller's tenant scope; it runs on every scoped request and is never cached.
func (h Handlers) scope(c *gin.Context) (tenancy.Scope, auth.Principal, bool) {
	p, ok := principal(c)
	if !ok {
		return tenancy.Scope{}, auth.Principal{}, false
	}
	s, err := h.Scopes.Resolve(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return tenancy.Scope{}, auth.Principal{}, false
	}
	logger.FromGin(c).Debug("scope resolved", "user_id", p.ID, "scope", s.String())
	return s, p, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}
