package rbac

import (
	"net/http"

	"placement-portal/internal/auth"
)

var (
	admin   = auth.RoleAdmin
	hr      = auth.RoleCompanyHR
	officer = auth.RolePlacementOfficer
	student = auth.RoleStudent
)

func roles(r ...auth.Role) []auth.Role { return r }

// DefaultRules is the route table for the API. Anything not listed falls back to
// "authenticated, any role".
func DefaultRules() []Rule {
	return []Rule{
		// public
		{Method: http.MethodPost, Pattern: "/api/auth/login", Public: true},
		{Method: http.MethodPost, Pattern: "/api/auth/register", Public: true},
		{Method: http.MethodGet, Pattern: "/api/auth/verify", Public: true},
		{Method: http.MethodGet, Pattern: "/healthz", Public: true},
		{Method: http.MethodGet, Pattern: "/readyz", Public: true},
		{Method: http.MethodGet, Pattern: "/metrics", Public: true},
		{Method: http.MethodGet, Pattern: "/api/job-openings", Public: true},

		// accounts
		{Pattern: "/api/auth/admin-register", Roles: roles(admin)},
		{Pattern: "/api/admin/**", Roles: roles(admin)},

		// companies
		{Pattern: "/api/company/officer-companies", Roles: roles(officer)},
		{Method: http.MethodPost, Pattern: "/api/company", Roles: roles(admin)},
		{Pattern: "/api/company/**", Roles: roles(admin, officer, hr)},

		// job openings
		{Method: http.MethodGet, Pattern: "/api/job-openings/managed", Roles: roles(admin, hr, officer)},
		{Method: http.MethodGet, Pattern: "/api/job-openings/*", Roles: roles(admin, hr, officer, student)},
		{Method: http.MethodPost, Pattern: "/api/job-openings", Roles: roles(admin, hr)},
		{Method: http.MethodPut, Pattern: "/api/job-openings/**", Roles: roles(admin, hr)},

		// applications
		{Method: http.MethodPost, Pattern: "/api/job-applications", Roles: roles(student)},
		{Method: http.MethodGet, Pattern: "/api/job-applications/**", Roles: roles(admin, hr, officer, student)},
		{Method: http.MethodPut, Pattern: "/api/job-applications/**", Roles: roles(admin, hr)},
		{Method: http.MethodDelete, Pattern: "/api/job-applications/**", Roles: roles(admin)},

		// offers
		{Method: http.MethodGet, Pattern: "/api/job-offers/**", Roles: roles(admin, hr, officer, student)},
		{Method: http.MethodPost, Pattern: "/api/job-offers", Roles: roles(admin, hr)},
		{Method: http.MethodPut, Pattern: "/api/job-offers/*/status", Roles: roles(admin, hr, student)},

		// onboarding
		{Pattern: "/api/onboarding/**", Roles: roles(hr, officer)},

		// interview schedules
		{Method: http.MethodPost, Pattern: "/api/interview-schedules", Roles: roles(admin, hr)},
		{Pattern: "/api/interview-schedules/**", Roles: roles(admin, hr, officer, student)},

		// student profiles
		{Method: http.MethodPost, Pattern: "/api/student/profile", Roles: roles(student)},
		{Method: http.MethodGet, Pattern: "/api/student/profile/me", Roles: roles(student)},
		{Method: http.MethodGet, Pattern: "/api/student/profile", Roles: roles(admin, hr, officer)},
		{Method: http.MethodGet, Pattern: "/api/student/profile/*", Roles: roles(admin, hr, officer)},

		// notifications
		{Pattern: "/api/notifications/**", Roles: roles(admin, hr, officer, student)},

		// reports
		{Method: http.MethodGet, Pattern: "/api/reports/**", Roles: roles(admin, officer, hr)},
	}
}

// BypassPaths never inspect the Authorization header.
func BypassPaths() []string {
	return []string{"/api/auth/login", "/api/auth/register", "/api/auth/verify"}
}
