package rbac

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"testing"

	"placement-portal/internal/auth"
)

func mustAuthorizer(t *testing.T, rules []Rule) *Authorizer {
	t.Helper()
	a, err := NewAuthorizer(rules)
	if err != nil {
		t.Fatalf("authorizer: %v", err)
	}
	return a
}

func principal(roles ...auth.Role) *auth.Principal {
	return &auth.Principal{ID: "u", Email: "u@x.io", Roles: roles}
}

func TestDefaultRulesCompile(t *testing.T) {
	mustAuthorizer(t, DefaultRules())
}

func TestNewAuthorizerRejectsBadRules(t *testing.T) {
	bad := [][]Rule{
		{{Pattern: "api/x"}},
		{{Pattern: "/api/**/x"}},
		{{Pattern: "/api/x*"}},
		{{Pattern: "/api/x", Public: true, Roles: []auth.Role{auth.RoleAdmin}}},
		{{Pattern: "/api/x", Roles: []auth.Role{"ROOT"}}},
	}
	for i, rules := range bad {
		if _, err := NewAuthorizer(rules); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestMoreSpecificPatternWins(t *testing.T) {
	a := mustAuthorizer(t, DefaultRules())

	cases := []struct {
		method, path string
		p            *auth.Principal
		want         Outcome
	}{
		// /api/company/officer-companies is narrower than /api/company/**
		{http.MethodGet, "/api/company/officer-companies", principal(auth.RolePlacementOfficer), Admit},
		{http.MethodGet, "/api/company/officer-companies", principal(auth.RoleCompanyHR), Forbidden},
		{http.MethodGet, "/api/company/7", principal(auth.RoleCompanyHR), Admit},
		{http.MethodGet, "/api/company", principal(auth.RoleStudent), Forbidden},
		{http.MethodPost, "/api/company", principal(auth.RoleCompanyHR), Forbidden},
		{http.MethodPost, "/api/company", principal(auth.RoleAdmin), Admit},

		{http.MethodGet, "/api/job-openings", nil, Admit},
		{http.MethodGet, "/api/job-openings/managed", principal(auth.RoleStudent), Forbidden},
		{http.MethodGet, "/api/job-openings/12", principal(auth.RoleStudent), Admit},
		{http.MethodGet, "/api/job-openings/12", nil, Unauthenticated},
		{http.MethodPut, "/api/job-openings/12/status", principal(auth.RoleCompanyHR), Admit},

		{http.MethodPost, "/api/job-applications", principal(auth.RoleStudent), Admit},
		{http.MethodPost, "/api/job-applications", principal(auth.RoleAdmin), Forbidden},
		{http.MethodGet, "/api/job-applications/3", principal(auth.RoleStudent), Admit},
		{http.MethodDelete, "/api/job-applications/3", principal(auth.RoleCompanyHR), Forbidden},

		{http.MethodPut, "/api/job-offers/4/status", principal(auth.RoleStudent), Admit},
		{http.MethodPost, "/api/job-offers", principal(auth.RoleStudent), Forbidden},

		{http.MethodPost, "/api/interview-schedules", principal(auth.RolePlacementOfficer), Forbidden},
		{http.MethodGet, "/api/interview-schedules", principal(auth.RolePlacementOfficer), Admit},

		{http.MethodGet, "/api/onboarding", principal(auth.RoleStudent), Forbidden},

		{http.MethodGet, "/api/student/profile/me", principal(auth.RoleStudent), Admit},
		{http.MethodGet, "/api/student/profile/me", principal(auth.RolePlacementOfficer), Forbidden},
		{http.MethodGet, "/api/student/profile/u-7", principal(auth.RolePlacementOfficer), Admit},
		{http.MethodGet, "/api/student/profile/u-7", principal(auth.RoleStudent), Forbidden},
		{http.MethodGet, "/api/student/profile", principal(auth.RoleCompanyHR), Admit},
		{http.MethodPost, "/api/student/profile", principal(auth.RoleStudent), Admit},
		{http.MethodPost, "/api/student/profile", principal(auth.RoleAdmin), Forbidden},
		{http.MethodGet, "/api/reports/department-wise", principal(auth.RoleStudent), Forbidden},
		{http.MethodGet, "/api/admin/users", principal(auth.RoleStudent, auth.RoleAdmin), Admit},
	}
	for _, tc := range cases {
		got := a.Authorize(tc.p, tc.method, tc.path)
		if got.Outcome != tc.want {
			t.Fatalf("%s %s: expected %s, got %s (rule %s)", tc.method, tc.path, tc.want, got.Outcome, got.Rule.Pattern)
		}
	}
}

func TestAnonymousOnAdminRouteIsUnauthenticated(t *testing.T) {
	a := mustAuthorizer(t, DefaultRules())
	d := a.Authorize(nil, http.MethodGet, "/api/admin/users")
	if d.Outcome != Unauthenticated || d.Outcome.HTTPStatus() != http.StatusUnauthorized {
		t.Fatalf("expected 401 outcome, got %s", d.Outcome)
	}
}

func TestTieBreakPrefersSmallerRoleSet(t *testing.T) {
	wide := Rule{Method: http.MethodGet, Pattern: "/api/x/**", Roles: []auth.Role{auth.RoleAdmin, auth.RoleStudent}}
	narrow := Rule{Method: http.MethodGet, Pattern: "/api/x/**", Roles: []auth.Role{auth.RoleAdmin}}

	// Order of declaration must not matter.
	for _, rules := range [][]Rule{{wide, narrow}, {narrow, wide}} {
		a := mustAuthorizer(t, rules)
		if got := a.Authorize(principal(auth.RoleStudent), http.MethodGet, "/api/x/1").Outcome; got != Forbidden {
			t.Fatalf("expected narrower rule to win, got %s", got)
		}
	}
}

func TestPublicRuleLosesTieToProtected(t *testing.T) {
	a := mustAuthorizer(t, []Rule{
		{Pattern: "/api/y", Public: true},
		{Pattern: "/api/y"},
	})
	if got := a.Authorize(nil, http.MethodGet, "/api/y").Outcome; got != Unauthenticated {
		t.Fatalf("expected protected rule to win tie, got %s", got)
	}
}

func TestFallbackRequiresAuthentication(t *testing.T) {
	a := mustAuthorizer(t, DefaultRules())

	d := a.Authorize(nil, http.MethodGet, "/api/auth/me")
	if d.Outcome != Unauthenticated || !d.Fallback {
		t.Fatalf("expected fallback 401, got %+v", d)
	}
	d = a.Authorize(principal(auth.RoleStudent), http.MethodPatch, "/no/such/route")
	if d.Outcome != Admit || !d.Fallback {
		t.Fatalf("expected fallback admit, got %+v", d)
	}
}

func TestAuthorizeIsTotal(t *testing.T) {
	a := mustAuthorizer(t, DefaultRules())
	rng := rand.New(rand.NewSource(42))

	methods := []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD", "get", ""}
	segments := []string{"api", "admin", "company", "job-openings", "job-applications", "**", "*", "7", "", "..", "officer-companies", "status"}
	principals := []*auth.Principal{nil, principal(), principal(auth.RoleStudent), principal(auth.RoleAdmin), principal(auth.RoleCompanyHR, auth.RolePlacementOfficer)}

	for i := 0; i < 5000; i++ {
		n := rng.Intn(6)
		parts := make([]string, n)
		for j := range parts {
			parts[j] = segments[rng.Intn(len(segments))]
		}
		path := "/" + strings.Join(parts, "/")
		method := methods[rng.Intn(len(methods))]
		p := principals[rng.Intn(len(principals))]

		d := a.Authorize(p, method, path)
		switch d.Outcome {
		case Admit, Unauthenticated, Forbidden:
		default:
			t.Fatalf("%s %s: undefined outcome %d", method, path, d.Outcome)
		}
		if d.Outcome == Forbidden && p == nil {
			t.Fatalf("%s %s: anonymous callers must get 401, not 403", method, path)
		}
		if d.Outcome == Unauthenticated && p != nil {
			t.Fatalf("%s %s: authenticated callers must never get 401", method, path)
		}
	}
}

func TestRulesOrderedBySpecificity(t *testing.T) {
	a := mustAuthorizer(t, DefaultRules())
	rules := a.Rules()
	pos := func(method, pattern string) int {
		for i, r := range rules {
			if r.Method == method && r.Pattern == pattern {
				return i
			}
		}
		t.Fatalf("rule %s %s missing", method, pattern)
		return -1
	}
	if pos("", "/api/company/officer-companies") > pos("", "/api/company/**") {
		t.Fatalf("expected specific rule before wildcard: %v", fmt.Sprint(rules))
	}
}
