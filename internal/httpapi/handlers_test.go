package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"placement-portal/internal/accounts"
	"placement-portal/internal/audit"
	"placement-portal/internal/auth"
	"placement-portal/internal/config"
	"placement-portal/internal/placement"
	"placement-portal/internal/rbac"
	"placement-portal/internal/reporting"
	"placement-portal/internal/tenancy"
	"placement-portal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type harness struct {
	t      *testing.T
	ctx    context.Context
	now    time.Time
	router *gin.Engine

	codec     *auth.Codec
	users     *accounts.MemoryRepo
	accounts  *accounts.Service
	placement *placement.Service
	audit     *audit.MemoryRepo
	ready     map[string]ReadinessCheck
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		t:     t,
		ctx:   context.Background(),
		now:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		ready: map[string]ReadinessCheck{},
	}
	clock := func() time.Time { return h.now }

	codec, err := auth.NewCodec(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 24 * time.Hour})
	require.NoError(t, err)
	h.codec = codec

	h.users = accounts.NewMemoryRepo()
	placementRepo := placement.NewMemoryRepo()
	h.placement = placement.NewService(placementRepo)
	h.accounts = accounts.NewService(h.users, h.placement, bcrypt.MinCost)
	h.audit = audit.NewMemoryRepo()

	authorizer, err := rbac.NewAuthorizer(rbac.DefaultRules())
	require.NoError(t, err)
	authn := auth.NewAuthenticator(codec, h.accounts, clock)

	handlers := Handlers{
		Auth:      authn,
		Accounts:  h.accounts,
		Throttle:  accounts.NewMemoryThrottle(3, 15*time.Minute, clock),
		Scopes:    tenancy.NewResolver(h.accounts, h.accounts, nil),
		Placement: h.placement,
		Reports:   reporting.NewService(placementRepo),
		Audit:     audit.NewService(h.audit),
		Ready:     h.ready,
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.Middleware(logger.NewWithWriter(io.Discard, "test")),
		auth.Gate(auth.GateConfig{Authenticator: authn, Public: authorizer, Bypass: rbac.BypassPaths()}),
		rbac.Enforce(authorizer, nil),
	)
	handlers.Mount(r)
	r.NoRoute(NoRoute)
	h.router = r
	return h
}

func (h *harness) user(email string, roles []auth.Role, companyID *int64) accounts.User {
	h.t.Helper()
	u, err := h.accounts.AdminRegister(h.ctx, accounts.RegisterRequest{
		Email: email, Name: email, Password: "password1", Roles: roles, CompanyID: companyID,
	})
	require.NoError(h.t, err)
	return u
}

func (h *harness) token(u accounts.User) string {
	h.t.Helper()
	tok, err := h.codec.Issue(h.now, u.ID, u.Email, u.Roles)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) seedCompanies(n int) {
	h.t.Helper()
	admin := tenancy.Unrestricted()
	var ids []int64
	for i := 0; i < n; i++ {
		c, err := h.placement.CreateCompany(h.ctx, admin, placement.CreateCompanyRequest{Name: "Company"})
		require.NoError(h.t, err)
		ids = append(ids, c.ID)
	}
	for _, id := range ids {
		_, err := h.placement.CreateOpening(h.ctx, admin, placement.CreateOpeningRequest{CompanyID: id, Title: "Engineer", Status: placement.OpeningOpen})
		require.NoError(h.t, err)
		_, err = h.placement.CreateOpening(h.ctx, admin, placement.CreateOpeningRequest{CompanyID: id, Title: "Draft"})
		require.NoError(h.t, err)
	}
}

func (h *harness) do(method, path, authz string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func bearer(tok string) string { return "Bearer " + tok }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func ptr(v int64) *int64 { return &v }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func TestHRWithoutCompanyGetsConflict(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(1)
	orphan := accounts.User{ID: "hr-orphan", Email: "orphan@acme.io", Roles: []auth.Role{auth.RoleCompanyHR}}
	require.NoError(t, h.users.Create(h.ctx, orphan))

	w := h.do(http.MethodGet, "/api/job-openings/managed", bearer(h.token(orphan)), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "no company assigned")
}

func TestMeReportsScopeErrorsWithoutInternals(t *testing.T) {
	h := newHarness(t)
	orphan := accounts.User{ID: "hr-orphan", Email: "orphan@acme.io", Roles: []auth.Role{auth.RoleCompanyHR}}
	require.NoError(t, h.users.Create(h.ctx, orphan))

	w := h.do(http.MethodGet, "/api/auth/me", bearer(h.token(orphan)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Scope map[string]any `json:"scope"`
	}](t, w)
	assert.Equal(t, "no company assigned to this account", body.Scope["error"])
}

func TestPublicErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	status, msg := publicError(c, errors.New("dial tcp 10.0.0.3:5432: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", msg)

	status, msg = publicError(c, auth.ErrNotFound)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid credentials", msg)
}

func TestOfficerListsOpeningsOfAssignedCompaniesOnly(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(12)
	officer := h.user("officer@campus.edu", []auth.Role{auth.RolePlacementOfficer}, nil)
	for _, cid := range []int64{7, 9} {
		_, err := h.accounts.AssignOfficer(h.ctx, officer.ID, cid)
		require.NoError(t, err)
	}

	w := h.do(http.MethodGet, "/api/job-openings/managed", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	openings := decode[[]placement.JobOpening](t, w)
	require.Len(t, openings, 4)
	for _, o := range openings {
		assert.Contains(t, []int64{7, 9}, o.CompanyID)
	}

	w = h.do(http.MethodGet, "/api/company/officer-companies", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]placement.Company](t, w), 2)

	w = h.do(http.MethodGet, "/api/company/3", bearer(h.token(officer)), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOfficerWithoutAssignmentsSeesNothing(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(2)
	officer := h.user("idle@campus.edu", []auth.Role{auth.RolePlacementOfficer}, nil)

	w := h.do(http.MethodGet, "/api/job-openings/managed", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]placement.JobOpening](t, w))
}

func TestStudentCannotReadAnotherStudentsApplication(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(1)
	a := h.user("a@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	b := h.user("b@campus.edu", []auth.Role{auth.RoleStudent}, nil)

	openings := decode[[]placement.JobOpening](t, h.do(http.MethodGet, "/api/job-openings", "", nil))
	require.Len(t, openings, 1)

	w := h.do(http.MethodPost, "/api/job-applications", bearer(h.token(a)), gin.H{"jobOpeningId": openings[0].ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	app := decode[placement.Application](t, w)

	w = h.do(http.MethodGet, "/api/job-applications/"+itoa(app.ID), bearer(h.token(b)), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodGet, "/api/job-applications/"+itoa(app.ID), bearer(h.token(a)), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/job-applications", bearer(h.token(b)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]placement.Application](t, w))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	h := newHarness(t)
	u := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	tok := h.token(u)

	h.now = h.now.Add(24*time.Hour - time.Second)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/auth/me", bearer(tok), nil).Code)

	h.now = h.now.Add(2 * time.Second)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/me", bearer(tok), nil).Code)
}

func TestAnonymousAndWrongRoleOnAdminRoutes(t *testing.T) {
	h := newHarness(t)
	student := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	admin := h.user("root@campus.edu", []auth.Role{auth.RoleAdmin}, nil)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/admin/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/admin/users", bearer(h.token(student)), nil).Code)

	w := h.do(http.MethodGet, "/api/admin/users", bearer(h.token(admin)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]accounts.User](t, w), 2)
}

func TestLoginFlowAndThrottle(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "New@Campus.edu", "name": "New", "password": "password1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@campus.edu", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[loginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"STUDENT"}, resp.Roles)
	assert.Equal(t, h.now.Add(24*time.Hour).Unix(), resp.ExpiresAt)

	for i := 0; i < 3; i++ {
		w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@campus.edu", "password": "wrong-pass"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	}
	w = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "new@campus.edu", "password": "password1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var types []audit.EventType
	for _, e := range h.audit.Events() {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, audit.EventUserRegistered)
	assert.Contains(t, types, audit.EventLoginSucceeded)
	assert.Contains(t, types, audit.EventLoginFailed)
	assert.Contains(t, types, audit.EventLoginThrottled)
}

func TestUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	h := newHarness(t)
	h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)

	a := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "nobody@campus.edu", "password": "password1"})
	b := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "s@campus.edu", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, a.Code)
	assert.Equal(t, a.Code, b.Code)
	assert.JSONEq(t, a.Body.String(), b.Body.String())
}

func TestSelfRegistrationCannotPickRoles(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "sneaky@campus.edu", "name": "S", "password": "password1", "roles": []string{"ADMIN"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerify(t *testing.T) {
	h := newHarness(t)
	u := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/auth/verify", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/auth/verify", "Token abc", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/auth/verify", bearer("not.a.jwt"), nil).Code)

	w := h.do(http.MethodGet, "/api/auth/verify", bearer(h.token(u)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, u.ID, decode[map[string]any](t, w)["id"])
}

func TestPublicCatalogHeaderHandling(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(2)

	w := h.do(http.MethodGet, "/api/job-openings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]placement.JobOpening](t, w), 2)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/api/job-openings", "Basic Zm9v", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/job-openings", bearer("garbage"), nil).Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	u := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/does-not-exist", "", nil).Code)

	w := h.do(http.MethodGet, "/api/does-not-exist", bearer(h.token(u)), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestHRCreatesOpeningForOwnCompanyOnly(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(2)
	hr := h.user("hr@acme.io", []auth.Role{auth.RoleCompanyHR}, ptr(1))

	w := h.do(http.MethodPost, "/api/job-openings", bearer(h.token(hr)), gin.H{"title": "Analyst", "status": "OPEN"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(1), decode[placement.JobOpening](t, w).CompanyID)

	w = h.do(http.MethodPost, "/api/job-openings", bearer(h.token(hr)), gin.H{"companyId": 2, "title": "Analyst"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodPost, "/api/company", bearer(h.token(hr)), gin.H{"name": "Rogue"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOfferLifecycleOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(1)
	hr := h.user("hr@acme.io", []auth.Role{auth.RoleCompanyHR}, ptr(1))
	student := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	openings := decode[[]placement.JobOpening](t, h.do(http.MethodGet, "/api/job-openings", "", nil))
	require.Len(t, openings, 1)

	app := decode[placement.Application](t, h.do(http.MethodPost, "/api/job-applications", bearer(h.token(student)), gin.H{"jobOpeningId": openings[0].ID}))

	w := h.do(http.MethodPost, "/api/job-offers", bearer(h.token(hr)), gin.H{"jobApplicationId": app.ID, "salary": 1200000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	offer := decode[placement.Offer](t, w)

	w = h.do(http.MethodPut, "/api/job-offers/"+itoa(offer.ID)+"/status", bearer(h.token(student)), gin.H{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/onboarding", bearer(h.token(hr)), gin.H{"jobOfferId": offer.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/notifications", bearer(h.token(student)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[[]placement.Notification](t, w))

	w = h.do(http.MethodGet, "/api/reports/summary?from=2026-01-01", bearer(h.token(hr)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[reporting.PlacementSummary](t, w)
	assert.Equal(t, 1, summary.OffersAccepted)
	assert.Equal(t, 1, summary.StudentsPlaced)
	w = h.do(http.MethodGet, "/api/reports/summary?from=yesterday", bearer(h.token(hr)), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentProfilesOverHTTP(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(2)
	student := h.user("s@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	other := h.user("o@campus.edu", []auth.Role{auth.RoleStudent}, nil)
	officer := h.user("officer@campus.edu", []auth.Role{auth.RolePlacementOfficer}, nil)
	_, err := h.accounts.AssignOfficer(h.ctx, officer.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/student/profile/me", bearer(h.token(student)), nil).Code)

	for _, u := range []accounts.User{student, other} {
		w := h.do(http.MethodPost, "/api/student/profile", bearer(h.token(u)), gin.H{"enrollmentNumber": u.Email, "branch": "CSE", "cgpa": 8.2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	w := h.do(http.MethodGet, "/api/student/profile/me", bearer(h.token(student)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, student.ID, decode[placement.StudentProfile](t, w).StudentID)

	openings := decode[[]placement.JobOpening](t, h.do(http.MethodGet, "/api/job-openings", "", nil))
	w = h.do(http.MethodPost, "/api/job-applications", bearer(h.token(student)), gin.H{"jobOpeningId": openings[0].ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, int64(1), decode[placement.Application](t, w).CompanyID)

	w = h.do(http.MethodGet, "/api/student/profile", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]placement.StudentProfile](t, w), 1)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/student/profile/"+student.ID, bearer(h.token(officer)), nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/student/profile/"+other.ID, bearer(h.token(officer)), nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/student/profile/"+other.ID, bearer(h.token(student)), nil).Code)

	w = h.do(http.MethodGet, "/api/reports/department-wise", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rows := decode[[]reporting.DepartmentSummary](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, "CSE", rows[0].Department)
	assert.Equal(t, 1, rows[0].TotalStudents)
}

func TestAdminAssignsOfficer(t *testing.T) {
	h := newHarness(t)
	h.seedCompanies(2)
	admin := h.user("root@campus.edu", []auth.Role{auth.RoleAdmin}, nil)
	officer := h.user("officer@campus.edu", []auth.Role{auth.RolePlacementOfficer}, nil)

	w := h.do(http.MethodPost, "/api/admin/officers/"+officer.ID+"/companies/2", bearer(h.token(admin)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/job-openings/managed", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]placement.JobOpening](t, w), 2)

	w = h.do(http.MethodDelete, "/api/admin/officers/"+officer.ID+"/companies/2", bearer(h.token(admin)), nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	// Scope is resolved per request, so the revocation applies to the same token.
	w = h.do(http.MethodGet, "/api/job-openings/managed", bearer(h.token(officer)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]placement.JobOpening](t, w))

	w = h.do(http.MethodGet, "/api/admin/audit?limit=10", bearer(h.token(admin)), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]audit.Event](t, w), 2)
}

func TestHealthAndReadiness(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/readyz", "", nil).Code)

	h.ready["postgres"] = func(ctx context.Context) error { return errors.New("connection refused") }
	w := h.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrExpired, http.StatusUnauthorized},
		{tenancy.ErrForbidden, http.StatusForbidden},
		{tenancy.ErrNoTenantAssigned, http.StatusConflict},
		{placement.ErrNotFound, http.StatusNotFound},
		{accounts.ErrEmailTaken, http.StatusConflict},
		{accounts.ErrInvalidArgument, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
