package httpapi

import (
	"net/http"
	"time"

	"placement-portal/internal/placement"
	"placement-portal/internal/reporting"
	"placement-portal/internal/tenancy"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status string `json:"status"`
}

func bindStatus(c *gin.Context) (string, bool) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		badRequest(c, "status required")
		return "", false
	}
	return req.Status, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid json")
		return false
	}
	return true
}

// respond writes v or maps err.
func respond[T any](c *gin.Context, status int, v T, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, v)
}

// --- Companies ---

func (h Handlers) CreateCompany(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.CreateCompany(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

func (h Handlers) ListCompanies(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListCompanies(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) GetCompany(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Placement.GetCompany(c.Request.Context(), s, id)
	respond(c, http.StatusOK, out, err)
}

// OfficerCompanies lists the companies assigned to the calling officer.
// Only a company-set scope has assignments; any other scope lists nothing.
func (h Handlers) OfficerCompanies(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	if s.Kind() != tenancy.KindCompanies {
		c.JSON(http.StatusOK, []placement.Company{})
		return
	}
	out, err := h.Placement.ListCompanies(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

// --- Job openings ---

func (h Handlers) ListPublicOpenings(c *gin.Context) {
	out, err := h.Placement.ListPublicOpenings(c.Request.Context())
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) ListManagedOpenings(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListManagedOpenings(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) GetOpening(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Placement.GetOpening(c.Request.Context(), s, id)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) CreateOpening(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.CreateOpeningRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.CreateOpening(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

func (h Handlers) SetOpeningStatus(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	out, err := h.Placement.SetOpeningStatus(c.Request.Context(), s, id, placement.OpeningStatus(status))
	respond(c, http.StatusOK, out, err)
}

// --- Applications ---

func (h Handlers) Apply(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.ApplyRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.Apply(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

func (h Handlers) ListApplications(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListApplications(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) GetApplication(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Placement.GetApplication(c.Request.Context(), s, id)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) SetApplicationStatus(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	out, err := h.Placement.SetApplicationStatus(c.Request.Context(), s, id, placement.ApplicationStatus(status))
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) DeleteApplication(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.Placement.DeleteApplication(c.Request.Context(), s, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Offers ---

func (h Handlers) CreateOffer(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.CreateOfferRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.CreateOffer(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

func (h Handlers) ListOffers(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListOffers(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) GetOffer(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Placement.GetOffer(c.Request.Context(), s, id)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) SetOfferStatus(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	status, ok := bindStatus(c)
	if !ok {
		return
	}
	out, err := h.Placement.SetOfferStatus(c.Request.Context(), s, id, placement.OfferStatus(status))
	respond(c, http.StatusOK, out, err)
}

// --- Onboarding ---

func (h Handlers) ListOnboardings(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListOnboardings(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) CreateOnboarding(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.CreateOnboardingRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.CreateOnboarding(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

// --- Interview schedules ---

func (h Handlers) ListInterviews(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListInterviews(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) ScheduleInterview(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.ScheduleInterviewRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.ScheduleInterview(c.Request.Context(), s, req)
	respond(c, http.StatusCreated, out, err)
}

// --- Student profiles ---

func (h Handlers) SaveProfile(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var req placement.SaveProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.Placement.SaveProfile(c.Request.Context(), s, req)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) MyProfile(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.MyProfile(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) ListProfiles(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListProfiles(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) GetProfile(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.GetProfile(c.Request.Context(), s, c.Param("userId"))
	respond(c, http.StatusOK, out, err)
}

// --- Notifications ---

func (h Handlers) ListNotifications(c *gin.Context) {
	s, p, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Placement.ListNotifications(c.Request.Context(), s, p.ID)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) MarkNotificationRead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	out, err := h.Placement.MarkNotificationRead(c.Request.Context(), p.ID, id)
	respond(c, http.StatusOK, out, err)
}

// --- Reports ---

// parseDay accepts RFC 3339 timestamps or plain dates.
func parseDay(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}

func (h Handlers) PlacementSummary(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	var r reporting.TimeRange
	for name, dst := range map[string]*time.Time{"from": &r.From, "to": &r.To} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		t, err := parseDay(v)
		if err != nil {
			badRequest(c, name+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
			return
		}
		*dst = t
	}
	out, err := h.Reports.PlacementSummary(c.Request.Context(), s, r)
	respond(c, http.StatusOK, out, err)
}

func (h Handlers) DepartmentWise(c *gin.Context) {
	s, _, ok := h.scope(c)
	if !ok {
		return
	}
	out, err := h.Reports.DepartmentWise(c.Request.Context(), s)
	respond(c, http.StatusOK, out, err)
}
