package placement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"placement-portal/internal/tenancy"
	"placement-portal/pkg/logger"
)

// Service applies tenant scope to every placement operation.
//
// Scope invariants:
// - list operations return only rows the scope permits;
// - a by-id read of an existing row outside scope fails with tenancy.ErrForbidden, not ErrNotFound;
// - mutations by company staff require the company to be in scope.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) now() time.Time { return s.clock().UTC() }

// CompanyExists backs account registration checks.
func (s *Service) CompanyExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetCompany(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

func (s *Service) CreateCompany(ctx context.Context, scope tenancy.Scope, req CreateCompanyRequest) (Company, error) {
	if scope.Kind() != tenancy.KindUnrestricted {
		return Company{}, tenancy.ErrForbidden
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Company{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	c := Company{
		Name:        name,
		Industry:    req.Industry,
		Location:    req.Location,
		Website:     req.Website,
		Description: req.Description,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateCompany(ctx, &c); err != nil {
		return Company{}, err
	}
	return c, nil
}

func (s *Service) ListCompanies(ctx context.Context, scope tenancy.Scope) ([]Company, error) {
	return s.repo.ListCompanies(ctx, scope)
}

func (s *Service) GetCompany(ctx context.Context, scope tenancy.Scope, id int64) (Company, error) {
	c, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if !scope.AllowsCompany(c.ID) {
		return Company{}, tenancy.ErrForbidden
	}
	return c, nil
}

// ListPublicOpenings is the unauthenticated catalog: OPEN openings of every company.
func (s *Service) ListPublicOpenings(ctx context.Context) ([]JobOpening, error) {
	return s.repo.ListOpenings(ctx, tenancy.Unrestricted(), OpeningOpen)
}

// ListManagedOpenings returns openings of every status for companies in scope.
func (s *Service) ListManagedOpenings(ctx context.Context, scope tenancy.Scope) ([]JobOpening, error) {
	return s.repo.ListOpenings(ctx, scope, "")
}

// GetOpening returns OPEN openings to anyone and other openings to their company's staff.
func (s *Service) GetOpening(ctx context.Context, scope tenancy.Scope, id int64) (JobOpening, error) {
	o, err := s.repo.GetOpening(ctx, id)
	if err != nil {
		return JobOpening{}, err
	}
	if o.Status != OpeningOpen && !scope.AllowsCompany(o.CompanyID) {
		return JobOpening{}, tenancy.ErrForbidden
	}
	return o, nil
}

type CreateOpeningRequest struct {
	// CompanyID may be omitted when the scope covers exactly one company.
	CompanyID   int64         `json:"companyId"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	SalaryLPA   float64       `json:"salaryLpa"`
	Deadline    *time.Time    `json:"deadline"`
	Status      OpeningStatus `json:"status"`
}

func (s *Service) CreateOpening(ctx context.Context, scope tenancy.Scope, req CreateOpeningRequest) (JobOpening, error) {
	if req.CompanyID == 0 {
		id, ok := scope.Single()
		if !ok {
			return JobOpening{}, fmt.Errorf("%w: companyId is required", ErrInvalidArgument)
		}
		req.CompanyID = id
	}
	if strings.TrimSpace(req.Title) == "" {
		return JobOpening{}, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	if req.Status == "" {
		req.Status = OpeningDraft
	}
	if !req.Status.Valid() {
		return JobOpening{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, req.Status)
	}
	if !scope.AllowsCompany(req.CompanyID) {
		return JobOpening{}, tenancy.ErrForbidden
	}
	if _, err := s.repo.GetCompany(ctx, req.CompanyID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return JobOpening{}, fmt.Errorf("%w: company %d does not exist", ErrInvalidArgument, req.CompanyID)
		}
		return JobOpening{}, err
	}

	o := JobOpening{
		CompanyID:   req.CompanyID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		SalaryLPA:   req.SalaryLPA,
		Deadline:    req.Deadline,
		Status:      req.Status,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateOpening(ctx, &o); err != nil {
		return JobOpening{}, err
	}
	return o, nil
}

func (s *Service) SetOpeningStatus(ctx context.Context, scope tenancy.Scope, id int64, status OpeningStatus) (JobOpening, error) {
	if !status.Valid() {
		return JobOpening{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	o, err := s.repo.GetOpening(ctx, id)
	if err != nil {
		return JobOpening{}, err
	}
	if !scope.AllowsCompany(o.CompanyID) {
		return JobOpening{}, tenancy.ErrForbidden
	}
	if err := s.repo.SetOpeningStatus(ctx, id, status); err != nil {
		return JobOpening{}, err
	}
	o.Status = status
	return o, nil
}

// notify is best-effort: a failed notification never fails the operation that caused it.
func (s *Service) notify(ctx context.Context, n Notification) {
	n.CreatedAt = s.now()
	if err := s.repo.CreateNotification(ctx, &n); err != nil {
		logger.From(ctx).Warn("notification failed", "title", n.Title, "err", err)
	}
}
