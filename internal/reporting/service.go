package reporting

import (
	"context"
	"errors"
	"sort"

	"placement-portal/internal/placement"
	"placement-portal/internal/tenancy"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Every method must apply the scope; the service never filters by tenant itself.
// - placement.Repository satisfies this interface.
type Repository interface {
	ListOpenings(ctx context.Context, scope tenancy.Scope, status placement.OpeningStatus) ([]placement.JobOpening, error)
	ListApplications(ctx context.Context, scope tenancy.Scope) ([]placement.Application, error)
	ListOffers(ctx context.Context, scope tenancy.Scope) ([]placement.Offer, error)
	ListInterviews(ctx context.Context, scope tenancy.Scope) ([]placement.Interview, error)
	ListProfiles(ctx context.Context, scope tenancy.Scope) ([]placement.StudentProfile, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func accepted(s placement.OfferStatus) bool {
	return s == placement.OfferAccepted || s == placement.OfferOnboarding || s == placement.OfferOnboarded
}

func (s *Service) PlacementSummary(ctx context.Context, scope tenancy.Scope, r TimeRange) (PlacementSummary, error) {
	if !r.From.IsZero() && !r.To.IsZero() && !r.To.After(r.From) {
		return PlacementSummary{}, ErrInvalidRequest
	}
	if s == nil || s.repo == nil {
		return PlacementSummary{}, errors.New("reporting: repository not configured")
	}

	openings, err := s.repo.ListOpenings(ctx, scope, placement.OpeningOpen)
	if err != nil {
		return PlacementSummary{}, err
	}
	apps, err := s.repo.ListApplications(ctx, scope)
	if err != nil {
		return PlacementSummary{}, err
	}
	offers, err := s.repo.ListOffers(ctx, scope)
	if err != nil {
		return PlacementSummary{}, err
	}
	interviews, err := s.repo.ListInterviews(ctx, scope)
	if err != nil {
		return PlacementSummary{}, err
	}

	out := PlacementSummary{Range: r, OpenOpenings: len(openings)}
	perCompany := map[int64]*CompanySummary{}
	company := func(id int64) *CompanySummary {
		c, ok := perCompany[id]
		if !ok {
			c = &CompanySummary{CompanyID: id}
			perCompany[id] = c
		}
		return c
	}

	applied := map[string]struct{}{}
	for _, a := range apps {
		if !r.contains(a.AppliedAt) {
			continue
		}
		out.Applications++
		applied[a.StudentID] = struct{}{}
		company(a.CompanyID).Applications++
	}

	for _, i := range interviews {
		if r.contains(i.ScheduledAt) {
			out.Interviews++
		}
	}

	placed := map[string]struct{}{}
	var salaryTotal float64
	for _, o := range offers {
		if !r.contains(o.CreatedAt) {
			continue
		}
		out.OffersMade++
		c := company(o.CompanyID)
		c.OffersMade++
		switch {
		case accepted(o.Status):
			out.OffersAccepted++
			c.OffersAccepted++
			salaryTotal += o.Salary
			placed[o.StudentID] = struct{}{}
		case o.Status == placement.OfferRejected:
			out.OffersRejected++
		}
	}

	out.StudentsApplied = len(applied)
	out.StudentsPlaced = len(placed)
	if out.StudentsApplied > 0 {
		out.PlacementRate = float64(out.StudentsPlaced) / float64(out.StudentsApplied)
	}
	if out.OffersAccepted > 0 {
		out.AverageSalary = salaryTotal / float64(out.OffersAccepted)
	}

	out.Companies = make([]CompanySummary, 0, len(perCompany))
	for _, c := range perCompany {
		out.Companies = append(out.Companies, *c)
	}
	sort.Slice(out.Companies, func(i, j int) bool { return out.Companies[i].CompanyID < out.Companies[j].CompanyID })
	return out, nil
}

// DepartmentWise reports per-branch placement over the profiles and offers in scope,
// ordered by department.
func (s *Service) DepartmentWise(ctx context.Context, scope tenancy.Scope) ([]DepartmentSummary, error) {
	if s == nil || s.repo == nil {
		return nil, errors.New("reporting: repository not configured")
	}
	profiles, err := s.repo.ListProfiles(ctx, scope)
	if err != nil {
		return nil, err
	}
	offers, err := s.repo.ListOffers(ctx, scope)
	if err != nil {
		return nil, err
	}

	best := map[string]float64{}
	for _, o := range offers {
		if !accepted(o.Status) {
			continue
		}
		if cur, ok := best[o.StudentID]; !ok || o.Salary > cur {
			best[o.StudentID] = o.Salary
		}
	}

	type acc struct {
		DepartmentSummary
		total float64
	}
	depts := map[string]*acc{}
	for _, p := range profiles {
		d, ok := depts[p.Branch]
		if !ok {
			d = &acc{DepartmentSummary: DepartmentSummary{Department: p.Branch}}
			depts[p.Branch] = d
		}
		d.TotalStudents++
		if salary, ok := best[p.StudentID]; ok {
			d.PlacedStudents++
			d.total += salary
		}
	}

	out := make([]DepartmentSummary, 0, len(depts))
	for _, d := range depts {
		if d.PlacedStudents > 0 {
			d.AverageCTC = d.total / float64(d.PlacedStudents)
		}
		out = append(out, d.DepartmentSummary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}
