package placement

import (
	"context"
	"sync"

	"placement-portal/internal/tenancy"
)

// MemoryRepo is an in-memory repository for tests and local development.
// Rows are kept in insertion order, which is also id order.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64

	companies     []Company
	openings      []JobOpening
	applications  []Application
	offers        []Offer
	onboardings   []Onboarding
	interviews    []Interview
	profiles      []StudentProfile
	notifications []Notification
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func find[T any](rows []T, match func(T) bool) int {
	for i, row := range rows {
		if match(row) {
			return i
		}
	}
	return -1
}

func filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func (r *MemoryRepo) CreateCompany(ctx context.Context, c *Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	r.companies = append(r.companies, *c)
	return nil
}

func (r *MemoryRepo) GetCompany(ctx context.Context, id int64) (Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.companies, func(c Company) bool { return c.ID == id })
	if i < 0 {
		return Company{}, ErrNotFound
	}
	return r.companies[i], nil
}

func (r *MemoryRepo) ListCompanies(ctx context.Context, scope tenancy.Scope) ([]Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.companies, func(c Company) bool { return scope.AllowsCompany(c.ID) }), nil
}

func (r *MemoryRepo) CreateOpening(ctx context.Context, o *JobOpening) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.id()
	r.openings = append(r.openings, *o)
	return nil
}

func (r *MemoryRepo) GetOpening(ctx context.Context, id int64) (JobOpening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.openings, func(o JobOpening) bool { return o.ID == id })
	if i < 0 {
		return JobOpening{}, ErrNotFound
	}
	return r.openings[i], nil
}

func (r *MemoryRepo) ListOpenings(ctx context.Context, scope tenancy.Scope, status OpeningStatus) ([]JobOpening, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.openings, func(o JobOpening) bool {
		return scope.AllowsCompany(o.CompanyID) && (status == "" || o.Status == status)
	}), nil
}

func (r *MemoryRepo) SetOpeningStatus(ctx context.Context, id int64, status OpeningStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.openings, func(o JobOpening) bool { return o.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.openings[i].Status = status
	return nil
}

func (r *MemoryRepo) CreateApplication(ctx context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if find(r.applications, func(x Application) bool {
		return x.OpeningID == a.OpeningID && x.StudentID == a.StudentID
	}) >= 0 {
		return ErrConflict
	}
	a.ID = r.id()
	r.applications = append(r.applications, *a)
	return nil
}

func (r *MemoryRepo) GetApplication(ctx context.Context, id int64) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.applications, func(a Application) bool { return a.ID == id })
	if i < 0 {
		return Application{}, ErrNotFound
	}
	return r.applications[i], nil
}

func (r *MemoryRepo) ListApplications(ctx context.Context, scope tenancy.Scope) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.applications, func(a Application) bool { return scope.Permits(a.CompanyID, a.StudentID) }), nil
}

func (r *MemoryRepo) SetApplicationStatus(ctx context.Context, id int64, status ApplicationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.applications, func(a Application) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.applications[i].Status = status
	return nil
}

func (r *MemoryRepo) DeleteApplication(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.applications, func(a Application) bool { return a.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.applications = append(r.applications[:i], r.applications[i+1:]...)
	return nil
}

func (r *MemoryRepo) CreateOffer(ctx context.Context, o *Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := find(r.applications, func(a Application) bool { return a.ID == o.ApplicationID })
	if app < 0 {
		return ErrNotFound
	}
	if find(r.offers, func(x Offer) bool { return x.ApplicationID == o.ApplicationID }) >= 0 {
		return ErrConflict
	}
	o.ID = r.id()
	r.offers = append(r.offers, *o)
	r.applications[app].Status = ApplicationSelected
	return nil
}

func (r *MemoryRepo) GetOffer(ctx context.Context, id int64) (Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.offers, func(o Offer) bool { return o.ID == id })
	if i < 0 {
		return Offer{}, ErrNotFound
	}
	return r.offers[i], nil
}

func (r *MemoryRepo) ListOffers(ctx context.Context, scope tenancy.Scope) ([]Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.offers, func(o Offer) bool { return scope.Permits(o.CompanyID, o.StudentID) }), nil
}

func (r *MemoryRepo) SetOfferStatus(ctx context.Context, id int64, status OfferStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.offers, func(o Offer) bool { return o.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.offers[i].Status = status
	return nil
}

func (r *MemoryRepo) CreateOnboarding(ctx context.Context, o *Onboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer := find(r.offers, func(x Offer) bool { return x.ID == o.OfferID })
	if offer < 0 {
		return ErrNotFound
	}
	if find(r.onboardings, func(x Onboarding) bool { return x.OfferID == o.OfferID }) >= 0 {
		return ErrConflict
	}
	o.ID = r.id()
	r.onboardings = append(r.onboardings, *o)
	r.offers[offer].Status = OfferOnboarding
	return nil
}

func (r *MemoryRepo) ListOnboardings(ctx context.Context, scope tenancy.Scope) ([]Onboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.onboardings, func(o Onboarding) bool { return scope.Permits(o.CompanyID, o.StudentID) }), nil
}

func (r *MemoryRepo) CreateInterview(ctx context.Context, i *Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := find(r.applications, func(a Application) bool { return a.ID == i.ApplicationID })
	if app < 0 {
		return ErrNotFound
	}
	i.ID = r.id()
	r.interviews = append(r.interviews, *i)
	r.applications[app].Status = ApplicationInterview
	return nil
}

func (r *MemoryRepo) ListInterviews(ctx context.Context, scope tenancy.Scope) ([]Interview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.interviews, func(i Interview) bool { return scope.Permits(i.CompanyID, i.StudentID) }), nil
}

func (r *MemoryRepo) UpsertProfile(ctx context.Context, p *StudentProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := find(r.profiles, func(x StudentProfile) bool { return x.StudentID == p.StudentID }); i >= 0 {
		p.ID = r.profiles[i].ID
		p.CreatedAt = r.profiles[i].CreatedAt
		r.profiles[i] = *p
		return nil
	}
	p.ID = r.id()
	r.profiles = append(r.profiles, *p)
	return nil
}

func (r *MemoryRepo) GetProfile(ctx context.Context, studentID string) (StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.profiles, func(p StudentProfile) bool { return p.StudentID == studentID })
	if i < 0 {
		return StudentProfile{}, ErrNotFound
	}
	return r.profiles[i], nil
}

func (r *MemoryRepo) ListProfiles(ctx context.Context, scope tenancy.Scope) ([]StudentProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if scope.Kind() != tenancy.KindCompanies {
		return filter(r.profiles, func(p StudentProfile) bool { return scope.Permits(0, p.StudentID) }), nil
	}
	applicants := map[string]bool{}
	for _, a := range r.applications {
		if scope.AllowsCompany(a.CompanyID) {
			applicants[a.StudentID] = true
		}
	}
	return filter(r.profiles, func(p StudentProfile) bool { return applicants[p.StudentID] }), nil
}

func (r *MemoryRepo) CreateNotification(ctx context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = r.id()
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *MemoryRepo) GetNotification(ctx context.Context, id int64) (Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.notifications, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return Notification{}, ErrNotFound
	}
	return r.notifications[i], nil
}

func (r *MemoryRepo) ListNotifications(ctx context.Context, recipientID string, scope tenancy.Scope) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filter(r.notifications, func(n Notification) bool {
		if n.Broadcast() {
			return n.CompanyID != nil && scope.AllowsCompany(*n.CompanyID)
		}
		return recipientID != "" && n.RecipientID == recipientID
	}), nil
}

func (r *MemoryRepo) MarkNotificationRead(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := find(r.notifications, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	r.notifications[i].Read = true
	return nil
}
