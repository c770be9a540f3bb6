package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"placement-portal/internal/tenancy"
)

type ApplyRequest struct {
	OpeningID  int64  `json:"jobOpeningId"`
	ResumeLink string `json:"resumeLink"`
}

// Apply files an application for the scope's owning student. The opening must be OPEN.
func (s *Service) Apply(ctx context.Context, scope tenancy.Scope, req ApplyRequest) (Application, error) {
	if scope.Kind() != tenancy.KindOwnRecords || scope.Owner() == "" {
		return Application{}, tenancy.ErrForbidden
	}
	o, err := s.repo.GetOpening(ctx, req.OpeningID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Application{}, fmt.Errorf("%w: job opening %d does not exist", ErrInvalidArgument, req.OpeningID)
		}
		return Application{}, err
	}
	if o.Status != OpeningOpen {
		return Application{}, fmt.Errorf("%w: job opening is not open", ErrConflict)
	}

	a := Application{
		OpeningID:  o.ID,
		CompanyID:  o.CompanyID,
		StudentID:  scope.Owner(),
		ResumeLink: req.ResumeLink,
		Status:     ApplicationApplied,
		AppliedAt:  s.now(),
	}
	if err := s.repo.CreateApplication(ctx, &a); err != nil {
		return Application{}, err
	}

	company := o.CompanyID
	s.notify(ctx, Notification{
		CompanyID: &company,
		Title:     "New application",
		Message:   fmt.Sprintf("A student applied to %q.", o.Title),
	})
	return a, nil
}

func (s *Service) ListApplications(ctx context.Context, scope tenancy.Scope) ([]Application, error) {
	return s.repo.ListApplications(ctx, scope)
}

func (s *Service) GetApplication(ctx context.Context, scope tenancy.Scope, id int64) (Application, error) {
	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if err := scope.Check(a.CompanyID, a.StudentID); err != nil {
		return Application{}, err
	}
	return a, nil
}

// staffApplication loads an application that the scope manages as company staff.
func (s *Service) staffApplication(ctx context.Context, scope tenancy.Scope, id int64) (Application, error) {
	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !scope.AllowsCompany(a.CompanyID) {
		return Application{}, tenancy.ErrForbidden
	}
	return a, nil
}

func (s *Service) SetApplicationStatus(ctx context.Context, scope tenancy.Scope, id int64, status ApplicationStatus) (Application, error) {
	if !status.Valid() {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	a, err := s.staffApplication(ctx, scope, id)
	if err != nil {
		return Application{}, err
	}
	if err := s.repo.SetApplicationStatus(ctx, id, status); err != nil {
		return Application{}, err
	}
	a.Status = status
	return a, nil
}

func (s *Service) DeleteApplication(ctx context.Context, scope tenancy.Scope, id int64) error {
	if _, err := s.staffApplication(ctx, scope, id); err != nil {
		return err
	}
	return s.repo.DeleteApplication(ctx, id)
}

type CreateOfferRequest struct {
	ApplicationID int64      `json:"jobApplicationId"`
	Salary        float64    `json:"salary"`
	JoiningDate   *time.Time `json:"joiningDate"`
}

// CreateOffer marks the application SELECTED and notifies the student.
func (s *Service) CreateOffer(ctx context.Context, scope tenancy.Scope, req CreateOfferRequest) (Offer, error) {
	if req.Salary < 0 {
		return Offer{}, fmt.Errorf("%w: salary must not be negative", ErrInvalidArgument)
	}
	a, err := s.staffApplication(ctx, scope, req.ApplicationID)
	if err != nil {
		return Offer{}, err
	}
	if a.Status == ApplicationRejected {
		return Offer{}, fmt.Errorf("%w: application was rejected", ErrConflict)
	}

	now := s.now()
	o := Offer{
		ApplicationID: a.ID,
		CompanyID:     a.CompanyID,
		StudentID:     a.StudentID,
		Salary:        req.Salary,
		JoiningDate:   req.JoiningDate,
		Status:        OfferPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateOffer(ctx, &o); err != nil {
		return Offer{}, err
	}

	s.notify(ctx, Notification{
		RecipientID: a.StudentID,
		Title:       "Job offer received",
		Message:     fmt.Sprintf("You received an offer for application #%d.", a.ID),
	})
	return o, nil
}

func (s *Service) ListOffers(ctx context.Context, scope tenancy.Scope) ([]Offer, error) {
	return s.repo.ListOffers(ctx, scope)
}

func (s *Service) GetOffer(ctx context.Context, scope tenancy.Scope, id int64) (Offer, error) {
	o, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return Offer{}, err
	}
	if err := scope.Check(o.CompanyID, o.StudentID); err != nil {
		return Offer{}, err
	}
	return o, nil
}

// SetOfferStatus moves an offer along its lifecycle.
//
//	student (own offer): PENDING -> ACCEPTED | REJECTED
//	company staff:       ACCEPTED -> ONBOARDING -> ONBOARDED
func (s *Service) SetOfferStatus(ctx context.Context, scope tenancy.Scope, id int64, status OfferStatus) (Offer, error) {
	o, err := s.repo.GetOffer(ctx, id)
	if err != nil {
		return Offer{}, err
	}

	var allowed bool
	switch {
	case scope.AllowsCompany(o.CompanyID):
		allowed = (o.Status == OfferAccepted && status == OfferOnboarding) ||
			(o.Status == OfferOnboarding && status == OfferOnboarded)
	case scope.Kind() == tenancy.KindOwnRecords && scope.Owner() == o.StudentID:
		allowed = o.Status == OfferPending && (status == OfferAccepted || status == OfferRejected)
	default:
		return Offer{}, tenancy.ErrForbidden
	}
	if !allowed {
		return Offer{}, fmt.Errorf("%w: cannot move offer from %s to %s", ErrConflict, o.Status, status)
	}

	if err := s.repo.SetOfferStatus(ctx, id, status); err != nil {
		return Offer{}, err
	}
	o.Status = status
	o.UpdatedAt = s.now()
	return o, nil
}

type CreateOnboardingRequest struct {
	OfferID   int64      `json:"jobOfferId"`
	StartDate *time.Time `json:"startDate"`
	Remarks   string     `json:"remarks"`
}

// CreateOnboarding starts onboarding for an ACCEPTED offer and moves the offer to ONBOARDING.
func (s *Service) CreateOnboarding(ctx context.Context, scope tenancy.Scope, req CreateOnboardingRequest) (Onboarding, error) {
	o, err := s.repo.GetOffer(ctx, req.OfferID)
	if err != nil {
		return Onboarding{}, err
	}
	if !scope.AllowsCompany(o.CompanyID) {
		return Onboarding{}, tenancy.ErrForbidden
	}
	if o.Status != OfferAccepted {
		return Onboarding{}, fmt.Errorf("%w: offer is %s, not %s", ErrConflict, o.Status, OfferAccepted)
	}

	ob := Onboarding{
		OfferID:   o.ID,
		CompanyID: o.CompanyID,
		StudentID: o.StudentID,
		StartDate: req.StartDate,
		Status:    OnboardingPending,
		Remarks:   req.Remarks,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateOnboarding(ctx, &ob); err != nil {
		return Onboarding{}, err
	}
	return ob, nil
}

func (s *Service) ListOnboardings(ctx context.Context, scope tenancy.Scope) ([]Onboarding, error) {
	return s.repo.ListOnboardings(ctx, scope)
}

type ScheduleInterviewRequest struct {
	ApplicationID int64     `json:"jobApplicationId"`
	ScheduledAt   time.Time `json:"interviewDateTime"`
	Interviewer   string    `json:"interviewerName"`
	Location      string    `json:"location"`
}

// ScheduleInterview marks the application INTERVIEW_SCHEDULED and notifies the student.
func (s *Service) ScheduleInterview(ctx context.Context, scope tenancy.Scope, req ScheduleInterviewRequest) (Interview, error) {
	if req.ScheduledAt.IsZero() {
		return Interview{}, fmt.Errorf("%w: interviewDateTime is required", ErrInvalidArgument)
	}
	a, err := s.staffApplication(ctx, scope, req.ApplicationID)
	if err != nil {
		return Interview{}, err
	}

	i := Interview{
		ApplicationID: a.ID,
		CompanyID:     a.CompanyID,
		StudentID:     a.StudentID,
		ScheduledAt:   req.ScheduledAt.UTC(),
		Interviewer:   req.Interviewer,
		Location:      req.Location,
		Status:        "SCHEDULED",
		CreatedAt:     s.now(),
	}
	if err := s.repo.CreateInterview(ctx, &i); err != nil {
		return Interview{}, err
	}

	s.notify(ctx, Notification{
		RecipientID: a.StudentID,
		Title:       "Interview scheduled",
		Message:     fmt.Sprintf("Interview for application #%d on %s.", a.ID, i.ScheduledAt.Format(time.RFC3339)),
	})
	return i, nil
}

func (s *Service) ListInterviews(ctx context.Context, scope tenancy.Scope) ([]Interview, error) {
	return s.repo.ListInterviews(ctx, scope)
}

func (s *Service) ListNotifications(ctx context.Context, scope tenancy.Scope, recipientID string) ([]Notification, error) {
	return s.repo.ListNotifications(ctx, recipientID, scope)
}

// MarkNotificationRead is allowed for the direct recipient only; broadcasts stay unread.
func (s *Service) MarkNotificationRead(ctx context.Context, recipientID string, id int64) (Notification, error) {
	n, err := s.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.Broadcast() || n.RecipientID != recipientID {
		return Notification{}, tenancy.ErrForbidden
	}
	if err := s.repo.MarkNotificationRead(ctx, id); err != nil {
		return Notification{}, err
	}
	n.Read = true
	return n, nil
}
