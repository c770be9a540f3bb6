package placement

import (
	"context"
	"errors"

	"placement-portal/internal/tenancy"
)

var (
	ErrNotFound        = errors.New("placement: not found")
	ErrInvalidArgument = errors.New("placement: invalid argument")
	ErrConflict        = errors.New("placement: conflict")
)

// Repository is the persistence contract for placement records.
//
// Every List method takes the caller's resolved scope and must filter with it;
// by-id getters return the row unfiltered and the service checks it against scope.
type Repository interface {
	CreateCompany(ctx context.Context, c *Company) error
	GetCompany(ctx context.Context, id int64) (Company, error)
	ListCompanies(ctx context.Context, scope tenancy.Scope) ([]Company, error)

	CreateOpening(ctx context.Context, o *JobOpening) error
	GetOpening(ctx context.Context, id int64) (JobOpening, error)
	// ListOpenings filters by status as well when status is not empty.
	ListOpenings(ctx context.Context, scope tenancy.Scope, status OpeningStatus) ([]JobOpening, error)
	SetOpeningStatus(ctx context.Context, id int64, status OpeningStatus) error

	// CreateApplication returns ErrConflict when the student already applied to the opening.
	CreateApplication(ctx context.Context, a *Application) error
	GetApplication(ctx context.Context, id int64) (Application, error)
	ListApplications(ctx context.Context, scope tenancy.Scope) ([]Application, error)
	SetApplicationStatus(ctx context.Context, id int64, status ApplicationStatus) error
	DeleteApplication(ctx context.Context, id int64) error

	// CreateOffer also moves the application to SELECTED in the same write.
	// It returns ErrConflict when the application already has an offer.
	CreateOffer(ctx context.Context, o *Offer) error
	GetOffer(ctx context.Context, id int64) (Offer, error)
	ListOffers(ctx context.Context, scope tenancy.Scope) ([]Offer, error)
	SetOfferStatus(ctx context.Context, id int64, status OfferStatus) error

	// CreateOnboarding also moves the offer to ONBOARDING in the same write.
	// It returns ErrConflict when the offer already has an onboarding record.
	CreateOnboarding(ctx context.Context, o *Onboarding) error
	ListOnboardings(ctx context.Context, scope tenancy.Scope) ([]Onboarding, error)

	// CreateInterview also moves the application to INTERVIEW_SCHEDULED in the same write.
	CreateInterview(ctx context.Context, i *Interview) error
	ListInterviews(ctx context.Context, scope tenancy.Scope) ([]Interview, error)

	// UpsertProfile creates or replaces the student's profile, keeping its id and CreatedAt.
	UpsertProfile(ctx context.Context, p *StudentProfile) error
	GetProfile(ctx context.Context, studentID string) (StudentProfile, error)
	// ListProfiles matches a company scope against the student's applications:
	// a profile is visible when its student applied to a company in scope.
	ListProfiles(ctx context.Context, scope tenancy.Scope) ([]StudentProfile, error)

	CreateNotification(ctx context.Context, n *Notification) error
	GetNotification(ctx context.Context, id int64) (Notification, error)
	// ListNotifications returns the recipient's own notifications plus broadcasts to companies in scope.
	ListNotifications(ctx context.Context, recipientID string, scope tenancy.Scope) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}
