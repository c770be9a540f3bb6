package placement

import "time"

// Tenancy invariant:
// - every record below a company carries company_id, and every record owned by a
//   student carries student_id, so a scope predicate applies without joins.

type Company struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	Location    string    `json:"location,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type OpeningStatus string

const (
	OpeningDraft  OpeningStatus = "DRAFT"
	OpeningOpen   OpeningStatus = "OPEN"
	OpeningClosed OpeningStatus = "CLOSED"
)

func (s OpeningStatus) Valid() bool {
	return s == OpeningDraft || s == OpeningOpen || s == OpeningClosed
}

type JobOpening struct {
	ID          int64         `json:"id"`
	CompanyID   int64         `json:"company_id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	SalaryLPA   float64       `json:"salary_lpa,omitempty"`
	Deadline    *time.Time    `json:"deadline,omitempty"`
	Status      OpeningStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "APPLIED"
	ApplicationShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationInterview   ApplicationStatus = "INTERVIEW_SCHEDULED"
	ApplicationSelected    ApplicationStatus = "SELECTED"
	ApplicationRejected    ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationShortlisted, ApplicationInterview, ApplicationSelected, ApplicationRejected:
		return true
	}
	return false
}

type Application struct {
	ID         int64             `json:"id"`
	OpeningID  int64             `json:"opening_id"`
	CompanyID  int64             `json:"company_id"`
	StudentID  string            `json:"student_id"`
	ResumeLink string            `json:"resume_link,omitempty"`
	Status     ApplicationStatus `json:"status"`
	AppliedAt  time.Time         `json:"applied_at"`
}

type OfferStatus string

const (
	OfferPending    OfferStatus = "PENDING"
	OfferAccepted   OfferStatus = "ACCEPTED"
	OfferRejected   OfferStatus = "REJECTED"
	OfferOnboarding OfferStatus = "ONBOARDING"
	OfferOnboarded  OfferStatus = "ONBOARDED"
)

type Offer struct {
	ID            int64       `json:"id"`
	ApplicationID int64       `json:"application_id"`
	CompanyID     int64       `json:"company_id"`
	StudentID     string      `json:"student_id"`
	Salary        float64     `json:"salary"`
	JoiningDate   *time.Time  `json:"joining_date,omitempty"`
	Status        OfferStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type OnboardingStatus string

const (
	OnboardingPending    OnboardingStatus = "PENDING"
	OnboardingInProgress OnboardingStatus = "IN_PROGRESS"
	OnboardingCompleted  OnboardingStatus = "COMPLETED"
)

type Onboarding struct {
	ID        int64            `json:"id"`
	OfferID   int64            `json:"offer_id"`
	CompanyID int64            `json:"company_id"`
	StudentID string           `json:"student_id"`
	StartDate *time.Time       `json:"start_date,omitempty"`
	Status    OnboardingStatus `json:"status"`
	Remarks   string           `json:"remarks,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type Interview struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	CompanyID     int64     `json:"company_id"`
	StudentID     string    `json:"student_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Interviewer   string    `json:"interviewer,omitempty"`
	Location      string    `json:"location,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// StudentProfile is the academic record a student keeps for recruiters.
// Each student has at most one; Branch is the department used in reports.
type StudentProfile struct {
	ID               int64     `json:"id"`
	StudentID        string    `json:"student_id"`
	EnrollmentNumber string    `json:"enrollment_number"`
	Branch           string    `json:"branch"`
	Degree           string    `json:"degree,omitempty"`
	CGPA             float64   `json:"cgpa"`
	PassingYear      int       `json:"passing_year,omitempty"`
	ResumeLink       string    `json:"resume_link,omitempty"`
	Skills           string    `json:"skills,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Notification goes to one recipient, or, when RecipientID is empty, to the staff of CompanyID.
type Notification struct {
	ID          int64     `json:"id"`
	RecipientID string    `json:"recipient_id,omitempty"`
	CompanyID   *int64    `json:"company_id,omitempty"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Broadcast reports whether n targets a company rather than a single user.
func (n Notification) Broadcast() bool { return n.RecipientID == "" }
