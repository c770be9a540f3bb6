package audit

import "time"

// Event is an immutable, append-only security audit record.
//
// Invariants:
// - Events are never updated or deleted.
// - Passwords and tokens are never stored, not even hashed.
// - Actor and IP capture are best-effort; audit failures never block logins.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	// ActorUserID is the authenticated user causing the event, empty for anonymous logins.
	ActorUserID string `json:"actor_user_id,omitempty"`
	// SubjectUserID is the account the event is about.
	SubjectUserID string `json:"subject_user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	IPAddress     string `json:"ip_address,omitempty"`
	CompanyID     *int64 `json:"company_id,omitempty"`

	Message string `json:"message,omitempty"`
	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EventType string

const (
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventLoginThrottled    EventType = "login_throttled"
	EventUserRegistered    EventType = "user_registered"
	EventUserDeleted       EventType = "user_deleted"
	EventOfficerAssigned   EventType = "officer_assigned"
	EventOfficerUnassigned EventType = "officer_unassigned"
)
