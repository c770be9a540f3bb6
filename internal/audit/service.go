package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// Events are append-only; there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

const (
	DefaultRecentLimit = 100
	maxRecentLimit     = 1000
)

// Service records security events.
//
// IMPORTANT:
// - Audit is admin-only. Do not expose these records to other roles.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	e.Email = strings.ToLower(e.Email)
	return s.repo.Append(ctx, e)
}

// Recent returns the newest events first. limit is clamped to [1, 1000].
func (s *Service) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.repo.Recent(ctx, min(limit, maxRecentLimit))
}

// LogLogin records a credential login outcome. reason is logged on failure only.
func (s *Service) LogLogin(ctx context.Context, typ EventType, email, userID, ip, reason string) error {
	return s.Append(ctx, Event{
		Type:          typ,
		SubjectUserID: userID,
		Email:         email,
		IPAddress:     ip,
		Message:       reason,
	})
}

func (s *Service) LogUserRegistered(ctx context.Context, actorUserID, subjectUserID, email, ip, roles string) error {
	return s.Append(ctx, Event{
		Type:          EventUserRegistered,
		ActorUserID:   actorUserID,
		SubjectUserID: subjectUserID,
		Email:         email,
		IPAddress:     ip,
		Message:       "roles: " + roles,
	})
}

func (s *Service) LogUserDeleted(ctx context.Context, actorUserID, subjectUserID, ip string) error {
	return s.Append(ctx, Event{
		Type:          EventUserDeleted,
		ActorUserID:   actorUserID,
		SubjectUserID: subjectUserID,
		IPAddress:     ip,
	})
}

// LogOfficerAssignment records an officer gaining or losing a company.
func (s *Service) LogOfficerAssignment(ctx context.Context, assigned bool, actorUserID, officerID string, companyID int64, ip string) error {
	typ := EventOfficerUnassigned
	if assigned {
		typ = EventOfficerAssigned
	}
	return s.Append(ctx, Event{
		Type:          typ,
		ActorUserID:   actorUserID,
		SubjectUserID: officerID,
		CompanyID:     &companyID,
		IPAddress:     ip,
	})
}
