package auth

import (
	"slices"
	"time"
)

// Principal is the authenticated identity attached to a request.
// It is built per request from a decoded token and never persisted.
type Principal struct {
	ID        string
	Email     string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (p Principal) HasRole(r Role) bool {
	return slices.Contains(p.Roles, r)
}

// HasAnyRole is the any-of check used by route rules.
func (p Principal) HasAnyRole(allowed ...Role) bool {
	for _, r := range allowed {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func principalFromClaims(c Claims) Principal {
	roles := make([]Role, len(c.Roles))
	for i, r := range c.Roles {
		roles[i] = Role(r)
	}
	p := Principal{
		ID:    c.UserID,
		Email: c.Subject,
		Roles: roles,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return p
}
