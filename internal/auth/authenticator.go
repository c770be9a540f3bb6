package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CredentialRecord is what the credential store returns for a login lookup.
type CredentialRecord struct {
	UserID      string
	Email       string
	DisplayName string
	Roles       []Role
	SecretHash  string
}

// CredentialStore is the external password store.
type CredentialStore interface {
	FindCredentialByEmail(ctx context.Context, email string) (CredentialRecord, bool, error)
	VerifySecret(rec CredentialRecord, candidate string) bool
}

// Session is the result of a successful credential login.
type Session struct {
	Principal   Principal
	Token       string
	DisplayName string
}

// Authenticator turns credentials or tokens into a Principal.
type Authenticator struct {
	codec *Codec
	creds CredentialStore
	clock func() time.Time
}

// NewAuthenticator wires the codec and credential store. A nil clock means time.Now.
func NewAuthenticator(codec *Codec, creds CredentialStore, clock func() time.Time) *Authenticator {
	if clock == nil {
		clock = time.Now
	}
	return &Authenticator{codec: codec, creds: creds, clock: clock}
}

// AuthenticateByCredential is the only path that raises trust; it runs at login only.
func (a *Authenticator) AuthenticateByCredential(ctx context.Context, email, secret string) (Session, error) {
	if a.creds == nil {
		return Session{}, errors.New("auth: credential store not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || secret == "" {
		return Session{}, ErrInvalidCredential
	}

	rec, found, err := a.creds.FindCredentialByEmail(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("auth: credential lookup: %w", err)
	}
	if !found {
		// Unknown emails still run one verification so both failures cost the same.
		a.creds.VerifySecret(CredentialRecord{}, secret)
		return Session{}, ErrNotFound
	}
	if !a.creds.VerifySecret(rec, secret) {
		return Session{}, ErrInvalidCredential
	}

	now := a.clock().UTC()
	token, err := a.codec.Issue(now, rec.UserID, rec.Email, rec.Roles)
	if err != nil {
		return Session{}, err
	}

	// Round-trip through Decode so the principal matches what later requests will see.
	claims, err := a.codec.Decode(token, now)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Principal:   principalFromClaims(claims),
		Token:       token,
		DisplayName: rec.DisplayName,
	}, nil
}

// AuthenticateByToken passes codec failures up unchanged; it never returns a partial principal.
func (a *Authenticator) AuthenticateByToken(raw string) (Principal, error) {
	claims, err := a.codec.Decode(raw, a.clock().UTC())
	if err != nil {
		return Principal{}, err
	}
	return principalFromClaims(claims), nil
}
