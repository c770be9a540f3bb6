package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCredentials struct {
	records map[string]CredentialRecord
	err     error
}

func (f fakeCredentials) FindCredentialByEmail(ctx context.Context, email string) (CredentialRecord, bool, error) {
	if f.err != nil {
		return CredentialRecord{}, false, f.err
	}
	rec, ok := f.records[email]
	return rec, ok, nil
}

func (f fakeCredentials) VerifySecret(rec CredentialRecord, candidate string) bool {
	return rec.SecretHash == "plain:"+candidate
}

func newTestAuthenticator(t *testing.T, now time.Time) *Authenticator {
	t.Helper()
	creds := fakeCredentials{records: map[string]CredentialRecord{
		"hr@acme.io": {
			UserID:      "user-hr",
			Email:       "hr@acme.io",
			DisplayName: "Hannah HR",
			Roles:       []Role{RoleCompanyHR},
			SecretHash:  "plain:s3cret",
		},
	}}
	return NewAuthenticator(newTestCodec(t), creds, func() time.Time { return now })
}

func TestAuthenticateByCredential_IssuesToken(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	a := newTestAuthenticator(t, now)

	sess, err := a.AuthenticateByCredential(context.Background(), "  HR@acme.io ", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token == "" || sess.DisplayName != "Hannah HR" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if sess.Principal.ID != "user-hr" || !sess.Principal.HasRole(RoleCompanyHR) {
		t.Fatalf("unexpected principal: %+v", sess.Principal)
	}
	if !sess.Principal.ExpiresAt.Equal(now.Add(24 * time.Hour)) {
		t.Fatalf("unexpected expiry %s", sess.Principal.ExpiresAt)
	}

	p, err := a.AuthenticateByToken(sess.Token)
	if err != nil {
		t.Fatalf("token auth: %v", err)
	}
	if p.ID != sess.Principal.ID || p.Email != "hr@acme.io" {
		t.Fatalf("token principal mismatch: %+v", p)
	}
}

func TestAuthenticateByCredential_Failures(t *testing.T) {
	a := newTestAuthenticator(t, time.Unix(1700000000, 0).UTC())

	if _, err := a.AuthenticateByCredential(context.Background(), "nobody@acme.io", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := a.AuthenticateByCredential(context.Background(), "hr@acme.io", "wrong"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if _, err := a.AuthenticateByCredential(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for empty input, got %v", err)
	}
}

type countingCredentials struct {
	fakeCredentials
	verified *int
}

func (c countingCredentials) VerifySecret(rec CredentialRecord, candidate string) bool {
	*c.verified++
	return c.fakeCredentials.VerifySecret(rec, candidate)
}

func TestAuthenticateByCredential_UnknownEmailStillVerifies(t *testing.T) {
	var n int
	creds := countingCredentials{verified: &n, fakeCredentials: fakeCredentials{records: map[string]CredentialRecord{
		"hr@acme.io": {UserID: "user-hr", Email: "hr@acme.io", Roles: []Role{RoleCompanyHR}, SecretHash: "plain:s3cret"},
	}}}
	a := NewAuthenticator(newTestCodec(t), creds, nil)

	if _, err := a.AuthenticateByCredential(context.Background(), "nobody@acme.io", "guess"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := a.AuthenticateByCredential(context.Background(), "hr@acme.io", "guess"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
	if n != 2 {
		t.Fatalf("expected one verification per attempt, got %d", n)
	}
}

func TestAuthenticateByCredential_FractionalClock(t *testing.T) {
	now := time.Unix(1700000000, 750e6).UTC()
	a := newTestAuthenticator(t, now)

	sess, err := a.AuthenticateByCredential(context.Background(), "hr@acme.io", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	want := time.Unix(1700000000, 0).UTC().Add(24 * time.Hour)
	if !sess.Principal.ExpiresAt.Equal(want) {
		t.Fatalf("expiry: got %s want %s", sess.Principal.ExpiresAt, want)
	}
}

func TestAuthenticateByCredential_StoreError(t *testing.T) {
	boom := errors.New("db down")
	a := NewAuthenticator(newTestCodec(t), fakeCredentials{err: boom}, nil)
	_, err := a.AuthenticateByCredential(context.Background(), "hr@acme.io", "s3cret")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if IsAuthenticationFailure(err) {
		t.Fatalf("store errors must not look like credential failures")
	}
}

func TestAuthenticateByToken_PropagatesCodecErrors(t *testing.T) {
	issued := time.Unix(1700000000, 0).UTC()
	codec := newTestCodec(t)
	tok, _ := codec.Issue(issued, "u", "u@x.io", []Role{RoleStudent})

	late := NewAuthenticator(codec, nil, func() time.Time { return issued.Add(24*time.Hour + time.Second) })
	if _, err := late.AuthenticateByToken(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, err := late.AuthenticateByToken("garbage"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
