package auth

import "errors"

var (
	ErrMalformed         = errors.New("auth: malformed token")
	ErrBadSignature      = errors.New("auth: bad token signature")
	ErrExpired           = errors.New("auth: token expired")
	ErrInvalidCredential = errors.New("auth: invalid credential")
	ErrNotFound          = errors.New("auth: credential not found")
)

// IsAuthenticationFailure reports whether err must surface as a uniform 401.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrBadSignature) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrNotFound)
}

// Authorization header parsing failures.
var (
	ErrMissingToken    = errors.New("auth: missing bearer token")
	ErrMalformedHeader = errors.New("auth: malformed authorization header")
)
