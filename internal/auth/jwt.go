package auth

import (
	"errors"
	"fmt"
	"time"

	"placement-portal/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Codec issues and decodes HS256 session tokens.
// The key and TTL are fixed at construction and never mutated.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}

	return &Codec{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
		ttl:      ttl,
	}, nil
}

func (c *Codec) TTL() time.Duration { return c.ttl }

// IssueInstant is the iat a token issued at now carries.
func IssueInstant(now time.Time) time.Time { return now.Truncate(jwt.TimePrecision) }

/* ===================== ISSUE ===================== */

// Issue signs a token for the identity. Same inputs and now yield the same token.
//
// Token timestamps have one-second granularity: now is truncated to
// jwt.TimePrecision first, and the token is valid on [iat, iat+TTL).
func (c *Codec) Issue(now time.Time, userID, email string, roles []Role) (string, error) {
	if userID == "" || email == "" {
		return "", errors.New("auth: user id and email are required")
	}
	roles = NormalizeRoles(roles)
	if len(roles) == 0 {
		return "", errors.New("auth: at least one role is required")
	}
	for _, r := range roles {
		if !r.Valid() {
			return "", fmt.Errorf("auth: unknown role %q", r)
		}
	}

	now = IssueInstant(now)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    c.issuer,
			Audience:  audienceOrNil(c.audience),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		UserID: userID,
		Roles:  RoleStrings(roles),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

/* ===================== DECODE ===================== */

// Decode verifies the signature first, then validates time-based and custom claims against now.
func (c *Codec) Decode(tokenString string, now time.Time) (Claims, error) {
	var claims Claims

	// Claims validation is deferred so expiry is checked against the injected clock,
	// and only after the signature has been verified.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, classifyParseError(err)
	}

	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	if err := jwt.NewValidator(opts...).Validate(claims.RegisteredClaims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: subject missing", ErrMalformed)
	}
	if claims.UserID == "" {
		return Claims{}, fmt.Errorf("%w: uid missing", ErrMalformed)
	}
	if claims.IssuedAt == nil {
		return Claims{}, fmt.Errorf("%w: iat missing", ErrMalformed)
	}
	roles, err := ParseRoles(claims.Roles)
	if err != nil || len(roles) == 0 {
		return Claims{}, fmt.Errorf("%w: roles missing or invalid", ErrMalformed)
	}
	claims.Roles = RoleStrings(roles)

	return claims, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

func audienceOrNil(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}
