package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// Subject carries the email; UserID carries the stable identity used for ownership checks.
type Claims struct {
	jwt.RegisteredClaims

	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
}
