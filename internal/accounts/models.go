package accounts

import (
	"time"

	"placement-portal/internal/auth"
)

// User is a stored account. PasswordHash is a bcrypt hash and never leaves this package's API.
type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	PasswordHash string      `json:"-"`
	Roles        []auth.Role `json:"roles"`

	// CompanyID links a COMPANY_HR account to the company it represents.
	CompanyID *int64 `json:"company_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest is the input for both self-registration and admin registration.
type RegisterRequest struct {
	Email     string
	Name      string
	Password  string
	Roles     []auth.Role
	CompanyID *int64
}

// Assignment links a placement officer to a company.
type Assignment struct {
	OfficerID  string    `json:"officer_id"`
	CompanyID  int64     `json:"company_id"`
	AssignedAt time.Time `json:"assigned_at"`
}
