package accounts

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("accounts: not found")
	ErrEmailTaken      = errors.New("accounts: email already registered")
	ErrInvalidArgument = errors.New("accounts: invalid argument")
	ErrRoleNotAllowed  = errors.New("accounts: role not allowed")
)

// Repository is the persistence contract for accounts and tenant links.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error

	// Assign is idempotent; Unassign returns ErrNotFound when no link exists.
	Assign(ctx context.Context, a Assignment) error
	Unassign(ctx context.Context, officerID string, companyID int64) error
	AssignedCompanies(ctx context.Context, officerID string) ([]int64, error)
}
