package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"placement-portal/internal/auth"
	"placement-portal/internal/tenancy"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt only reads the first 72 bytes and GenerateFromPassword rejects longer input.
	maxPasswordBytes = 72
)

// CompanyDirectory confirms a company exists before an account is linked to it.
type CompanyDirectory interface {
	CompanyExists(ctx context.Context, id int64) (bool, error)
}

// Service owns account registration, lookup and officer assignments.
// It is also the credential store for login and the tenant link source for scope resolution.
type Service struct {
	repo       Repository
	companies  CompanyDirectory
	bcryptCost int
	clock      func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

var (
	_ auth.CredentialStore            = (*Service)(nil)
	_ tenancy.HRCompanyLookup         = (*Service)(nil)
	_ tenancy.OfficerAssignmentLookup = (*Service)(nil)
)

// NewService builds the account service. companies may be nil, in which case company ids are not checked.
func NewService(repo Repository, companies CompanyDirectory, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, companies: companies, bcryptCost: bcryptCost, clock: time.Now}
}

// HashPassword hashes a plaintext secret at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("accounts: hash password: %w", err)
	}
	return string(h), nil
}

// Register is student self-registration. Any role other than STUDENT is refused.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	for _, r := range req.Roles {
		if r != auth.RoleStudent {
			return User{}, ErrRoleNotAllowed
		}
	}
	req.Roles = []auth.Role{auth.RoleStudent}
	req.CompanyID = nil
	return s.create(ctx, req)
}

// AdminRegister creates an account with any roles. COMPANY_HR accounts must name their company.
func (s *Service) AdminRegister(ctx context.Context, req RegisterRequest) (User, error) {
	if len(req.Roles) == 0 {
		return User{}, fmt.Errorf("%w: at least one role is required", ErrInvalidArgument)
	}
	for _, r := range req.Roles {
		if !r.Valid() {
			return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, r)
		}
	}
	if slices.Contains(req.Roles, auth.RoleCompanyHR) {
		if req.CompanyID == nil {
			return User{}, fmt.Errorf("%w: companyId is required for %s", ErrInvalidArgument, auth.RoleCompanyHR)
		}
		if err := s.requireCompany(ctx, *req.CompanyID); err != nil {
			return User{}, err
		}
	} else {
		req.CompanyID = nil
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req RegisterRequest) (User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidArgument)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if len(req.Password) < minPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLen)
	}
	if len(req.Password) > maxPasswordBytes {
		return User{}, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidArgument, maxPasswordBytes)
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Roles:        auth.NormalizeRoles(req.Roles),
		CompanyID:    req.CompanyID,
		CreatedAt:    s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}

// AssignOfficer links a placement officer to a company. Repeating an assignment is a no-op.
func (s *Service) AssignOfficer(ctx context.Context, officerID string, companyID int64) (Assignment, error) {
	if err := s.requireOfficer(ctx, officerID); err != nil {
		return Assignment{}, err
	}
	if err := s.requireCompany(ctx, companyID); err != nil {
		return Assignment{}, err
	}
	a := Assignment{OfficerID: officerID, CompanyID: companyID, AssignedAt: s.clock().UTC()}
	if err := s.repo.Assign(ctx, a); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *Service) UnassignOfficer(ctx context.Context, officerID string, companyID int64) error {
	if err := s.requireOfficer(ctx, officerID); err != nil {
		return err
	}
	return s.repo.Unassign(ctx, officerID, companyID)
}

func (s *Service) requireOfficer(ctx context.Context, id string) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !slices.Contains(u.Roles, auth.RolePlacementOfficer) {
		return fmt.Errorf("%w: user is not a placement officer", ErrInvalidArgument)
	}
	return nil
}

func (s *Service) requireCompany(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid company id", ErrInvalidArgument)
	}
	if s.companies == nil {
		return nil
	}
	ok, err := s.companies.CompanyExists(ctx, id)
	if err != nil {
		return fmt.Errorf("accounts: company lookup: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: company %d does not exist", ErrInvalidArgument, id)
	}
	return nil
}

// FindCredentialByEmail serves login lookups.
func (s *Service) FindCredentialByEmail(ctx context.Context, email string) (auth.CredentialRecord, bool, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return auth.CredentialRecord{}, false, nil
	}
	if err != nil {
		return auth.CredentialRecord{}, false, err
	}
	return auth.CredentialRecord{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.Name,
		Roles:       u.Roles,
		SecretHash:  u.PasswordHash,
	}, true, nil
}

// VerifySecret compares candidate to the record's hash. A record without a hash
// still pays for one bcrypt comparison, against a throwaway hash, and fails.
func (s *Service) VerifySecret(rec auth.CredentialRecord, candidate string) bool {
	if rec.SecretHash == "" {
		_ = bcrypt.CompareHashAndPassword(s.throwawayHash(), []byte(candidate))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(rec.SecretHash), []byte(candidate)) == nil
}

func (s *Service) throwawayHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), s.bcryptCost)
	})
	return s.dummyHash
}

// FindCompanyForHR returns the company linked to an HR account.
// A deleted account or one without a link reports not found.
func (s *Service) FindCompanyForHR(ctx context.Context, userID string) (int64, bool, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if u.CompanyID == nil {
		return 0, false, nil
	}
	return *u.CompanyID, true, nil
}

func (s *Service) FindAssignedCompanies(ctx context.Context, officerID string) ([]int64, error) {
	return s.repo.AssignedCompanies(ctx, officerID)
}
