package accounts

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory repository for tests and local development.
type MemoryRepo struct {
	mu          sync.Mutex
	users       map[string]User
	byEmail     map[string]string
	assignments map[string][]Assignment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:       map[string]User{},
		byEmail:     map[string]string{},
		assignments: map[string][]Assignment{},
	}
}

func (r *MemoryRepo) Create(ctx context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := r.byEmail[key]; ok {
		return ErrEmailTaken
	}
	r.users[u.ID] = cloneUser(u)
	r.byEmail[key] = u.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.byEmail, strings.ToLower(u.Email))
	delete(r.assignments, id)
	return nil
}

func (r *MemoryRepo) Assign(ctx context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.assignments[a.OfficerID] {
		if existing.CompanyID == a.CompanyID {
			return nil
		}
	}
	r.assignments[a.OfficerID] = append(r.assignments[a.OfficerID], a)
	return nil
}

func (r *MemoryRepo) Unassign(ctx context.Context, officerID string, companyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.assignments[officerID]
	i := slices.IndexFunc(list, func(a Assignment) bool { return a.CompanyID == companyID })
	if i < 0 {
		return ErrNotFound
	}
	r.assignments[officerID] = slices.Delete(list, i, i+1)
	return nil
}

func (r *MemoryRepo) AssignedCompanies(ctx context.Context, officerID string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, 0, len(r.assignments[officerID]))
	for _, a := range r.assignments[officerID] {
		out = append(out, a.CompanyID)
	}
	slices.Sort(out)
	return out, nil
}

func cloneUser(u User) User {
	u.Roles = slices.Clone(u.Roles)
	if u.CompanyID != nil {
		id := *u.CompanyID
		u.CompanyID = &id
	}
	return u
}
