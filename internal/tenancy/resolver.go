package tenancy

import (
	"context"
	"fmt"

	"placement-portal/internal/auth"
)

// HRCompanyLookup finds the single company an HR account represents.
type HRCompanyLookup interface {
	FindCompanyForHR(ctx context.Context, userID string) (int64, bool, error)
}

// OfficerAssignmentLookup lists the companies assigned to a placement officer.
type OfficerAssignmentLookup interface {
	FindAssignedCompanies(ctx context.Context, officerID string) ([]int64, error)
}

// ResolutionRecorder receives the kind of every resolved scope.
type ResolutionRecorder interface {
	RecordScopeResolution(ctx context.Context, kind string)
}

// Resolver turns a principal into its tenant scope. It keeps no cache:
// assignment changes are visible on the next call.
type Resolver struct {
	hr       HRCompanyLookup
	officers OfficerAssignmentLookup
	metrics  ResolutionRecorder
}

func NewResolver(hr HRCompanyLookup, officers OfficerAssignmentLookup, metrics ResolutionRecorder) *Resolver {
	return &Resolver{hr: hr, officers: officers, metrics: metrics}
}

// Resolve applies the role rules in order: ADMIN, then HR and officer (union), then STUDENT.
func (r *Resolver) Resolve(ctx context.Context, p auth.Principal) (Scope, error) {
	s, err := r.resolve(ctx, p)
	if r.metrics != nil {
		kind := s.Kind().String()
		if err != nil {
			kind = "error"
		}
		r.metrics.RecordScopeResolution(ctx, kind)
	}
	return s, err
}

func (r *Resolver) resolve(ctx context.Context, p auth.Principal) (Scope, error) {
	if p.HasRole(auth.RoleAdmin) {
		return Unrestricted(), nil
	}

	isHR := p.HasRole(auth.RoleCompanyHR)
	isOfficer := p.HasRole(auth.RolePlacementOfficer)
	if isHR || isOfficer {
		var ids []int64
		if isHR {
			id, ok, err := r.hr.FindCompanyForHR(ctx, p.ID)
			if err != nil {
				return Scope{}, fmt.Errorf("tenancy: hr company lookup: %w", err)
			}
			if !ok {
				return Scope{}, ErrNoTenantAssigned
			}
			ids = append(ids, id)
		}
		if isOfficer {
			assigned, err := r.officers.FindAssignedCompanies(ctx, p.ID)
			if err != nil {
				return Scope{}, fmt.Errorf("tenancy: officer assignment lookup: %w", err)
			}
			ids = append(ids, assigned...)
		}
		return Companies(ids...), nil
	}

	if p.HasRole(auth.RoleStudent) {
		return OwnRecords(p.ID), nil
	}
	return Scope{}, ErrForbidden
}
