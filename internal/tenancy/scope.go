package tenancy

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrForbidden        = errors.New("tenancy: record outside caller scope")
	ErrNoTenantAssigned = errors.New("tenancy: no company linked to account")
)

type Kind int

const (
	KindUnrestricted Kind = iota + 1
	KindCompanies
	KindOwnRecords
)

func (k Kind) String() string {
	switch k {
	case KindUnrestricted:
		return "unrestricted"
	case KindCompanies:
		return "companies"
	case KindOwnRecords:
		return "own_records"
	default:
		return "invalid"
	}
}

// Scope is the set of tenant rows a principal may see or change.
// The zero value permits nothing.
type Scope struct {
	kind      Kind
	companies []int64
	owner     string
}

func Unrestricted() Scope { return Scope{kind: KindUnrestricted} }

// Companies builds a company scope. An empty set is valid and permits nothing.
func Companies(ids ...int64) Scope {
	c := slices.Clone(ids)
	slices.Sort(c)
	return Scope{kind: KindCompanies, companies: slices.Compact(c)}
}

func OwnRecords(ownerID string) Scope {
	return Scope{kind: KindOwnRecords, owner: ownerID}
}

func (s Scope) Kind() Kind { return s.kind }

func (s Scope) CompanyIDs() []int64 { return slices.Clone(s.companies) }

func (s Scope) Owner() string { return s.owner }

// AllowsCompany reports whether rows of the company are visible.
// Own-records scopes never match by company.
func (s Scope) AllowsCompany(companyID int64) bool {
	switch s.kind {
	case KindUnrestricted:
		return true
	case KindCompanies:
		_, ok := slices.BinarySearch(s.companies, companyID)
		return ok
	default:
		return false
	}
}

// Permits checks a row carrying both a company and an owning student.
func (s Scope) Permits(companyID int64, ownerID string) bool {
	switch s.kind {
	case KindUnrestricted:
		return true
	case KindCompanies:
		return s.AllowsCompany(companyID)
	case KindOwnRecords:
		return ownerID != "" && ownerID == s.owner
	default:
		return false
	}
}

// Check is Permits returning ErrForbidden.
func (s Scope) Check(companyID int64, ownerID string) error {
	if !s.Permits(companyID, ownerID) {
		return ErrForbidden
	}
	return nil
}

// Single returns the only company in a company scope.
func (s Scope) Single() (int64, bool) {
	if s.kind != KindCompanies || len(s.companies) != 1 {
		return 0, false
	}
	return s.companies[0], true
}

func (s Scope) Equal(o Scope) bool {
	return s.kind == o.kind && s.owner == o.owner && slices.Equal(s.companies, o.companies)
}

// Predicate renders the scope as a SQL filter for the given columns.
// Placeholders start at $next. The returned clause is never empty.
func (s Scope) Predicate(companyCol, ownerCol string, next int) (string, []any) {
	switch s.kind {
	case KindUnrestricted:
		return "TRUE", nil
	case KindCompanies:
		if len(s.companies) == 0 {
			return "FALSE", nil
		}
		return fmt.Sprintf("%s = ANY($%d)", companyCol, next), []any{s.CompanyIDs()}
	case KindOwnRecords:
		if s.owner == "" || ownerCol == "" {
			return "FALSE", nil
		}
		return fmt.Sprintf("%s = $%d", ownerCol, next), []any{s.owner}
	default:
		return "FALSE", nil
	}
}

func (s Scope) String() string {
	switch s.kind {
	case KindCompanies:
		parts := make([]string, len(s.companies))
		for i, id := range s.companies {
			parts[i] = fmt.Sprint(id)
		}
		return "companies{" + strings.Join(parts, ",") + "}"
	case KindOwnRecords:
		return "own_records(" + s.owner + ")"
	default:
		return s.kind.String()
	}
}
