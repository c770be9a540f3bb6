package auth

import (
	"fmt"
	"slices"
	"strings"
)

// Role names. Keep these stable; they are part of the token and route-table contracts.
type Role string

const (
	RoleStudent          Role = "STUDENT"
	RoleCompanyHR        Role = "COMPANY_HR"
	RolePlacementOfficer Role = "PLACEMENT_OFFICER"
	RoleAdmin            Role = "ADMIN"
)

// AllRoles lists every role in a fixed order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleCompanyHR, RolePlacementOfficer, RoleAdmin}
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCompanyHR, RolePlacementOfficer, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole accepts role names case-insensitively, with or without a "ROLE_" prefix.
func ParseRole(s string) (Role, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "ROLE_")
	r := Role(v)
	if !r.Valid() {
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
	return r, nil
}

// ParseRoles parses and normalizes a role list.
func ParseRoles(in []string) ([]Role, error) {
	out := make([]Role, 0, len(in))
	for _, s := range in {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return NormalizeRoles(out), nil
}

// NormalizeRoles returns a sorted copy without duplicates.
func NormalizeRoles(in []Role) []Role {
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}

func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
