package rbac

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"placement-portal/internal/auth"
)

// Rule maps a method and path pattern to the roles allowed to call it.
// Method "" matches any method. Public rules admit anonymous callers.
// A non-public rule with no roles admits any authenticated principal.
type Rule struct {
	Method  string
	Pattern string
	Roles   []auth.Role
	Public  bool
}

type Outcome int

const (
	Admit Outcome = iota
	Unauthenticated
	Forbidden
)

func (o Outcome) String() string {
	switch o {
	case Admit:
		return "admit"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

func (o Outcome) HTTPStatus() int {
	switch o {
	case Admit:
		return http.StatusOK
	case Unauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Decision is the result of Authorize. Fallback is set when no rule matched.
type Decision struct {
	Outcome  Outcome
	Rule     Rule
	Fallback bool
}

type specificity struct {
	literals int
	fixed    int
	exact    bool
	method   bool
}

func (a specificity) compare(b specificity) int {
	switch {
	case a.literals != b.literals:
		return a.literals - b.literals
	case a.fixed != b.fixed:
		return a.fixed - b.fixed
	case a.exact != b.exact:
		return boolInt(a.exact) - boolInt(b.exact)
	default:
		return boolInt(a.method) - boolInt(b.method)
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type compiledRule struct {
	rule    Rule
	pat     pattern
	spec    specificity
	breadth int
}

func (r compiledRule) matches(method string, path []string) bool {
	if r.rule.Method != "" && r.rule.Method != method {
		return false
	}
	return r.pat.match(path)
}

// fallbackRule applies when nothing matches: authenticated, any role.
var fallbackRule = Rule{Pattern: "/**"}

// Authorizer is an immutable, ordered rule table.
// Rules are sorted once: most specific first, then narrowest role set first.
type Authorizer struct {
	rules []compiledRule
}

func NewAuthorizer(rules []Rule) (*Authorizer, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		if c := compiled[i].spec.compare(compiled[j].spec); c != 0 {
			return c > 0
		}
		return compiled[i].breadth < compiled[j].breadth
	})
	return &Authorizer{rules: compiled}, nil
}

func compileRule(r Rule) (compiledRule, error) {
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	pat, err := compilePattern(r.Pattern)
	if err != nil {
		return compiledRule{}, err
	}
	if r.Public && len(r.Roles) > 0 {
		return compiledRule{}, fmt.Errorf("rbac: rule %s %s: public rules cannot list roles", r.Method, r.Pattern)
	}
	for _, role := range r.Roles {
		if !role.Valid() {
			return compiledRule{}, fmt.Errorf("rbac: rule %s %s: unknown role %q", r.Method, r.Pattern, role)
		}
	}
	r.Roles = auth.NormalizeRoles(r.Roles)

	breadth := len(r.Roles)
	switch {
	case r.Public:
		breadth = len(auth.AllRoles()) + 1
	case breadth == 0:
		breadth = len(auth.AllRoles())
	}

	return compiledRule{
		rule: r,
		pat:  pat,
		spec: specificity{
			literals: pat.literals(),
			fixed:    len(pat.segments),
			exact:    !pat.tail,
			method:   r.Method != "",
		},
		breadth: breadth,
	}, nil
}

// Match returns the winning rule for a request, or the fallback rule.
func (a *Authorizer) Match(method, path string) (Rule, bool) {
	method = strings.ToUpper(method)
	segs := splitPath(path)
	for _, r := range a.rules {
		if r.matches(method, segs) {
			return r.rule, true
		}
	}
	return fallbackRule, false
}

// IsPublic lets the request gate admit anonymous callers on public routes.
func (a *Authorizer) IsPublic(method, path string) bool {
	r, _ := a.Match(method, path)
	return r.Public
}

// Authorize decides a request. p == nil means anonymous. Every input yields exactly one outcome.
func (a *Authorizer) Authorize(p *auth.Principal, method, path string) Decision {
	rule, matched := a.Match(method, path)
	d := Decision{Rule: rule, Fallback: !matched}

	switch {
	case rule.Public:
		d.Outcome = Admit
	case p == nil:
		d.Outcome = Unauthenticated
	case len(rule.Roles) == 0 || p.HasAnyRole(rule.Roles...):
		d.Outcome = Admit
	default:
		d.Outcome = Forbidden
	}
	return d
}

// Rules returns the table in evaluation order.
func (a *Authorizer) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	for i, r := range a.rules {
		out[i] = r.rule
	}
	return out
}
