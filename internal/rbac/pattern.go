package rbac

import (
	"fmt"
	"strings"
)

// pattern is a compiled route pattern.
// Segments are literal, "*" (exactly one segment) or a trailing "**" (zero or more).
type pattern struct {
	raw      string
	segments []string
	tail     bool
}

func compilePattern(raw string) (pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return pattern{}, fmt.Errorf("rbac: pattern %q must start with /", raw)
	}
	segs := splitPath(raw)
	p := pattern{raw: raw}
	for i, s := range segs {
		if s == "**" {
			if i != len(segs)-1 {
				return pattern{}, fmt.Errorf("rbac: pattern %q: ** is only allowed as the last segment", raw)
			}
			p.tail = true
			break
		}
		if strings.Contains(s, "*") && s != "*" {
			return pattern{}, fmt.Errorf("rbac: pattern %q: partial wildcards are not supported", raw)
		}
		p.segments = append(p.segments, s)
	}
	return p, nil
}

func (p pattern) match(path []string) bool {
	if len(path) < len(p.segments) {
		return false
	}
	if !p.tail && len(path) != len(p.segments) {
		return false
	}
	for i, s := range p.segments {
		if s == "*" {
			continue
		}
		if s != path[i] {
			return false
		}
	}
	return true
}

func (p pattern) literals() int {
	n := 0
	for _, s := range p.segments {
		if s != "*" {
			n++
		}
	}
	return n
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
