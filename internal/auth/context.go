package auth

import (
	"context"
	"slices"
)

type ctxKey int

const (
	ctxPrincipal ctxKey = iota
	ctxAnonymous
)

// WithPrincipal attaches p to ctx. The role slice is copied so later callers cannot mutate it.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	p.Roles = slices.Clone(p.Roles)
	return context.WithValue(ctx, ctxPrincipal, p)
}

// WithAnonymous marks the request as having passed the gate without a principal.
func WithAnonymous(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxAnonymous, true)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(Principal)
	if !ok || p.ID == "" {
		return Principal{}, false
	}
	return p, true
}

func IsAnonymous(ctx context.Context) bool {
	if _, ok := PrincipalFrom(ctx); ok {
		return false
	}
	v, _ := ctx.Value(ctxAnonymous).(bool)
	return v
}
