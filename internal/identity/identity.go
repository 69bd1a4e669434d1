// Package identity maps request credentials to a Principal carrying the paid
// entitlement that gates regeneration, export, sharing and publishing.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanpdl/briefly/internal/apperr"
)

// AnonymousSubject is the subject of the principal used when auth is disabled.
const AnonymousSubject = "anonymous"

// Principal is the caller of an operation.
type Principal struct {
	Subject string `json:"subject"`
	Paid    bool   `json:"paid"`
}

// RequirePaid returns apperr.ErrPaymentRequired unless p holds a paid plan.
func (p Principal) RequirePaid(feature string) error {
	if p.Paid {
		return nil
	}
	return fmt.Errorf("%s: %w", feature, apperr.ErrPaymentRequired)
}

// Grant binds a bearer token to a principal.
type Grant struct {
	Token   string
	Subject string
	Paid    bool
}

// Resolver turns an Authorization header into a Principal.
type Resolver struct {
	enabled   bool
	anonymous Principal
	tokens    map[string]Principal
}

// NewResolver creates a Resolver. With enabled false every request resolves to the
// anonymous principal whose paid flag is anonymousPaid.
func NewResolver(enabled, anonymousPaid bool, grants []Grant) *Resolver {
	tokens := make(map[string]Principal, len(grants))
	for _, g := range grants {
		tokens[g.Token] = Principal{Subject: g.Subject, Paid: g.Paid}
	}
	return &Resolver{
		enabled:   enabled,
		anonymous: Principal{Subject: AnonymousSubject, Paid: anonymousPaid},
		tokens:    tokens,
	}
}

// Enabled reports whether tokens are enforced.
func (r *Resolver) Enabled() bool { return r.enabled }

// Anonymous returns the principal used when auth is disabled.
func (r *Resolver) Anonymous() Principal { return r.anonymous }

// Resolve validates an "Authorization: Bearer <token>" header value.
func (r *Resolver) Resolve(header string) (Principal, error) {
	if !r.enabled {
		return r.anonymous, nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return Principal{}, apperr.ErrUnauthorized
	}
	p, ok := r.tokens[token]
	if !ok {
		return Principal{}, apperr.ErrUnauthorized
	}
	return p, nil
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
