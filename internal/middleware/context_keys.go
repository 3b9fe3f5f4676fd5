package middleware

import (
	"context"

	"github.com/asientoflow/asientoflow/internal/core/domain"
)

// contextKey is a private key type to avoid collisions in contexts.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	principalKey = contextKey("principal")
	tokenKey     = contextKey("bearerToken")
)

// Principal is the authenticated operator as asserted by the bearer token.
type Principal struct {
	UserID string
	Role   domain.Role
}

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// WithToken returns a context carrying the raw bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// GetPrincipalFromCtx retrieves the authenticated principal from the context.
func GetPrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// GetTokenFromCtx retrieves the raw bearer token from the context. The token
// is forwarded verbatim to the ledger authority.
func GetTokenFromCtx(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}

// DetachForRemote copies the bearer token, principal and logger of ctx into a
// fresh background context. Background work that outlives the request
// (debounced validation, draft autosave) uses this so remote calls still
// carry the operator's token without inheriting the request's cancellation.
func DetachForRemote(ctx context.Context) context.Context {
	detached := context.Background()
	if t, ok := GetTokenFromCtx(ctx); ok {
		detached = context.WithValue(detached, tokenKey, t)
	}
	if p, ok := GetPrincipalFromCtx(ctx); ok {
		detached = context.WithValue(detached, principalKey, p)
	}
	if logger := ctx.Value(loggerCtxKey); logger != nil {
		detached = context.WithValue(detached, loggerCtxKey, logger)
	}
	return detached
}
