package auth

import (
	"context"

	"go-weave/internal/domain"
)

type sessionKey struct{}

type session struct {
	identity   domain.Identity
	credential string
}

// WithSession returns a context carrying the caller and the bearer credential
// that downstream calls should forward.
func WithSession(ctx context.Context, identity domain.Identity, credential string) context.Context {
	return context.WithValue(ctx, sessionKey{}, session{identity: identity, credential: credential})
}

// ContextProvider reads the session placed on the context by RequireAuth.
type ContextProvider struct{}

func (ContextProvider) CurrentUser(ctx context.Context) (*domain.Identity, bool) {
	s, ok := ctx.Value(sessionKey{}).(session)
	if !ok || s.identity.UserID == "" {
		return nil, false
	}
	id := s.identity
	return &id, true
}

func (ContextProvider) SessionCredential(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(sessionKey{}).(session)
	if !ok || s.credential == "" {
		return "", false
	}
	return s.credential, true
}
