package identity

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/entities"
)

type contextKey struct{}

func WithIdentity(ctx context.Context, identity entities.Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

// FromContext returns the identity of the signed-in user the request is made on behalf of.
func FromContext(ctx context.Context) (entities.Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(entities.Identity)
	return identity, ok && identity.UID != ""
}
