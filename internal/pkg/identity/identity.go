package identity

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/token"
)

type contextKey struct{}

// Identity is the verified caller of the current request. It is immutable and
// scoped to the request context; it vanishes with the context instead of
// living in shared mutable state, so identities cannot leak across reused
// workers.
type Identity struct {
	UserID    int64
	ProfileID int64
	Roles     []model.Role

	// Bearer is the original credential, re-attached verbatim when this
	// service calls another service on the caller's behalf.
	Bearer string
}

// FromClaims builds an Identity from verified access-token claims.
func FromClaims(claims *token.Claims, bearer string) (Identity, error) {
	subjectID, err := claims.SubjectID()
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:    subjectID,
		ProfileID: claims.ProfileID,
		Roles:     claims.Roles,
		Bearer:    bearer,
	}, nil
}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext extracts the caller identity, failing closed when absent.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok {
		return Identity{}, token.ErrUnauthenticated
	}
	return id, nil
}

// HasRole reports whether the caller holds the given authority.
func (id Identity) HasRole(role model.Role) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// OwnsProfile reports whether the caller's profile matches profileID.
func (id Identity) OwnsProfile(profileID int64) bool {
	return id.ProfileID == profileID
}
