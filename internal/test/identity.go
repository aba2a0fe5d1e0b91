package test

import (
	"context"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/identity"
	"github.com/omnicart/fulfillment/internal/pkg/token"
)

// ContextWithIdentity returns a context authenticated as the given profile.
func ContextWithIdentity(profileID int64, roles ...model.Role) context.Context {
	if len(roles) == 0 {
		roles = []model.Role{model.RoleUser}
	}
	return identity.WithIdentity(context.Background(), identity.Identity{
		UserID:    profileID,
		ProfileID: profileID,
		Roles:     roles,
		Bearer:    "test-token",
	})
}

// VerifierStub implements token verification with overridable behaviour.
type VerifierStub struct {
	Claims *token.Claims
	Err    error

	VerifyFn func(string, token.Type) (*token.Claims, error)
}

// Verify delegates to the override or returns the preset claims.
func (s VerifierStub) Verify(bearer string, typ token.Type) (*token.Claims, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(bearer, typ)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if bearer == "" || s.Claims == nil {
		return nil, token.ErrUnauthenticated
	}
	return s.Claims, nil
}
