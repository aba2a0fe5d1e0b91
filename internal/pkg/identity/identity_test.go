package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/omnicart/fulfillment/internal/domain/model"
	"github.com/omnicart/fulfillment/internal/pkg/token"
)

func TestContextRoundTrip(t *testing.T) {
	id := Identity{UserID: 3, ProfileID: 7, Roles: []model.Role{model.RoleUser}, Bearer: "abc"}
	ctx := WithIdentity(context.Background(), id)

	got, err := FromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ProfileID != 7 || got.Bearer != "abc" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestFromContextFailsClosed(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, token.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestFromClaims(t *testing.T) {
	claims := &token.Claims{
		ProfileID: 7,
		Roles:     []model.Role{model.RoleManager},
		TokenType: token.TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "3",
		},
	}

	id, err := FromClaims(claims, "bearer-value")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != 3 || id.ProfileID != 7 || id.Bearer != "bearer-value" {
		t.Fatalf("unexpected identity %+v", id)
	}

	claims.Subject = "not-a-number"
	if _, err := FromClaims(claims, ""); err == nil {
		t.Fatal("expected error for non-numeric subject")
	}
}

func TestHasRoleAndOwnership(t *testing.T) {
	id := Identity{ProfileID: 7, Roles: []model.Role{model.RoleUser}}

	if !id.HasRole(model.RoleUser) || id.HasRole(model.RoleManager) {
		t.Fatalf("unexpected role evaluation for %+v", id)
	}
	if !id.OwnsProfile(7) || id.OwnsProfile(8) {
		t.Fatal("unexpected ownership evaluation")
	}
}
