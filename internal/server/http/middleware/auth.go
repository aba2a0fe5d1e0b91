package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/omnicart/fulfillment/internal/pkg/identity"
	"github.com/omnicart/fulfillment/internal/pkg/token"
	"github.com/omnicart/fulfillment/internal/server/http/dto"
)

// AuthRequired verifies the bearer token and binds the caller identity to the
// request context before the handler runs. The identity lives and dies with
// the request; nothing is stored outside it.
func AuthRequired(verifier token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := extractBearer(c)
		claims, err := verifier.Verify(bearer, token.TypeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.ErrorResponse{Error: "authentication required"})
			return
		}

		id, err := identity.FromClaims(claims, bearer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.ErrorResponse{Error: "authentication required"})
			return
		}

		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
