package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated staff
// user's claims.
const ContextUserKey = "currentUser"

// JWT rejects requests without a valid staff bearer token. On success the
// claims are placed on the context for handlers that need the acting user.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, authErr := bearerToken(c)
		if authErr != nil {
			response.Error(c, authErr)
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, *appErrors.Error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "Token not provided")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "Token invalid")
	}
	return token, nil
}
