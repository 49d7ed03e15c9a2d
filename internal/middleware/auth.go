package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docmanage/opd-api/internal/handler"
	"github.com/docmanage/opd-api/internal/model"
)

const contextActorKey = "actor"

// TokenValidator rebuilds an actor from a session token.
type TokenValidator interface {
	ValidateToken(token string) (*model.AuthUser, error)
}

type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Authenticate verifies the bearer token and puts the actor in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		actor, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		c.Set(contextActorKey, actor)
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor, or nil when the
// request never went through Authenticate. Downstream visibility
// filtering treats nil as "sees nothing".
func ActorFromContext(c *gin.Context) *model.AuthUser {
	v, ok := c.Get(contextActorKey)
	if !ok {
		return nil
	}
	actor, ok := v.(*model.AuthUser)
	if !ok {
		return nil
	}
	return actor
}
