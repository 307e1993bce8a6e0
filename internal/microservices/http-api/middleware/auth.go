package middleware

import (
	"context"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/microservices/http-api/response"
	"yamdb/internal/policy"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Actor, error)
}

// Authenticate sets the request actor. No Authorization header means an
// anonymous caller, a header that is malformed or carries a bad token is 401.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(actorKey, policy.Anonymous())
			c.Next()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, apperr.Authentication("invalid authorization header format"))
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Set("userID", actor.UserID())
		c.Next()
	}
}

// RequirePermission runs the coarse policy check for routes whose decision
// does not depend on the target object.
func RequirePermission(resource policy.Resource, action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Check(ActorFrom(c), resource, action); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

// ActorFrom returns the caller set by Authenticate, anonymous when unset.
func ActorFrom(c *gin.Context) policy.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous()
}

// SetActor is used by tests and internal callers that authenticate differently.
func SetActor(c *gin.Context, actor policy.Actor) {
	c.Set(actorKey, actor)
	c.Set("userID", actor.UserID())
}
