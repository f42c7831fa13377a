package handler

import (
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// RequireAuth verifies the bearer token and stores the caller for the handlers.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.fail(c, apperr.Unauthorized("auth.missing_token", "authorization token missing"))
			c.Abort()
			return
		}
		claims, err := h.Tokens.Verify(token)
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		c.Set(actorKey, claims.Actor())
		c.Next()
	}
}

// RequireRole lets only the listed roles through. It must run after RequireAuth.
func (h *Handler) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := actor(c)
		for _, r := range roles {
			if a.Role == r {
				c.Next()
				return
			}
		}
		h.fail(c, apperr.Forbidden("auth.role_forbidden", "role "+string(a.Role)+" may not access this resource"))
		c.Abort()
	}
}

func actor(c *gin.Context) workflow.Actor {
	a, _ := c.Get(actorKey)
	v, _ := a.(workflow.Actor)
	return v
}
