package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/yugawara/labtrack-api/internal/errors"
)

// RequireManager checks that the actor holds the manager role. Must run
// after RequireActor.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !actor.IsManager() {
			apierrors.Forbidden(c, "Only managers can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}
