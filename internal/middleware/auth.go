package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/constants"
	"github.com/clubware/taskhub/internal/directory"
	apierrors "github.com/clubware/taskhub/internal/errors"
	"github.com/clubware/taskhub/internal/models"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// RequireActor resolves the authenticated user through the directory
// and stores the full record in the context. A session pointing at a
// user who left the roster is treated as unauthenticated.
func RequireActor(dir *directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor, ok, err := dir.ByID(userID)
		if err != nil {
			apierrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !ok {
			apierrors.Unauthorized(c, "Session user no longer exists")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// GetActor retrieves the resolved user from context
func GetActor(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return models.User{}, false
	}

	actor, ok := value.(models.User)
	return actor, ok
}
