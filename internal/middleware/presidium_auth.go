package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/policy"
)

// RequirePresidium restricts a route to the president and vice
// presidents. Used for the club-wide activity feed.
func RequirePresidium() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		if !policy.CanViewActivity(actor) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only the presidium can view the activity feed",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
