package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/constants"
	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/policy"
)

// RequireTaskView loads the task from the URL parameter and checks the
// actor may see it: presidium members see everything, everyone else
// only tasks they assigned or were assigned.
func RequireTaskView() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskIDStr := c.Param("id")
		taskID, err := strconv.ParseUint(taskIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid task ID",
			})
			c.Abort()
			return
		}

		actor, exists := GetActor(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var task models.Task
		if err := database.GetDB().
			Preload("Assigner").
			Preload("Assignments").
			Preload("Assignments.User").
			First(&task, taskID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
			c.Abort()
			return
		}

		if !policy.CanView(actor, task) {
			// Return 404 instead of 403 to avoid leaking task existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Task not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskView from context
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}

	task, ok := value.(models.Task)
	return task, ok
}
