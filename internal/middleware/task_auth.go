package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/study-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/study-tracker-api/internal/errors"
	"github.com/yukikurage/study-tracker-api/internal/models"
	"github.com/yukikurage/study-tracker-api/internal/services"
)

// RequireTaskAccess loads the task named by the id parameter from the
// current workspace. Tasks of other users are reported as missing.
func RequireTaskAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, ok := GetWorkspace(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		task, err := ws.FindTask(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
			} else {
				apierrors.InternalError(c, "Failed to load task")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}
