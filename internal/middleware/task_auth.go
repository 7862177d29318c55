package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

// TaskFinder loads a task the caller is allowed to see along with its
// current assignment.
type TaskFinder interface {
	GetTask(ctx context.Context, caller access.Caller, taskID uint64) (*models.Task, *models.TaskAssignment, error)
}

// RequireTaskAccess checks if the caller can view the task named by the :id
// parameter. The caller must be able to view the task's project; otherwise
// the task is reported as missing.
func RequireTaskAccess(tasks TaskFinder, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, ok := ParseIDParam(c, "id", "Invalid task ID")
		if !ok {
			return
		}

		task, current, err := tasks.GetTask(c.Request.Context(), GetCaller(c), taskID)
		if err != nil {
			abortWithServiceError(c, log, err, "failed to load task")
			return
		}

		c.Set(constants.ContextKeyTask, task)
		if current != nil {
			c.Set(constants.ContextKeyAssignee, current)
		}
		c.Next()
	}
}

// GetTask returns the task stored by RequireTaskAccess.
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}

// GetCurrentAssignment returns the assignment stored by RequireTaskAccess,
// or nil when the task has never been assigned.
func GetCurrentAssignment(c *gin.Context) *models.TaskAssignment {
	value, exists := c.Get(constants.ContextKeyAssignee)
	if !exists {
		return nil
	}
	current, _ := value.(*models.TaskAssignment)
	return current
}
