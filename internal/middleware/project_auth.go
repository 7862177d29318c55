package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

// ProjectFinder loads a project the caller is allowed to see.
type ProjectFinder interface {
	GetProject(ctx context.Context, caller access.Caller, projectID uint64) (*models.Project, error)
}

// RequireProjectAccess checks that the caller can view the project named by
// the :id parameter and stores it in the context. Projects the caller cannot
// see answer 404 so their existence is not leaked.
func RequireProjectAccess(projects ProjectFinder, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := ParseIDParam(c, "id", "Invalid project ID")
		if !ok {
			return
		}

		project, err := projects.GetProject(c.Request.Context(), GetCaller(c), projectID)
		if err != nil {
			abortWithServiceError(c, log, err, "failed to load project")
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject returns the project stored by RequireProjectAccess.
func GetProject(c *gin.Context) (*models.Project, bool) {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := value.(*models.Project)
	return project, ok
}

// ParseIDParam reads a positive numeric path parameter. On failure it writes
// a 400 response, aborts, and reports false.
func ParseIDParam(c *gin.Context, name, message string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, message)
		c.Abort()
		return 0, false
	}
	return id, true
}

func abortWithServiceError(c *gin.Context, log logrus.FieldLogger, err error, msg string) {
	if !apierrors.FromService(c, err) {
		log.WithError(err).Error(msg)
		apierrors.InternalError(c, "")
	}
	c.Abort()
}
