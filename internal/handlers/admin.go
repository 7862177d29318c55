package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// AdminHandler serves the administrator-only project endpoints. These reach
// deleted projects too.
type AdminHandler struct {
	projectService *services.ProjectService
	log            logrus.FieldLogger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(projectService *services.ProjectService, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		projectService: projectService,
		log:            log,
	}
}

// AuditProject returns any project, active or not, with its members.
func (h *AdminHandler) AuditProject(c *gin.Context) {
	projectID, ok := middleware.ParseIDParam(c, "id", "Invalid project ID")
	if !ok {
		return
	}

	project, members, err := h.projectService.AuditProject(c.Request.Context(), middleware.GetCaller(c), projectID)
	if err != nil {
		respondError(c, h.log, err, "failed to audit project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, members))
}

// PurgeProject permanently removes a soft-deleted project and everything
// under it.
func (h *AdminHandler) PurgeProject(c *gin.Context) {
	projectID, ok := middleware.ParseIDParam(c, "id", "Invalid project ID")
	if !ok {
		return
	}

	if err := h.projectService.PurgeProject(c.Request.Context(), middleware.GetCaller(c), projectID); err != nil {
		respondError(c, h.log, err, "failed to purge project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project purged successfully",
	})
}
