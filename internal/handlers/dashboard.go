package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// DashboardHandler serves the caller's assigned work.
type DashboardHandler struct {
	dashboardService *services.DashboardService
	log              logrus.FieldLogger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *services.DashboardService, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		log:              log,
	}
}

// GetDashboard accepts ?project_id=, ?status=, ?due_soon= and ?due_in_days=.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var filter services.DashboardFilter

	if raw := c.Query("project_id"); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || projectID == 0 {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		filter.ProjectID = &projectID
	}

	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		filter.Status = &status
	}

	if raw := c.Query("due_soon"); raw != "" {
		dueSoon, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_soon")
			return
		}
		filter.DueSoonOnly = dueSoon
	}

	if raw := c.Query("due_in_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_in_days")
			return
		}
		filter.DueInDays = days
	}

	caller := middleware.GetCaller(c)
	dashboard, err := h.dashboardService.MyAssignedTasks(c.Request.Context(), caller, filter)
	if err != nil {
		respondError(c, h.log, err, "failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, dto.ToDashboardResponse(dashboard, caller.UserID))
}
