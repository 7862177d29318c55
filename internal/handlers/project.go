package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// ProjectHandler serves projects, their members and summaries.
type ProjectHandler struct {
	projectService    *services.ProjectService
	assignmentService *services.AssignmentService
	summaryService    *services.SummaryService
	log               logrus.FieldLogger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, assignmentService *services.AssignmentService, summaryService *services.SummaryService, log logrus.FieldLogger) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		assignmentService: assignmentService,
		summaryService:    summaryService,
		log:               log,
	}
}

type projectRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
}

// currentProject returns the project loaded by RequireProjectAccess.
func (h *ProjectHandler) currentProject(c *gin.Context) (*models.Project, bool) {
	project, ok := middleware.GetProject(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "project not found in context")
		return nil, false
	}
	return project, true
}

// CreateProject creates a project organized by the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), middleware.GetCaller(c), services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to create project")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the active projects the caller can see.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListMyProjects(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		respondError(c, h.log, err, "failed to list projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// GetProject returns a project with its members.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	_, members, err := h.projectService.ListMembers(c.Request.Context(), middleware.GetCaller(c), project.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to list members")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(*project, members))
}

// UpdateProject edits the title and description.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	var req projectRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.projectService.UpdateProject(c.Request.Context(), middleware.GetCaller(c), project.ID, services.ProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to update project")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated))
}

// DeleteProject soft-deletes a project. It runs without
// RequireProjectAccess so repeating the call on an already deleted project
// still succeeds for its organizer.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := middleware.ParseIDParam(c, "id", "Invalid project ID")
	if !ok {
		return
	}

	if err := h.projectService.SoftDeleteProject(c.Request.Context(), middleware.GetCaller(c), projectID); err != nil {
		respondError(c, h.log, err, "failed to delete project")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ListMembers returns every membership row of the project.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	project, members, err := h.projectService.ListMembers(c.Request.Context(), middleware.GetCaller(c), project.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToProjectMemberDTOs(*project, members),
	})
}

// AddMember adds a user by id or by username/email.
func (h *ProjectHandler) AddMember(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID     uint64 `json:"user_id"`
		Identifier string `json:"identifier" binding:"max=255"`
	}

	var req AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	caller := middleware.GetCaller(c)
	var (
		member *models.ProjectMember
		err    error
	)
	switch {
	case req.UserID != 0:
		member, err = h.projectService.AddMember(c.Request.Context(), caller, project.ID, req.UserID)
	case req.Identifier != "":
		member, err = h.projectService.AddMemberByIdentifier(c.Request.Context(), caller, project.ID, req.Identifier)
	default:
		apierrors.BadRequest(c, "user_id or identifier is required")
		return
	}
	if err != nil {
		respondError(c, h.log, err, "failed to add member")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectMemberDTO(*project, *member))
}

// RemoveMember deletes a membership row.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}
	userID, ok := middleware.ParseIDParam(c, "user_id", "Invalid user ID")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), middleware.GetCaller(c), project.ID, userID); err != nil {
		respondError(c, h.log, err, "failed to remove member")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// SuspendMember deactivates a membership row without deleting it.
func (h *ProjectHandler) SuspendMember(c *gin.Context) {
	h.setMemberActive(c, false)
}

// ReactivateMember reactivates a suspended membership row.
func (h *ProjectHandler) ReactivateMember(c *gin.Context) {
	h.setMemberActive(c, true)
}

func (h *ProjectHandler) setMemberActive(c *gin.Context, active bool) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}
	userID, ok := middleware.ParseIDParam(c, "user_id", "Invalid user ID")
	if !ok {
		return
	}

	caller := middleware.GetCaller(c)
	var err error
	if active {
		err = h.projectService.ReactivateMember(c.Request.Context(), caller, project.ID, userID)
	} else {
		err = h.projectService.SuspendMember(c.Request.Context(), caller, project.ID, userID)
	}
	if err != nil {
		respondError(c, h.log, err, "failed to change member state")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"is_active": active,
	})
}

// ListCandidates returns the users a task of this project may be assigned to.
func (h *ProjectHandler) ListCandidates(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	users, err := h.assignmentService.ListAssigneeCandidates(c.Request.Context(), middleware.GetCaller(c), project.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to list assignee candidates")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": dto.ToUserDTOs(users),
	})
}

// GenerateSummary stores a new progress summary of the project.
func (h *ProjectHandler) GenerateSummary(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	summary, err := h.summaryService.Generate(c.Request.Context(), middleware.GetCaller(c), project.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to generate summary")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectSummaryDTO(*summary))
}

// GetSummary returns the most recent summary of the project.
func (h *ProjectHandler) GetSummary(c *gin.Context) {
	project, ok := h.currentProject(c)
	if !ok {
		return
	}

	summary, err := h.summaryService.Latest(c.Request.Context(), middleware.GetCaller(c), project.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to load summary")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectSummaryDTO(*summary))
}
