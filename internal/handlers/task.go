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
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	assignmentService *services.AssignmentService
	log               logrus.FieldLogger
}

func NewTaskHandler(taskService *services.TaskService, assignmentService *services.AssignmentService, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		assignmentService: assignmentService,
		log:               log,
	}
}

func (h *TaskHandler) currentTask(c *gin.Context) (*models.Task, bool) {
	task, ok := middleware.GetTask(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "task not found in context")
		return nil, false
	}
	return task, true
}

// ListTasks returns a page of the project's tasks
// Project is already checked by RequireProjectAccess middleware
func (h *TaskHandler) ListTasks(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "project not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	page, err := h.taskService.ListProjectTasks(c.Request.Context(), middleware.GetCaller(c), project.ID, params)
	if err != nil {
		respondError(c, h.log, err, "failed to list tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page, params))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		respondError(c, h.log, errMissingContext, "project not found in context")
		return
	}

	type CreateTaskRequest struct {
		Title       string `json:"title" binding:"required,max=200"`
		Description string `json:"description"`
		Status      string `json:"status" binding:"omitempty,task_status"`
		StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
		EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
	}

	var req CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	startDate, err := parseDate("start_date", req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	endDate, err := parseDate("end_date", req.EndDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.GetCaller(c), project.ID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to create task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task, nil))
}

// GetTask returns a specific task by ID
// Task and its current assignment are loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, middleware.GetCurrentAssignment(c)))
}

// UpdateTask updates an existing task. Omitted fields keep their value.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string `json:"title" binding:"omitempty,max=200"`
		Description *string `json:"description"`
		StartDate   *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
		EndDate     *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	}

	var req UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	startDate, err := parseOptionalDate("start_date", req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	endDate, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), middleware.GetCaller(c), task.ID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to update task")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated, middleware.GetCurrentAssignment(c)))
}

// DeleteTask deletes a task with its assignments and comments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.GetCaller(c), task.ID); err != nil {
		respondError(c, h.log, err, "failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ChangeStatus sets the task status. It runs without RequireTaskAccess: the
// current assignee may change the status even after losing membership.
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	taskID, ok := middleware.ParseIDParam(c, "id", "Invalid task ID")
	if !ok {
		return
	}

	type ChangeStatusRequest struct {
		Status string `json:"status" binding:"required,task_status"`
	}

	var req ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, current, err := h.taskService.ChangeStatus(c.Request.Context(), middleware.GetCaller(c), taskID, models.TaskStatus(req.Status))
	if err != nil {
		respondError(c, h.log, err, "failed to change task status")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task, current))
}

// AssignTask appends an assignment record making user_id the current assignee
func (h *TaskHandler) AssignTask(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		UserID uint64 `json:"user_id" binding:"required,gt=0"`
	}

	var req AssignTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.Assign(c.Request.Context(), middleware.GetCaller(c), task.ID, req.UserID)
	if err != nil {
		respondError(c, h.log, err, "failed to assign task")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskAssignmentDTO(*assignment))
}

// ListAssignments returns the task's assignment history, newest first
func (h *TaskHandler) ListAssignments(c *gin.Context) {
	task, ok := h.currentTask(c)
	if !ok {
		return
	}

	history, err := h.assignmentService.History(c.Request.Context(), middleware.GetCaller(c), task.ID)
	if err != nil {
		respondError(c, h.log, err, "failed to load assignment history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": dto.ToTaskAssignmentDTOs(history),
	})
}
