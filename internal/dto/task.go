package dto

import (
	"time"

	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// TaskAssignmentDTO represents one ledger record in API responses
type TaskAssignmentDTO struct {
	ID           uint64    `json:"id"`
	TaskID       uint64    `json:"task_id"`
	UserID       uint64    `json:"user_id"`
	AssignedByID uint64    `json:"assigned_by_id"`
	AssignedAt   time.Time `json:"assigned_at"`
	User         *UserDTO  `json:"user,omitempty"`
	AssignedBy   *UserDTO  `json:"assigned_by,omitempty"`
}

// TaskDTO represents a task in API responses. AssigneeID is the current
// assignee derived from the ledger and is omitted when there is none or the
// response does not carry it.
type TaskDTO struct {
	ID          uint64            `json:"id"`
	ProjectID   uint64            `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	CreatedByID uint64            `json:"created_by_id"`
	CreatedAt   time.Time         `json:"created_at"`
	AssigneeID  *uint64           `json:"assignee_id,omitempty"`
	AssignedAt  *time.Time        `json:"assigned_at,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64     `json:"id"`
	TaskID    uint64     `json:"task_id"`
	UserID    uint64     `json:"user_id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	User      *UserDTO   `json:"user,omitempty"`
}

// DashboardResponse is the caller's assigned work
type DashboardResponse struct {
	Tasks     []TaskDTO                       `json:"tasks"`
	ByStatus  map[models.TaskStatus][]TaskDTO `json:"by_status"`
	Upcoming  []TaskDTO                       `json:"upcoming_deadlines"`
	WindowEnd string                          `json:"window_end"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	}
}

// ToPublicUserDTO converts a User model to UserDTO without contact details
func ToPublicUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	}
}

func optionalUser(user models.User) *UserDTO {
	if user.ID == 0 {
		return nil
	}
	dto := ToPublicUserDTO(user)
	return &dto
}

// ToTaskAssignmentDTO converts a ledger record to TaskAssignmentDTO
func ToTaskAssignmentDTO(assignment models.TaskAssignment) TaskAssignmentDTO {
	return TaskAssignmentDTO{
		ID:           assignment.ID,
		TaskID:       assignment.TaskID,
		UserID:       assignment.UserID,
		AssignedByID: assignment.AssignedByID,
		AssignedAt:   assignment.AssignedAt,
		User:         optionalUser(assignment.User),
		AssignedBy:   optionalUser(assignment.AssignedBy),
	}
}

// ToTaskAssignmentDTOs converts a ledger history
func ToTaskAssignmentDTOs(assignments []models.TaskAssignment) []TaskAssignmentDTO {
	dtos := make([]TaskAssignmentDTO, len(assignments))
	for i, assignment := range assignments {
		dtos[i] = ToTaskAssignmentDTO(assignment)
	}
	return dtos
}

// ToTaskDTO converts a Task model to TaskDTO. current may be nil.
func ToTaskDTO(task models.Task, current *models.TaskAssignment) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		StartDate:   task.StartDate.Format(constants.DateLayout),
		EndDate:     task.EndDate.Format(constants.DateLayout),
		CreatedByID: task.CreatedByID,
		CreatedAt:   task.CreatedAt,
	}

	if current != nil {
		assigneeID := current.UserID
		assignedAt := current.AssignedAt
		dto.AssigneeID = &assigneeID
		dto.AssignedAt = &assignedAt
	}

	return dto
}

// ToTaskDTOs converts tasks, looking each current assignee up by task ID
func ToTaskDTOs(tasks []models.Task, assignees map[uint64]models.TaskAssignment) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		var current *models.TaskAssignment
		if assignment, ok := assignees[task.ID]; ok {
			current = &assignment
		}
		dtos[i] = ToTaskDTO(task, current)
	}
	return dtos
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(page *services.TaskPage, params utils.PaginationParams) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(page.Tasks, page.Assignees),
		Pagination: utils.NewPaginationResponse(params, page.Total),
	}
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		UserID:    comment.UserID,
		Text:      comment.Text,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		User:      optionalUser(comment.User),
	}
}

// ToCommentDTOs converts a comment thread
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		dtos[i] = ToCommentDTO(comment)
	}
	return dtos
}

// ToDashboardResponse converts a dashboard. Every task on it is held by
// userID, so the assignee is filled in without a ledger lookup.
func ToDashboardResponse(dashboard *services.Dashboard, userID uint64) DashboardResponse {
	toDTOs := func(tasks []models.Task) []TaskDTO {
		dtos := make([]TaskDTO, len(tasks))
		for i, task := range tasks {
			dtos[i] = ToTaskDTO(task, nil)
			assigneeID := userID
			dtos[i].AssigneeID = &assigneeID
		}
		return dtos
	}

	byStatus := make(map[models.TaskStatus][]TaskDTO, len(dashboard.ByStatus))
	for status, tasks := range dashboard.ByStatus {
		byStatus[status] = toDTOs(tasks)
	}

	return DashboardResponse{
		Tasks:     toDTOs(dashboard.Tasks),
		ByStatus:  byStatus,
		Upcoming:  toDTOs(dashboard.Upcoming),
		WindowEnd: dashboard.WindowEnd.Format(constants.DateLayout),
	}
}
