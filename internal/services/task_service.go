package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	ledger      repository.AssignmentRepository
	policy      *access.Policy
	log         logrus.FieldLogger
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, ledger repository.AssignmentRepository, policy *access.Policy, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		ledger:      ledger,
		policy:      policy,
		log:         log,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateTaskInput represents input for updating a task. Status is changed
// through ChangeStatus only.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

// TaskPage is one page of a project's tasks with their current assignees.
type TaskPage struct {
	Tasks     []models.Task
	Assignees map[uint64]models.TaskAssignment
	Total     int64
}

// CreateTask creates a task in a project the caller may modify.
func (s *TaskService) CreateTask(ctx context.Context, caller access.Caller, projectID uint64, input CreateTaskInput) (*models.Task, error) {
	project, err := findModifiableProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	title, err := normalizeTaskTitle(input.Title)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusNotStarted
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	start, end, err := normalizeDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		CreatedByID: caller.UserID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"task_id":    task.ID,
		"actor_id":   caller.UserID,
	}).Info("task created")

	return task, nil
}

// GetTask returns a task the caller can view with its current ledger row,
// which is nil for a task that was never assigned.
func (s *TaskService) GetTask(ctx context.Context, caller access.Caller, taskID uint64) (*models.Task, *models.TaskAssignment, error) {
	task, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, taskID)
	if err != nil {
		return nil, nil, err
	}

	current, err := s.ledger.Current(ctx, task.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}

	return task, current, nil
}

// ListProjectTasks returns a page of a project's tasks, newest first.
func (s *TaskService) ListProjectTasks(ctx context.Context, caller access.Caller, projectID uint64, params utils.PaginationParams) (*TaskPage, error) {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	tasks, total, err := s.taskRepo.ListByProject(ctx, project.ID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	ids := make([]uint64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	assignees, err := s.ledger.CurrentForTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}

	return &TaskPage{Tasks: tasks, Assignees: assignees, Total: total}, nil
}

// UpdateTask edits a task's title, description and dates.
func (s *TaskService) UpdateTask(ctx context.Context, caller access.Caller, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, project, err := findTask(ctx, s.taskRepo, s.projectRepo, caller, taskID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanModify(caller, project) {
		return nil, ErrTaskForbidden
	}

	if input.Title != nil {
		title, err := normalizeTaskTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}

	start, end := task.StartDate, task.EndDate
	if input.StartDate != nil {
		start = *input.StartDate
	}
	if input.EndDate != nil {
		end = *input.EndDate
	}
	task.StartDate, task.EndDate, err = normalizeDateRange(start, end)
	if err != nil {
		return nil, err
	}

	if err := s.taskRepo.UpdateDetails(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task with its assignment ledger and comments.
func (s *TaskService) DeleteTask(ctx context.Context, caller access.Caller, taskID uint64) error {
	task, project, err := findTask(ctx, s.taskRepo, s.projectRepo, caller, taskID)
	if err != nil {
		return err
	}
	if !s.policy.CanModify(caller, project) {
		return ErrTaskForbidden
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"task_id":    task.ID,
		"actor_id":   caller.UserID,
	}).Info("task deleted")

	return nil
}

// ChangeStatus sets a task's status. Any status may follow any other; the
// organizer, an admin or the current assignee may change it. The current
// assignment is returned alongside the task, or nil if it was never assigned.
func (s *TaskService) ChangeStatus(ctx context.Context, caller access.Caller, taskID uint64, status models.TaskStatus) (*models.Task, *models.TaskAssignment, error) {
	task, project, err := findTask(ctx, s.taskRepo, s.projectRepo, caller, taskID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.policy.CanChangeStatus(ctx, caller, project, task)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check status permission: %w", err)
	}
	if !ok {
		return nil, nil, ErrTaskForbidden
	}

	if !status.IsValid() {
		return nil, nil, ErrInvalidStatus
	}

	if err := s.taskRepo.UpdateStatus(ctx, task.ID, status); err != nil {
		return nil, nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"task_id":    task.ID,
		"actor_id":   caller.UserID,
		"from":       task.Status,
		"to":         status,
	}).Info("task status changed")

	task.Status = status

	current, err := s.ledger.Current(ctx, task.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}

	return task, current, nil
}

func normalizeTaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > constants.MaxTaskTitleLength {
		return "", ErrInvalidTitle
	}
	return title, nil
}

// normalizeDateRange strips the time of day and requires end to fall on a
// later calendar date than start.
func normalizeDateRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	start = models.NormalizeDate(start)
	end = models.NormalizeDate(end)
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}
