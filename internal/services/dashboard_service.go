package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
)

// DashboardService builds the caller's view of the tasks they currently hold.
type DashboardService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	ledger      repository.AssignmentRepository
	policy      *access.Policy
	now         Clock
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, ledger repository.AssignmentRepository, policy *access.Policy) *DashboardService {
	return &DashboardService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		ledger:      ledger,
		policy:      policy,
		now:         systemClock,
	}
}

// WithClock replaces the service clock.
func (s *DashboardService) WithClock(now Clock) *DashboardService {
	s.now = now
	return s
}

// DashboardFilter narrows the assigned task list. DueInDays defaults to
// constants.DefaultDueInDays and sizes both the due-soon filter and the
// upcoming deadline window.
type DashboardFilter struct {
	ProjectID   *uint64
	Status      *models.TaskStatus
	DueSoonOnly bool
	DueInDays   int
}

// Dashboard lists the caller's current tasks, earliest end date first.
type Dashboard struct {
	Tasks     []models.Task
	ByStatus  map[models.TaskStatus][]models.Task
	Upcoming  []models.Task
	WindowEnd time.Time
}

// MyAssignedTasks returns the tasks in visible active projects whose current
// assignee is the caller.
func (s *DashboardService) MyAssignedTasks(ctx context.Context, caller access.Caller, filter DashboardFilter) (*Dashboard, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	days := filter.DueInDays
	if days == 0 {
		days = constants.DefaultDueInDays
	}
	if days < 0 {
		return nil, ErrInvalidDueInDays
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	projectIDs, err := s.projectIDs(ctx, caller, filter.ProjectID)
	if err != nil {
		return nil, err
	}

	today := models.NormalizeDate(s.now())
	windowEnd := today.AddDate(0, 0, days)

	taskFilter := repository.TaskFilter{
		ProjectIDs: projectIDs,
		Status:     filter.Status,
	}
	if filter.DueSoonOnly {
		taskFilter.EndDateFrom = &today
		taskFilter.EndDateTo = &windowEnd
	}

	tasks, err := s.taskRepo.List(ctx, taskFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	ids := make([]uint64, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	current, err := s.ledger.CurrentForTasks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}

	dashboard := &Dashboard{
		Tasks:     make([]models.Task, 0),
		ByStatus:  make(map[models.TaskStatus][]models.Task, 3),
		Upcoming:  make([]models.Task, 0),
		WindowEnd: windowEnd,
	}

	for _, task := range tasks {
		record, ok := current[task.ID]
		if !ok || record.UserID != caller.UserID {
			continue
		}

		dashboard.Tasks = append(dashboard.Tasks, task)
		dashboard.ByStatus[task.Status] = append(dashboard.ByStatus[task.Status], task)

		if len(dashboard.Upcoming) < constants.MaxUpcomingDeadlines &&
			task.Status != models.TaskStatusCompleted &&
			!task.EndDate.Before(today) && !task.EndDate.After(windowEnd) {
			dashboard.Upcoming = append(dashboard.Upcoming, task)
		}
	}

	return dashboard, nil
}

func (s *DashboardService) projectIDs(ctx context.Context, caller access.Caller, projectID *uint64) ([]uint64, error) {
	if projectID != nil {
		project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, *projectID)
		if err != nil {
			return nil, err
		}
		return []uint64{project.ID}, nil
	}

	projects, err := s.projectRepo.ListVisibleTo(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	ids := make([]uint64, len(projects))
	for i, project := range projects {
		ids[i] = project.ID
	}
	return ids, nil
}
