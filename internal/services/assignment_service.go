package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// AssignmentService records task assignments in the append-only ledger and
// derives current assignees from it.
type AssignmentService struct {
	ledger      repository.AssignmentRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	policy      *access.Policy
	log         logrus.FieldLogger
	now         Clock
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	ledger repository.AssignmentRepository,
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	policy *access.Policy,
	log logrus.FieldLogger,
) *AssignmentService {
	return &AssignmentService{
		ledger:      ledger,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		policy:      policy,
		log:         log,
		now:         systemClock,
	}
}

// WithClock replaces the service clock.
func (s *AssignmentService) WithClock(now Clock) *AssignmentService {
	s.now = now
	return s
}

// Assign appends a ledger row making targetUserID the current assignee of
// the task. Assigning the user who already holds the task still appends.
// The row is stamped no earlier than the current one, so it takes over even
// if the clock has stepped back. A failed append is returned as is and never
// retried.
func (s *AssignmentService) Assign(ctx context.Context, caller access.Caller, taskID, targetUserID uint64) (*models.TaskAssignment, error) {
	task, project, err := findTask(ctx, s.taskRepo, s.projectRepo, caller, taskID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanAssign(caller, project) {
		return nil, ErrTaskForbidden
	}

	// Membership can change between listing candidates and assigning.
	ok, err := s.policy.IsValidAssigneeCandidate(ctx, project, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignee: %w", err)
	}
	if !ok {
		return nil, ErrInvalidAssignee
	}

	// Never stamp before the current row, so the new row always becomes
	// current even when the clock steps back.
	assignedAt := s.now()
	current, err := s.ledger.Current(ctx, task.ID)
	switch {
	case err == nil:
		if current.AssignedAt.After(assignedAt) {
			assignedAt = current.AssignedAt
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}

	record := &models.TaskAssignment{
		TaskID:       task.ID,
		UserID:       targetUserID,
		AssignedByID: caller.UserID,
		AssignedAt:   assignedAt,
	}

	if err := s.ledger.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to append assignment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"task_id":    task.ID,
		"user_id":    targetUserID,
		"actor_id":   caller.UserID,
	}).Info("task assigned")

	return record, nil
}

// CurrentAssignee returns the user currently holding a task the caller can
// view. The boolean is false for a task that was never assigned.
func (s *AssignmentService) CurrentAssignee(ctx context.Context, caller access.Caller, taskID uint64) (uint64, bool, error) {
	task, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, taskID)
	if err != nil {
		return 0, false, err
	}

	userID, ok, err := s.ledger.CurrentAssignee(ctx, task.ID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read assignment ledger: %w", err)
	}
	return userID, ok, nil
}

// History returns every ledger row of a task, newest first.
func (s *AssignmentService) History(ctx context.Context, caller access.Caller, taskID uint64) ([]models.TaskAssignment, error) {
	task, _, err := findVisibleTask(ctx, s.taskRepo, s.projectRepo, s.policy, caller, taskID)
	if err != nil {
		return nil, err
	}

	records, err := s.ledger.History(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment ledger: %w", err)
	}
	return records, nil
}

// ListAssigneeCandidates returns the organizer followed by the active
// members of the project.
func (s *AssignmentService) ListAssigneeCandidates(ctx context.Context, caller access.Caller, projectID uint64) ([]models.User, error) {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.User, 0)

	organizer, err := s.userRepo.FindByID(ctx, project.OrganizerID)
	switch {
	case err == nil:
		candidates = append(candidates, *organizer)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to find organizer: %w", err)
	}

	members, err := s.projectRepo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}

	for _, member := range members {
		if !member.IsActive || access.IsOrganizer(project, member.UserID) {
			continue
		}
		candidates = append(candidates, member.User)
	}

	return candidates, nil
}
