package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// SummaryService generates and stores plain-text project summaries built
// from the project's task counts.
type SummaryService struct {
	summaryRepo repository.SummaryRepository
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	policy      *access.Policy
	log         logrus.FieldLogger
	now         Clock
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(summaryRepo repository.SummaryRepository, taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, policy *access.Policy, log logrus.FieldLogger) *SummaryService {
	return &SummaryService{
		summaryRepo: summaryRepo,
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		policy:      policy,
		log:         log,
		now:         systemClock,
	}
}

// WithClock replaces the service clock.
func (s *SummaryService) WithClock(now Clock) *SummaryService {
	s.now = now
	return s
}

// Generate computes a fresh summary of the project and stores it.
func (s *SummaryService) Generate(ctx context.Context, caller access.Caller, projectID uint64) (*models.ProjectSummary, error) {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskFilter{ProjectIDs: []uint64{project.ID}})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	now := s.now()
	summary := &models.ProjectSummary{
		ProjectID:     project.ID,
		GeneratedByID: caller.UserID,
		GeneratedAt:   now,
		Content:       summarize(tasks, models.NormalizeDate(now)),
	}

	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to store summary: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"actor_id":   caller.UserID,
	}).Info("project summary generated")

	return summary, nil
}

// Latest returns the most recently generated summary of the project.
func (s *SummaryService) Latest(ctx context.Context, caller access.Caller, projectID uint64) (*models.ProjectSummary, error) {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summaryRepo.Latest(ctx, project.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSummaryNotFound
		}
		return nil, fmt.Errorf("failed to find summary: %w", err)
	}
	return summary, nil
}

// summarize expects tasks ordered by end date. The next deadline is the
// first unfinished task ending today or later.
func summarize(tasks []models.Task, today time.Time) string {
	counts := make(map[models.TaskStatus]int, 3)
	var next *models.Task
	for i := range tasks {
		task := &tasks[i]
		counts[task.Status]++
		if next == nil && task.Status != models.TaskStatusCompleted && !task.EndDate.Before(today) {
			next = task
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "This project has %d tasks: %d completed, %d in progress, %d not started.",
		len(tasks),
		counts[models.TaskStatusCompleted],
		counts[models.TaskStatusInProgress],
		counts[models.TaskStatusNotStarted],
	)
	if next != nil {
		fmt.Fprintf(&b, " Next deadline: %q on %s.", next.Title, next.EndDate.Format(constants.DateLayout))
	} else {
		b.WriteString(" No upcoming deadlines.")
	}
	return b.String()
}
