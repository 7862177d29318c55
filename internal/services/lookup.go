package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// Clock returns the current time. Services store timestamps in UTC.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

// findActiveProject loads a project, hiding inactive ones behind NotFound.
func findActiveProject(ctx context.Context, projects repository.ProjectRepository, projectID uint64) (*models.Project, error) {
	project, err := projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if !project.IsActive {
		return nil, ErrProjectInactive
	}
	return project, nil
}

// findVisibleProject loads a project the caller may view.
func findVisibleProject(ctx context.Context, projects repository.ProjectRepository, policy *access.Policy, caller access.Caller, projectID uint64) (*models.Project, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	project, err := findActiveProject(ctx, projects, projectID)
	if err != nil {
		return nil, err
	}

	ok, err := policy.CanView(ctx, caller, project)
	if err != nil {
		return nil, fmt.Errorf("failed to check project access: %w", err)
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// findModifiableProject loads a project the caller may modify. Callers who
// cannot even view it get NotFound; viewers get Forbidden.
func findModifiableProject(ctx context.Context, projects repository.ProjectRepository, policy *access.Policy, caller access.Caller, projectID uint64) (*models.Project, error) {
	project, err := findVisibleProject(ctx, projects, policy, caller, projectID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModify(caller, project) {
		return nil, ErrProjectForbidden
	}
	return project, nil
}

// findTask loads a task together with its project. A task in an inactive
// project is reported as missing.
func findTask(ctx context.Context, tasks repository.TaskRepository, projects repository.ProjectRepository, caller access.Caller, taskID uint64) (*models.Task, *models.Project, error) {
	if !caller.Authenticated() {
		return nil, nil, ErrNotAuthenticated
	}

	task, err := tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := findActiveProject(ctx, projects, task.ProjectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, err
	}

	return task, project, nil
}

// findVisibleTask loads a task the caller may view.
func findVisibleTask(ctx context.Context, tasks repository.TaskRepository, projects repository.ProjectRepository, policy *access.Policy, caller access.Caller, taskID uint64) (*models.Task, *models.Project, error) {
	task, project, err := findTask(ctx, tasks, projects, caller, taskID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := policy.CanView(ctx, caller, project)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check project access: %w", err)
	}
	if !ok {
		return nil, nil, ErrTaskNotFound
	}
	return task, project, nil
}
