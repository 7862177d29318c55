package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService provides business logic for projects and their memberships.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	policy      *access.Policy
	log         logrus.FieldLogger
	now         Clock
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, policy *access.Policy, log logrus.FieldLogger) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		policy:      policy,
		log:         log,
		now:         systemClock,
	}
}

// WithClock replaces the service clock.
func (s *ProjectService) WithClock(now Clock) *ProjectService {
	s.now = now
	return s
}

// ProjectInput holds the editable fields of a project.
type ProjectInput struct {
	Title       string
	Description string
}

func (in ProjectInput) normalize() (ProjectInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || utf8.RuneCountInString(in.Title) > constants.MaxProjectTitleLength {
		return in, ErrInvalidTitle
	}
	if in.Description == "" {
		return in, ErrDescriptionEmpty
	}
	return in, nil
}

// CreateProject creates a project organized by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, caller access.Caller, input ProjectInput) (*models.Project, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	input, err := input.normalize()
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       input.Title,
		Description: input.Description,
		OrganizerID: caller.UserID,
		IsActive:    true,
	}
	member := &models.ProjectMember{
		IsActive: true,
		JoinedAt: s.now(),
	}

	if err := s.projectRepo.CreateWithOrganizer(ctx, project, member); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"actor_id":   caller.UserID,
	}).Info("project created")

	return project, nil
}

// ListMyProjects returns the active projects the caller organizes or
// actively belongs to.
func (s *ProjectService) ListMyProjects(ctx context.Context, caller access.Caller) ([]models.Project, error) {
	if !caller.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	projects, err := s.projectRepo.ListVisibleTo(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project the caller may view.
func (s *ProjectService) GetProject(ctx context.Context, caller access.Caller, projectID uint64) (*models.Project, error) {
	return findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
}

// UpdateProject changes the title and description of a project.
func (s *ProjectService) UpdateProject(ctx context.Context, caller access.Caller, projectID uint64, input ProjectInput) (*models.Project, error) {
	project, err := findModifiableProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	input, err = input.normalize()
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateDetails(ctx, project.ID, input.Title, input.Description); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	project.Title = input.Title
	project.Description = input.Description
	return project, nil
}

// SoftDeleteProject marks a project inactive. Deleting a project that is
// already inactive succeeds without changing anything, provided the caller
// is its organizer or an admin.
func (s *ProjectService) SoftDeleteProject(ctx context.Context, caller access.Caller, projectID uint64) error {
	if !caller.Authenticated() {
		return ErrNotAuthenticated
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if !project.IsActive {
		if access.IsOrganizer(project, caller.UserID) || caller.IsAdmin {
			return nil
		}
		return ErrProjectNotFound
	}

	ok, err := s.policy.CanView(ctx, caller, project)
	if err != nil {
		return fmt.Errorf("failed to check project access: %w", err)
	}
	if !ok {
		return ErrProjectNotFound
	}
	if !s.policy.CanModify(caller, project) {
		return ErrProjectForbidden
	}

	if err := s.projectRepo.Deactivate(ctx, project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"actor_id":   caller.UserID,
	}).Info("project soft-deleted")

	return nil
}

// AuditProject returns any project, inactive included, with its members.
// Only admins may audit.
func (s *ProjectService) AuditProject(ctx context.Context, caller access.Caller, projectID uint64) (*models.Project, []models.ProjectMember, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, nil, err
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to find project: %w", err)
	}

	members, err := s.projectRepo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// PurgeProject permanently removes an inactive project and everything it
// owns. Only admins may purge, and only after the project was soft-deleted.
func (s *ProjectService) PurgeProject(ctx context.Context, caller access.Caller, projectID uint64) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if project.IsActive {
		return ErrProjectStillLive
	}

	if err := s.projectRepo.Purge(ctx, project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to purge project: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"actor_id":   caller.UserID,
	}).Warn("project purged")

	return nil
}

// ListMembers returns the project together with all of its membership rows.
func (s *ProjectService) ListMembers(ctx context.Context, caller access.Caller, projectID uint64) (*models.Project, []models.ProjectMember, error) {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.projectRepo.ListMembers(ctx, project.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list project members: %w", err)
	}

	return project, members, nil
}

// AddMember adds an active membership row for userID. A user who already
// has a row, suspended or not, is rejected.
func (s *ProjectService) AddMember(ctx context.Context, caller access.Caller, projectID, userID uint64) (*models.ProjectMember, error) {
	project, err := findModifiableProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(ctx, caller, project, user)
}

// AddMemberByIdentifier adds the user with the given username or email.
func (s *ProjectService) AddMemberByIdentifier(ctx context.Context, caller access.Caller, projectID uint64, identifier string) (*models.ProjectMember, error) {
	project, err := findModifiableProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return nil, err
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrIdentifierMissing
	}

	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.addMember(ctx, caller, project, user)
}

func (s *ProjectService) addMember(ctx context.Context, caller access.Caller, project *models.Project, user *models.User) (*models.ProjectMember, error) {
	if _, err := s.projectRepo.FindMember(ctx, project.ID, user.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		IsActive:  true,
		JoinedAt:  s.now(),
	}

	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add project member: %w", err)
	}
	member.User = *user

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    user.ID,
		"actor_id":   caller.UserID,
	}).Info("project member added")

	return member, nil
}

// RemoveMember hard-deletes a membership row. The organizer can never be
// removed, whoever asks.
func (s *ProjectService) RemoveMember(ctx context.Context, caller access.Caller, projectID, userID uint64) error {
	project, err := findVisibleProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return err
	}
	if access.IsOrganizer(project, userID) {
		return ErrIsOrganizer
	}
	if !s.policy.CanModify(caller, project) {
		return ErrProjectForbidden
	}

	if err := s.projectRepo.RemoveMember(ctx, project.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove project member: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    userID,
		"actor_id":   caller.UserID,
	}).Info("project member removed")

	return nil
}

// SuspendMember deactivates a membership row without removing it.
func (s *ProjectService) SuspendMember(ctx context.Context, caller access.Caller, projectID, userID uint64) error {
	return s.setMemberActive(ctx, caller, projectID, userID, false)
}

// ReactivateMember reactivates a suspended membership row.
func (s *ProjectService) ReactivateMember(ctx context.Context, caller access.Caller, projectID, userID uint64) error {
	return s.setMemberActive(ctx, caller, projectID, userID, true)
}

func (s *ProjectService) setMemberActive(ctx context.Context, caller access.Caller, projectID, userID uint64, active bool) error {
	project, err := findModifiableProject(ctx, s.projectRepo, s.policy, caller, projectID)
	if err != nil {
		return err
	}
	if access.IsOrganizer(project, userID) {
		return ErrIsOrganizer
	}

	member, err := s.projectRepo.FindMember(ctx, project.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if member.IsActive == active {
		if active {
			return ErrMemberActive
		}
		return ErrMemberSuspended
	}

	if err := s.projectRepo.SetMemberActive(ctx, project.ID, userID, active); err != nil {
		return fmt.Errorf("failed to update project member: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"project_id": project.ID,
		"user_id":    userID,
		"actor_id":   caller.UserID,
		"active":     active,
	}).Info("project member status changed")

	return nil
}

func requireAdmin(caller access.Caller) error {
	if !caller.Authenticated() {
		return ErrNotAuthenticated
	}
	if !caller.IsAdmin {
		return ErrAdminOnly
	}
	return nil
}
