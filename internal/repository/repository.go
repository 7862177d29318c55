package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// UserRepository defines the interface for user and role data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByIdentifier finds a user by username or email
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)

	// HasRole reports whether the user holds the role
	HasRole(ctx context.Context, userID uint64, role string) (bool, error)

	// GrantRole grants a role; granting an existing role is a no-op
	GrantRole(ctx context.Context, userID uint64, role string) error
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithOrganizer creates a project and the organizer's membership row atomically
	CreateWithOrganizer(ctx context.Context, project *models.Project, member *models.ProjectMember) error

	// FindByID finds a project by ID, active or not
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// UpdateDetails updates title and description only
	UpdateDetails(ctx context.Context, id uint64, title, description string) error

	// Deactivate sets is_active to false
	Deactivate(ctx context.Context, id uint64) error

	// ListVisibleTo lists active projects the user organizes or actively belongs to
	ListVisibleTo(ctx context.Context, userID uint64) ([]models.Project, error)

	// Purge removes a project and everything it owns in a single transaction
	Purge(ctx context.Context, id uint64) error

	// AddMember adds a membership row
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// RemoveMember hard-deletes a membership row
	RemoveMember(ctx context.Context, projectID, userID uint64) error

	// FindMember finds a membership row, active or not
	FindMember(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error)

	// SetMemberActive toggles the is_active flag of a membership row
	SetMemberActive(ctx context.Context, projectID, userID uint64, active bool) error

	// IsActiveMember reports whether an active membership row exists
	IsActiveMember(ctx context.Context, projectID, userID uint64) (bool, error)

	// ListMembers lists all membership rows of a project with their users
	ListMembers(ctx context.Context, projectID uint64) ([]models.ProjectMember, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// ListByProject lists a project's tasks newest first
	ListByProject(ctx context.Context, projectID uint64, params utils.PaginationParams) ([]models.Task, int64, error)

	// List retrieves tasks matching the filter ordered by end date
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// UpdateDetails updates title, description and dates
	UpdateDetails(ctx context.Context, task *models.Task) error

	// UpdateStatus sets the status of a task
	UpdateStatus(ctx context.Context, id uint64, status models.TaskStatus) error

	// Delete removes a task, its assignments and its comments atomically
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectIDs    []uint64
	IDs           []uint64
	Status        *models.TaskStatus
	ExcludeStatus *models.TaskStatus
	EndDateFrom   *time.Time
	EndDateTo     *time.Time
}

// AssignmentRepository defines the interface for the append-only assignment ledger
type AssignmentRepository interface {
	// Append inserts a new ledger row
	Append(ctx context.Context, record *models.TaskAssignment) error

	// Current returns the latest ledger row of a task
	Current(ctx context.Context, taskID uint64) (*models.TaskAssignment, error)

	// CurrentAssignee returns the user of the latest ledger row, if any
	CurrentAssignee(ctx context.Context, taskID uint64) (uint64, bool, error)

	// CurrentForTasks returns the latest ledger row per task
	CurrentForTasks(ctx context.Context, taskIDs []uint64) (map[uint64]models.TaskAssignment, error)

	// History lists a task's ledger rows newest first
	History(ctx context.Context, taskID uint64) ([]models.TaskAssignment, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(ctx context.Context, comment *models.Comment) error

	// FindByID finds a comment by ID, deleted or not
	FindByID(ctx context.Context, id uint64) (*models.Comment, error)

	// UpdateText replaces the text and stamps updated_at
	UpdateText(ctx context.Context, id uint64, text string, at time.Time) error

	// SoftDelete marks a comment deleted and stamps updated_at
	SoftDelete(ctx context.Context, id uint64, at time.Time) error

	// ListByTask lists a task's live comments oldest first
	ListByTask(ctx context.Context, taskID uint64) ([]models.Comment, error)
}

// SummaryRepository defines the interface for project summary data access
type SummaryRepository interface {
	// Create stores a generated summary
	Create(ctx context.Context, summary *models.ProjectSummary) error

	// Latest returns the most recent summary of a project
	Latest(ctx context.Context, projectID uint64) (*models.ProjectSummary, error)
}
