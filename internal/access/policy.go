// Package access holds the permission rules for projects and tasks.
//
// The rules are pure: they read membership and assignment state through the
// small reader interfaces below and never mutate anything, so a Policy is
// safe for concurrent use as long as its readers are.
package access

import (
	"context"

	"github.com/yukikurage/project-tracker-api/internal/models"
)

// MembershipReader answers whether a user holds an active membership row.
type MembershipReader interface {
	IsActiveMember(ctx context.Context, projectID, userID uint64) (bool, error)
}

// AssigneeReader derives the current assignee of a task from the ledger.
type AssigneeReader interface {
	CurrentAssignee(ctx context.Context, taskID uint64) (uint64, bool, error)
}

// IsOrganizer reports whether userID owns the project.
func IsOrganizer(project *models.Project, userID uint64) bool {
	return project != nil && userID != 0 && project.OrganizerID == userID
}

// CanModify reports whether the caller may edit the project, manage its
// members, or create, edit and delete its tasks.
func CanModify(caller Caller, project *models.Project) bool {
	if !caller.Authenticated() || project == nil || !project.IsActive {
		return false
	}
	return IsOrganizer(project, caller.UserID) || caller.IsAdmin
}

// CanAssign reports whether the caller may assign tasks in the project.
func CanAssign(caller Caller, project *models.Project) bool {
	return CanModify(caller, project)
}

// Policy evaluates the rules that need membership or ledger state.
type Policy struct {
	members   MembershipReader
	assignees AssigneeReader
}

// NewPolicy creates a Policy.
func NewPolicy(members MembershipReader, assignees AssigneeReader) *Policy {
	return &Policy{
		members:   members,
		assignees: assignees,
	}
}

// CanView reports whether the caller may see the project and its tasks.
func (p *Policy) CanView(ctx context.Context, caller Caller, project *models.Project) (bool, error) {
	if !caller.Authenticated() || project == nil || !project.IsActive {
		return false, nil
	}
	if IsOrganizer(project, caller.UserID) || caller.IsAdmin {
		return true, nil
	}
	return p.members.IsActiveMember(ctx, project.ID, caller.UserID)
}

// CanModify is the method form of CanModify.
func (p *Policy) CanModify(caller Caller, project *models.Project) bool {
	return CanModify(caller, project)
}

// CanAssign is the method form of CanAssign.
func (p *Policy) CanAssign(caller Caller, project *models.Project) bool {
	return CanAssign(caller, project)
}

// CanChangeStatus reports whether the caller may set the status of task.
// Besides organizer and admin, the task's current assignee may do so; the
// assignee is read from the ledger on every call.
func (p *Policy) CanChangeStatus(ctx context.Context, caller Caller, project *models.Project, task *models.Task) (bool, error) {
	if task == nil || project == nil || task.ProjectID != project.ID {
		return false, nil
	}
	if CanModify(caller, project) {
		return true, nil
	}
	if !caller.Authenticated() || !project.IsActive {
		return false, nil
	}

	assignee, ok, err := p.assignees.CurrentAssignee(ctx, task.ID)
	if err != nil {
		return false, err
	}
	return ok && assignee == caller.UserID, nil
}

// IsValidAssigneeCandidate reports whether userID belongs to the project and
// may therefore be assigned one of its tasks.
func (p *Policy) IsValidAssigneeCandidate(ctx context.Context, project *models.Project, userID uint64) (bool, error) {
	if project == nil || userID == 0 {
		return false, nil
	}
	if IsOrganizer(project, userID) {
		return true, nil
	}
	return p.members.IsActiveMember(ctx, project.ID, userID)
}
