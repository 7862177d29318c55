package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

func TestCreateProject_AddsOrganizerMembership(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")

	project, err := env.projects.CreateProject(env.ctx, organizer, ProjectInput{
		Title:       "  Launch  ",
		Description: " Ship it ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch", project.Title)
	assert.Equal(t, "Ship it", project.Description)
	assert.True(t, project.IsActive)
	assert.Equal(t, organizer.UserID, project.OrganizerID)

	member, err := env.projectRepo.FindMember(env.ctx, project.ID, organizer.UserID)
	require.NoError(t, err)
	assert.True(t, member.IsActive)
	assert.True(t, env.clock.Now().Equal(member.JoinedAt))
}

func TestCreateProject_Validation(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")

	tests := []struct {
		name  string
		input ProjectInput
		want  error
	}{
		{"empty title", ProjectInput{Title: "   ", Description: "d"}, ErrInvalidTitle},
		{"long title", ProjectInput{Title: strings.Repeat("a", 201), Description: "d"}, ErrInvalidTitle},
		{"empty description", ProjectInput{Title: "t", Description: " "}, ErrDescriptionEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.projects.CreateProject(env.ctx, organizer, tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := env.projects.CreateProject(env.ctx, access.Anonymous(), ProjectInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetProject_Visibility(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	outsider := env.createUser("xavier")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)

	for _, caller := range []access.Caller{organizer, member, admin} {
		got, err := env.projects.GetProject(env.ctx, caller, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, got.ID)
	}

	_, err := env.projects.GetProject(env.ctx, outsider, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.projects.GetProject(env.ctx, access.Anonymous(), project.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.projects.GetProject(env.ctx, organizer, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject_OnlyOrganizerOrAdmin(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)

	_, err := env.projects.UpdateProject(env.ctx, member, project.ID, ProjectInput{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := env.projects.UpdateProject(env.ctx, admin, project.ID, ProjectInput{Title: "Renamed", Description: "New"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	stored, err := env.projectRepo.FindByID(env.ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, "New", stored.Description)
	assert.Equal(t, organizer.UserID, stored.OrganizerID)
}

func TestSoftDeleteProject_Idempotent(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)

	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, organizer, project.ID))
	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, organizer, project.ID))
	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, admin, project.ID))

	stored, err := env.projectRepo.FindByID(env.ctx, project.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	for _, caller := range []access.Caller{organizer, member, admin} {
		_, err := env.projects.GetProject(env.ctx, caller, project.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		view, err := env.policy.CanView(env.ctx, caller, stored)
		require.NoError(t, err)
		assert.False(t, view)
		assert.False(t, access.CanModify(caller, stored))
		assert.False(t, access.CanAssign(caller, stored))
	}

	err = env.projects.SoftDeleteProject(env.ctx, member, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteProject_MemberForbidden(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)

	err := env.projects.SoftDeleteProject(env.ctx, member, project.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	stored, err := env.projectRepo.FindByID(env.ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
}

func TestAddMember_RejectsExistingRows(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)

	_, err := env.projects.AddMember(env.ctx, organizer, project.ID, member.UserID)
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, env.projects.SuspendMember(env.ctx, organizer, project.ID, member.UserID))

	_, err = env.projects.AddMember(env.ctx, organizer, project.ID, member.UserID)
	assert.ErrorIs(t, err, ErrAlreadyMember, "suspended members are not silently reactivated")

	_, err = env.projects.AddMember(env.ctx, organizer, project.ID, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddMember_InactiveProject(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	newcomer := env.createUser("nina")
	project := env.createProject(organizer)
	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, organizer, project.ID))

	_, err := env.projects.AddMember(env.ctx, organizer, project.ID, newcomer.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMemberByIdentifier(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer)

	added, err := env.projects.AddMemberByIdentifier(env.ctx, organizer, project.ID, " mike@example.com ")
	require.NoError(t, err)
	assert.Equal(t, member.UserID, added.UserID)
	assert.Equal(t, "mike", added.User.Username)

	_, err = env.projects.AddMemberByIdentifier(env.ctx, organizer, project.ID, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.projects.AddMemberByIdentifier(env.ctx, organizer, project.ID, "  ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRemoveMember_OrganizerAlwaysConflict(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)

	for _, caller := range []access.Caller{organizer, member, admin} {
		err := env.projects.RemoveMember(env.ctx, caller, project.ID, organizer.UserID)
		assert.ErrorIs(t, err, ErrIsOrganizer)
		assert.ErrorIs(t, err, ErrConflict)
	}

	_, err := env.projectRepo.FindMember(env.ctx, project.ID, organizer.UserID)
	assert.NoError(t, err)
}

func TestRemoveMember(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	other := env.createUser("maya")
	project := env.createProject(organizer, member, other)

	err := env.projects.RemoveMember(env.ctx, member, project.ID, other.UserID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, env.projects.RemoveMember(env.ctx, organizer, project.ID, member.UserID))

	ok, err := env.projectRepo.IsActiveMember(env.ctx, project.ID, member.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = env.projects.RemoveMember(env.ctx, organizer, project.ID, member.UserID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = env.projects.GetProject(env.ctx, member, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuspendAndReactivateMember(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)

	require.NoError(t, env.projects.SuspendMember(env.ctx, organizer, project.ID, member.UserID))
	assert.ErrorIs(t, env.projects.SuspendMember(env.ctx, organizer, project.ID, member.UserID), ErrMemberSuspended)

	_, err := env.projects.GetProject(env.ctx, member, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.projects.ReactivateMember(env.ctx, organizer, project.ID, member.UserID))
	assert.ErrorIs(t, env.projects.ReactivateMember(env.ctx, organizer, project.ID, member.UserID), ErrMemberActive)

	_, err = env.projects.GetProject(env.ctx, member, project.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, env.projects.SuspendMember(env.ctx, organizer, project.ID, organizer.UserID), ErrIsOrganizer)
}

func TestListMyProjects(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")

	live := env.createProject(organizer, member)
	deleted := env.createProject(organizer, member)
	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, organizer, deleted.ID))

	suspended := env.createProject(organizer, member)
	require.NoError(t, env.projects.SuspendMember(env.ctx, organizer, suspended.ID, member.UserID))

	mine, err := env.projects.ListMyProjects(env.ctx, member)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, live.ID, mine[0].ID)

	organized, err := env.projects.ListMyProjects(env.ctx, organizer)
	require.NoError(t, err)
	require.Len(t, organized, 2)
	assert.Equal(t, suspended.ID, organized[0].ID, "newest first")
}

func TestListMembers(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	outsider := env.createUser("xavier")
	project := env.createProject(organizer, member)

	_, members, err := env.projects.ListMembers(env.ctx, member, project.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "olivia", members[0].User.Username)
	assert.Equal(t, "mike", members[1].User.Username)

	_, _, err = env.projects.ListMembers(env.ctx, outsider, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuditAndPurgeProject(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)
	task := env.createTask(organizer, project.ID, "Write docs")

	_, err := env.assignments.Assign(env.ctx, organizer, task.ID, member.UserID)
	require.NoError(t, err)
	_, err = env.comments.AddComment(env.ctx, member, task.ID, "on it")
	require.NoError(t, err)

	_, _, err = env.projects.AuditProject(env.ctx, organizer, project.ID)
	assert.ErrorIs(t, err, ErrAdminOnly)

	assert.ErrorIs(t, env.projects.PurgeProject(env.ctx, admin, project.ID), ErrProjectStillLive)

	require.NoError(t, env.projects.SoftDeleteProject(env.ctx, organizer, project.ID))

	audited, members, err := env.projects.AuditProject(env.ctx, admin, project.ID)
	require.NoError(t, err)
	assert.False(t, audited.IsActive)
	assert.Len(t, members, 2)

	assert.ErrorIs(t, env.projects.PurgeProject(env.ctx, organizer, project.ID), ErrForbidden)
	require.NoError(t, env.projects.PurgeProject(env.ctx, admin, project.ID))

	for _, model := range []interface{}{&models.Project{}, &models.ProjectMember{}, &models.Task{}, &models.TaskAssignment{}, &models.Comment{}} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}

	assert.ErrorIs(t, env.projects.PurgeProject(env.ctx, admin, project.ID), ErrNotFound)
}
