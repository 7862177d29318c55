package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/utils"
	"gorm.io/gorm"
)

func TestCreateTask_DateRange(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	project := env.createProject(organizer)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"same day", date(2025, 1, 10), date(2025, 1, 10), true},
		{"end before start", date(2025, 1, 10), date(2025, 1, 9), true},
		{"same day different times", time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC), true},
		{"missing end", date(2025, 1, 10), time.Time{}, true},
		{"next day", date(2025, 1, 10), date(2025, 1, 11), false},
		{"late start early end on later date", time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC), time.Date(2025, 1, 11, 1, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := env.tasks.CreateTask(env.ctx, organizer, project.ID, CreateTaskInput{
				Title:     "Plan",
				StartDate: tt.start,
				EndDate:   tt.end,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.TaskStatusNotStarted, task.Status)
			assert.Equal(t, 0, task.StartDate.Hour())
			assert.Equal(t, 0, task.EndDate.Hour())
		})
	}
}

func TestCreateTask_Rules(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)

	input := CreateTaskInput{Title: "Plan", StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 12)}

	_, err := env.tasks.CreateTask(env.ctx, member, project.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)

	task, err := env.tasks.CreateTask(env.ctx, admin, project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, task.CreatedByID)

	input.Status = models.TaskStatusInProgress
	task, err = env.tasks.CreateTask(env.ctx, organizer, project.ID, input)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	input.Status = "DONE"
	_, err = env.tasks.CreateTask(env.ctx, organizer, project.ID, input)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	input.Status = ""
	input.Title = "  "
	_, err = env.tasks.CreateTask(env.ctx, organizer, project.ID, input)
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestChangeStatus_AnyOrder(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	project := env.createProject(organizer)
	task := env.createTask(organizer, project.ID, "Plan")

	sequence := []models.TaskStatus{
		models.TaskStatusCompleted,
		models.TaskStatusNotStarted,
		models.TaskStatusInProgress,
		models.TaskStatusNotStarted,
		models.TaskStatusCompleted,
		models.TaskStatusCompleted,
	}

	for _, status := range sequence {
		changed, assignment, err := env.tasks.ChangeStatus(env.ctx, organizer, task.ID, status)
		require.NoError(t, err, "to %s", status)
		assert.Equal(t, status, changed.Status)
		assert.Nil(t, assignment, "never assigned")

		stored, err := env.taskRepo.FindByID(env.ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}

	_, _, err := env.tasks.ChangeStatus(env.ctx, organizer, task.ID, "ARCHIVED")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestChangeStatus_MemberWithoutAssignment(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	admin := env.createAdmin("ada")
	project := env.createProject(organizer, member)
	task := env.createTask(organizer, project.ID, "Plan")

	_, _, err := env.tasks.ChangeStatus(env.ctx, member, task.ID, models.TaskStatusInProgress)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = env.tasks.ChangeStatus(env.ctx, admin, task.ID, models.TaskStatusInProgress)
	assert.NoError(t, err)
}

func TestUpdateTask(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)
	task := env.createTask(organizer, project.ID, "Plan")

	title := "Plan v2"
	_, err := env.tasks.UpdateTask(env.ctx, member, task.ID, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	sameAsStart := date(2025, 1, 10)
	_, err = env.tasks.UpdateTask(env.ctx, organizer, task.ID, UpdateTaskInput{EndDate: &sameAsStart})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	newEnd := date(2025, 2, 1)
	updated, err := env.tasks.UpdateTask(env.ctx, organizer, task.ID, UpdateTaskInput{Title: &title, EndDate: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", updated.Title)

	stored, err := env.taskRepo.FindByID(env.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", stored.Title)
	assert.True(t, newEnd.Equal(stored.EndDate))
	assert.True(t, date(2025, 1, 10).Equal(stored.StartDate))
	assert.Equal(t, models.TaskStatusNotStarted, stored.Status)
}

func TestDeleteTask_CascadesLedgerAndComments(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)
	task := env.createTask(organizer, project.ID, "Plan")
	keep := env.createTask(organizer, project.ID, "Keep")

	for _, id := range []uint64{task.ID, keep.ID} {
		_, err := env.assignments.Assign(env.ctx, organizer, id, member.UserID)
		require.NoError(t, err)
		_, err = env.comments.AddComment(env.ctx, member, id, "noted")
		require.NoError(t, err)
	}

	assert.ErrorIs(t, env.tasks.DeleteTask(env.ctx, member, task.ID), ErrForbidden)
	require.NoError(t, env.tasks.DeleteTask(env.ctx, organizer, task.ID))

	_, err := env.taskRepo.FindByID(env.ctx, task.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var assignments, comments int64
	require.NoError(t, env.db.Model(&models.TaskAssignment{}).Where("task_id = ?", task.ID).Count(&assignments).Error)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&comments).Error)
	assert.Zero(t, assignments)
	assert.Zero(t, comments)

	history, err := env.ledger.History(env.ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.ErrorIs(t, env.tasks.DeleteTask(env.ctx, organizer, task.ID), ErrTaskNotFound)
}

func TestDeleteTask_RollsBackOnFailure(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	project := env.createProject(organizer, member)
	task := env.createTask(organizer, project.ID, "Plan")

	_, err := env.assignments.Assign(env.ctx, organizer, task.ID, member.UserID)
	require.NoError(t, err)
	_, err = env.comments.AddComment(env.ctx, member, task.ID, "noted")
	require.NoError(t, err)

	storageErr := errors.New("disk full")
	require.NoError(t, env.db.Callback().Delete().Before("gorm:delete").Register("test:fail_task_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "tasks" {
			_ = tx.AddError(storageErr)
		}
	}))

	err = env.tasks.DeleteTask(env.ctx, organizer, task.ID)
	require.ErrorIs(t, err, storageErr)

	_, err = env.taskRepo.FindByID(env.ctx, task.ID)
	require.NoError(t, err)

	history, err := env.ledger.History(env.ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	comments, err := env.comments.ListComments(env.ctx, member, task.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestGetAndListTasks(t *testing.T) {
	env := setupServiceEnv(t)
	organizer := env.createUser("olivia")
	member := env.createUser("mike")
	outsider := env.createUser("xavier")
	project := env.createProject(organizer, member)

	first := env.createTask(organizer, project.ID, "First")
	second := env.createTask(organizer, project.ID, "Second")
	third := env.createTask(organizer, project.ID, "Third")

	_, err := env.assignments.Assign(env.ctx, organizer, second.ID, member.UserID)
	require.NoError(t, err)

	got, current, err := env.tasks.GetTask(env.ctx, member, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
	require.NotNil(t, current)
	assert.Equal(t, member.UserID, current.UserID)

	_, current, err = env.tasks.GetTask(env.ctx, member, first.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	_, _, err = env.tasks.GetTask(env.ctx, outsider, first.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	page, err := env.tasks.ListProjectTasks(env.ctx, member, project.ID, utils.NewPaginationParams(1, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Tasks, 2)
	assert.Equal(t, third.ID, page.Tasks[0].ID)
	assert.Equal(t, second.ID, page.Tasks[1].ID)
	assert.Equal(t, member.UserID, page.Assignees[second.ID].UserID)
	assert.NotContains(t, page.Assignees, third.ID)

	page, err = env.tasks.ListProjectTasks(env.ctx, member, project.ID, utils.NewPaginationParams(2, 2))
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, first.ID, page.Tasks[0].ID)

	_, err = env.tasks.ListProjectTasks(env.ctx, outsider, project.ID, utils.NewPaginationParams(1, 20))
	assert.ErrorIs(t, err, ErrNotFound)
}
