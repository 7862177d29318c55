package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/logging"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type serviceEnv struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	clock *fakeClock

	users       repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	ledger      repository.AssignmentRepository
	policy      *access.Policy

	projects    *ProjectService
	assignments *AssignmentService
	tasks       *TaskService
	comments    *CommentService
	summaries   *SummaryService
	dashboard   *DashboardService
	auth        *AuthService
}

func setupServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateDatabase(db))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	clock := &fakeClock{now: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)}
	log := logging.Discard()

	env := &serviceEnv{
		t:           t,
		ctx:         context.Background(),
		db:          db,
		clock:       clock,
		users:       repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		taskRepo:    repository.NewTaskRepository(db),
		ledger:      repository.NewAssignmentRepository(db),
	}
	env.policy = access.NewPolicy(env.projectRepo, env.ledger)

	commentRepo := repository.NewCommentRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	env.projects = NewProjectService(env.projectRepo, env.users, env.policy, log).WithClock(clock.Now)
	env.assignments = NewAssignmentService(env.ledger, env.taskRepo, env.projectRepo, env.users, env.policy, log).WithClock(clock.Now)
	env.tasks = NewTaskService(env.taskRepo, env.projectRepo, env.ledger, env.policy, log)
	env.comments = NewCommentService(commentRepo, env.taskRepo, env.projectRepo, env.policy, log).WithClock(clock.Now)
	env.summaries = NewSummaryService(summaryRepo, env.taskRepo, env.projectRepo, env.policy, log).WithClock(clock.Now)
	env.dashboard = NewDashboardService(env.taskRepo, env.projectRepo, env.ledger, env.policy).WithClock(clock.Now)
	env.auth = NewAuthService(env.users, log)

	return env
}

func (e *serviceEnv) createUser(username string) access.Caller {
	e.t.Helper()
	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
	}
	require.NoError(e.t, e.users.Create(e.ctx, user))
	return access.Caller{UserID: user.ID}
}

func (e *serviceEnv) createAdmin(username string) access.Caller {
	e.t.Helper()
	caller := e.createUser(username)
	require.NoError(e.t, e.users.GrantRole(e.ctx, caller.UserID, models.RoleAdmin))
	caller.IsAdmin = true
	return caller
}

func (e *serviceEnv) createProject(organizer access.Caller, members ...access.Caller) *models.Project {
	e.t.Helper()
	project, err := e.projects.CreateProject(e.ctx, organizer, ProjectInput{
		Title:       "Launch",
		Description: "Ship the first release",
	})
	require.NoError(e.t, err)

	for _, member := range members {
		_, err := e.projects.AddMember(e.ctx, organizer, project.ID, member.UserID)
		require.NoError(e.t, err)
	}
	return project
}

func (e *serviceEnv) createTask(organizer access.Caller, projectID uint64, title string) *models.Task {
	e.t.Helper()
	task, err := e.tasks.CreateTask(e.ctx, organizer, projectID, CreateTaskInput{
		Title:     title,
		StartDate: date(2025, 1, 10),
		EndDate:   date(2025, 1, 20),
	})
	require.NoError(e.t, err)
	return task
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
