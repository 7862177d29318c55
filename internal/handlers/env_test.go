package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/logging"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/validation"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "supersecret"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	users  repository.UserRepository
	svc    Services
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDatabase(db))
	require.NoError(t, validation.Register())

	log := logging.Discard()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ledger := repository.NewAssignmentRepository(db)
	policy := access.NewPolicy(projectRepo, ledger)

	svc := Services{
		Auth:        services.NewAuthService(userRepo, log),
		Tokens:      services.NewTokenService("test-secret", time.Hour),
		Projects:    services.NewProjectService(projectRepo, userRepo, policy, log),
		Tasks:       services.NewTaskService(taskRepo, projectRepo, ledger, policy, log),
		Assignments: services.NewAssignmentService(ledger, taskRepo, projectRepo, userRepo, policy, log),
		Comments:    services.NewCommentService(repository.NewCommentRepository(db), taskRepo, projectRepo, policy, log),
		Summaries:   services.NewSummaryService(repository.NewSummaryRepository(db), taskRepo, projectRepo, policy, log),
		Dashboard:   services.NewDashboardService(taskRepo, projectRepo, ledger, policy),
	}

	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	RegisterRoutes(r, svc, log)

	return &testEnv{
		t:      t,
		db:     db,
		router: r,
		users:  userRepo,
		svc:    svc,
	}
}

// createUser signs a user up and returns it with a bearer token.
func (e *testEnv) createUser(username string) (*models.User, string) {
	e.t.Helper()
	user, err := e.svc.Auth.Signup(context.Background(), services.SignupInput{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: testPassword,
	})
	require.NoError(e.t, err)

	token, _, err := e.svc.Tokens.Issue(user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) createAdmin(username string) (*models.User, string) {
	e.t.Helper()
	user, token := e.createUser(username)
	require.NoError(e.t, e.users.GrantRole(context.Background(), user.ID, models.RoleAdmin))
	return user, token
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// createProject creates a project over HTTP and adds members to it.
func (e *testEnv) createProject(token string, members ...*models.User) uint64 {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/projects", map[string]string{
		"title":       "Launch",
		"description": "Ship the first release",
	}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var project struct {
		ID uint64 `json:"id"`
	}
	decode(e.t, w, &project)

	for _, member := range members {
		w := e.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/members", project.ID), map[string]uint64{
			"user_id": member.ID,
		}, token)
		require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	}
	return project.ID
}

func (e *testEnv) createTask(token string, projectID uint64, title string) uint64 {
	e.t.Helper()
	w := e.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/tasks", projectID), map[string]string{
		"title":      title,
		"start_date": "2025-01-10",
		"end_date":   "2025-01-20",
	}, token)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())

	var task struct {
		ID uint64 `json:"id"`
	}
	decode(e.t, w, &task)
	return task.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, w, &body)
	return body.Code
}
