package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/access"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/constants"
	"github.com/yukikurage/project-tracker-api/internal/database"
	"github.com/yukikurage/project-tracker-api/internal/handlers"
	"github.com/yukikurage/project-tracker-api/internal/logging"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg, log); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := validation.Register(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ledger := repository.NewAssignmentRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	policy := access.NewPolicy(projectRepo, ledger)

	authService := services.NewAuthService(userRepo, log)
	svc := handlers.Services{
		Auth:        authService,
		Tokens:      services.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		Projects:    services.NewProjectService(projectRepo, userRepo, policy, log),
		Tasks:       services.NewTaskService(taskRepo, projectRepo, ledger, policy, log),
		Assignments: services.NewAssignmentService(ledger, taskRepo, projectRepo, userRepo, policy, log),
		Comments:    services.NewCommentService(commentRepo, taskRepo, projectRepo, policy, log),
		Summaries:   services.NewSummaryService(summaryRepo, taskRepo, projectRepo, policy, log),
		Dashboard:   services.NewDashboardService(taskRepo, projectRepo, ledger, policy),
	}

	if cfg.AdminUsername != "" {
		_, err := authService.EnsureAdmin(context.Background(), services.SignupInput{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			log.Fatalf("Failed to provision admin account: %v", err)
		}
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	handlers.RegisterRoutes(r, svc, log)

	// Start server
	log.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore builds a Redis-backed store, or a signed cookie store
// when SESSION_STORE is "cookie".
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, err
		}
		store = rs
	}

	// Configure session options based on environment
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
