package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Auth        *services.AuthService
	Tokens      *services.TokenService
	Projects    *services.ProjectService
	Tasks       *services.TaskService
	Assignments *services.AssignmentService
	Comments    *services.CommentService
	Summaries   *services.SummaryService
	Dashboard   *services.DashboardService
}

// RegisterRoutes mounts /health and the /api tree on r. Session middleware
// must already be installed.
func RegisterRoutes(r *gin.Engine, svc Services, log logrus.FieldLogger) {
	authHandler := NewAuthHandler(svc.Auth, svc.Tokens, log)
	projectHandler := NewProjectHandler(svc.Projects, svc.Assignments, svc.Summaries, log)
	taskHandler := NewTaskHandler(svc.Tasks, svc.Assignments, log)
	commentHandler := NewCommentHandler(svc.Comments, log)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, log)
	adminHandler := NewAdminHandler(svc.Projects, log)

	requireCaller := []gin.HandlerFunc{
		middleware.RequireAuth(svc.Tokens),
		middleware.ResolveCaller(svc.Auth, log),
	}
	projectAccess := middleware.RequireProjectAccess(svc.Projects, log)
	taskAccess := middleware.RequireTaskAccess(svc.Tasks, log)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Tracker API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/token", authHandler.IssueToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", append(requireCaller, authHandler.GetCurrentUser)...)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireCaller...)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.DELETE("/:id", projectHandler.DeleteProject)

			project := projects.Group("/:id", projectAccess)
			{
				project.GET("", projectHandler.GetProject)
				project.PUT("", projectHandler.UpdateProject)
				project.GET("/members", projectHandler.ListMembers)
				project.POST("/members", projectHandler.AddMember)
				project.DELETE("/members/:user_id", projectHandler.RemoveMember)
				project.POST("/members/:user_id/suspend", projectHandler.SuspendMember)
				project.POST("/members/:user_id/reactivate", projectHandler.ReactivateMember)
				project.GET("/candidates", projectHandler.ListCandidates)
				project.GET("/tasks", taskHandler.ListTasks)
				project.POST("/tasks", taskHandler.CreateTask)
				project.GET("/summary", projectHandler.GetSummary)
				project.POST("/summary", projectHandler.GenerateSummary)
			}
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireCaller...)
		{
			tasks.POST("/:id/status", taskHandler.ChangeStatus)

			task := tasks.Group("/:id", taskAccess)
			{
				task.GET("", taskHandler.GetTask)
				task.PUT("", taskHandler.UpdateTask)
				task.DELETE("", taskHandler.DeleteTask)
				task.POST("/assign", taskHandler.AssignTask)
				task.GET("/assignments", taskHandler.ListAssignments)
				task.GET("/comments", commentHandler.ListComments)
				task.POST("/comments", commentHandler.AddComment)
			}
		}

		comments := api.Group("/comments")
		comments.Use(requireCaller...)
		{
			comments.PUT("/:id", commentHandler.EditComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}

		api.GET("/dashboard", append(requireCaller, dashboardHandler.GetDashboard)...)

		// Admin routes; the services reject non-admin callers
		admin := api.Group("/admin")
		admin.Use(requireCaller...)
		{
			admin.GET("/projects/:id", adminHandler.AuditProject)
			admin.DELETE("/projects/:id", adminHandler.PurgeProject)
		}
	}
}
