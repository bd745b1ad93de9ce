package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yugawara/labtrack-api/internal/config"
	"github.com/yugawara/labtrack-api/internal/constants"
	"github.com/yugawara/labtrack-api/internal/database"
	"github.com/yugawara/labtrack-api/internal/handlers"
	"github.com/yugawara/labtrack-api/internal/logger"
	"github.com/yugawara/labtrack-api/internal/middleware"
	"github.com/yugawara/labtrack-api/internal/push"
	"github.com/yugawara/labtrack-api/internal/repository"
	"github.com/yugawara/labtrack-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Initialize structured logger
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		appLog.Fatal("failed to run migrations", "error", err)
	}
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			appLog.Fatal("failed to add indexes", "error", err)
		}
	}

	// Push transport is best-effort: without Redis the service still runs,
	// notifications are only persisted.
	var transport push.Transport
	redisTransport, err := push.NewRedisTransport(cfg.RedisAddr(), cfg.PushChannel)
	if err != nil {
		appLog.Warn("push transport unavailable, notifications will not be pushed", "error", err)
		transport = push.NewNoop()
	} else {
		transport = redisTransport
		defer redisTransport.Close()
	}

	db := database.GetDB()

	// Repositories
	projectRepo := repository.NewProjectRepository(db)
	studyRepo := repository.NewStudyRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	progressService := services.NewProgressService(db, projectRepo, studyRepo, taskRepo)
	assignmentService := services.NewAssignmentService(db, taskRepo, userRepo)
	projectService := services.NewProjectService(db, projectRepo, studyRepo, progressService)
	taskService := services.NewTaskService(db, taskRepo, studyRepo, projectRepo, assignmentService, progressService)
	notificationService := services.NewNotificationService(notifRepo, transport, appLog)
	requestService := services.NewRequestService(db, requestRepo, taskRepo, userRepo, assignmentService, taskService, notificationService, appLog)

	// Handlers
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService, assignmentService, taskRepo)
	requestHandler := handlers.NewRequestHandler(requestService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis. The external identity provider
	// integration writes the session; middleware here only reads it.
	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr(),
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		appLog.Fatal("failed to create session store", "error", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireActor())
	{
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", middleware.RequireManager(), projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.DELETE("/:id", middleware.RequireManager(), projectHandler.DeleteProject)
			projects.POST("/:id/studies", middleware.RequireManager(), projectHandler.CreateStudy)
		}

		studies := api.Group("/studies")
		{
			studies.GET("/:id", projectHandler.GetStudy)
			studies.DELETE("/:id", middleware.RequireManager(), projectHandler.DeleteStudy)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequireManager(), taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.DELETE("/:id", middleware.RequireManager(), taskHandler.DeleteTask)
			tasks.POST("/:id/restore", middleware.RequireManager(), taskHandler.RestoreTask)
			tasks.PUT("/:id/assignees", middleware.RequireManager(), taskHandler.SetAssignees)
			tasks.POST("/:id/requests/completion", requestHandler.RequestCompletion)
			tasks.POST("/:id/requests/reassignment", requestHandler.RequestReassignment)
		}

		requests := api.Group("/requests")
		{
			requests.GET("", middleware.RequireManager(), requestHandler.ListRequests)
			requests.POST("/:id/approve", middleware.RequireManager(), requestHandler.ApproveRequest)
			requests.POST("/:id/reject", middleware.RequireManager(), requestHandler.RejectRequest)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkNotificationRead)
		}
	}

	// Start server
	appLog.Info("server starting", "addr", ":8080")
	if err := r.Run(":8080"); err != nil {
		appLog.Fatal("failed to start server", "error", err)
	}
}
