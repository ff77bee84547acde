package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/clubware/taskhub/internal/config"
	"github.com/clubware/taskhub/internal/constants"
	"github.com/clubware/taskhub/internal/database"
	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/handlers"
	"github.com/clubware/taskhub/internal/mail"
	"github.com/clubware/taskhub/internal/middleware"
	"github.com/clubware/taskhub/internal/notify"
	"github.com/clubware/taskhub/internal/repository"
	"github.com/clubware/taskhub/internal/services"
	"github.com/clubware/taskhub/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.GetDB()

	if err := database.AddIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	ctx := context.Background()

	// Attachment storage backend
	blobs, err := storage.NewFromConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}

	// Mailer is nil when MAIL_PROVIDER is unset; notifications then
	// degrade to log lines.
	mailer, err := mail.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up mailer: %w", err)
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	// The user directory caches the roster; every policy check reads
	// through it
	dir := directory.New(userRepo, cfg.DirectoryCacheTTL)

	notifier := notify.NewDispatcher(mailer, dir, cfg.AppBaseURL, logger)
	activityService := services.NewActivityService(activityRepo, logger)

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	authService := services.NewAuthService(userRepo)
	taskService := services.NewTaskService(taskRepo, dir, blobs, notifier, activityService, aiService, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(dir)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		return fmt.Errorf("failed to create Redis store: %w", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Serve uploaded files directly when attachments live on local disk
	if local, ok := blobs.(*storage.LocalStore); ok {
		r.Static("/uploads", local.Dir())
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Taskhub API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Roster routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireActor(dir))
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/assignable", userHandler.ListAssignableUsers)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireActor(dir))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskView(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskView(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskView(), taskHandler.DeleteTask)
			tasks.POST("/:id/comments", middleware.RequireTaskView(), taskHandler.AddComment)
			tasks.POST("/:id/summary", middleware.RequireTaskView(), taskHandler.SummarizeTask)
		}

		api.GET("/dashboard", middleware.RequireAuth(), middleware.RequireActor(dir), taskHandler.Dashboard)
		api.POST("/ai/describe", middleware.RequireAuth(), middleware.RequireActor(dir), taskHandler.DescribeTask)

		// Activity feed (presidium only)
		activity := api.Group("/activity")
		activity.Use(middleware.RequireAuth(), middleware.RequireActor(dir), middleware.RequirePresidium())
		{
			activity.GET("", activityHandler.ListActivity)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
