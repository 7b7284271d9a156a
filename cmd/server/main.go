package main

import (
	"log"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/nudgr/delegation-api/internal/config"
	"github.com/nudgr/delegation-api/internal/constants"
	"github.com/nudgr/delegation-api/internal/database"
	"github.com/nudgr/delegation-api/internal/handlers"
	"github.com/nudgr/delegation-api/internal/middleware"
	"github.com/nudgr/delegation-api/internal/repository"
	"github.com/nudgr/delegation-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

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
		log.Fatalf("Failed to create Redis store: %v", err)
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

	// Repositories share the single connection handle
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Notifications are optional; without SMTP credentials task creation
	// simply skips the email
	var notifier services.Notifier
	if cfg.EmailUser != "" {
		notifier = services.NewSMTPMailer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass, cfg.FrontendOrigin)
	}

	authService := services.NewAuthService(userRepo)
	hierarchyService := services.NewHierarchyService(groupRepo, taskRepo, userRepo, cfg.HierarchyDepth)
	inviteService := services.NewInviteService(inviteRepo, groupRepo, userRepo, cfg.FrontendOrigin,
		time.Duration(cfg.InviteTTLHours)*time.Hour)
	taskService := services.NewTaskService(taskRepo, groupRepo, userRepo, notifier)
	analyticsService := services.NewAnalyticsService(taskRepo)

	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(hierarchyService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	taskHandler := handlers.NewTaskHandler(taskService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Nudgr delegation API is running",
		})
	})

	// Auth routes (public)
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/isLoggedIn", middleware.RequireAuth(), authHandler.IsLoggedIn)
	}

	// Group hierarchy and invite routes (protected)
	user := r.Group("/user")
	user.Use(middleware.RequireAuth())
	{
		user.POST("/createGroup", groupHandler.CreateGroup)
		user.GET("/getAllGroups", groupHandler.GetAllGroups)
		user.GET("/getGroupLevel", groupHandler.GetGroupLevelWise)
		user.DELETE("/deleteGroup/:groupId", groupHandler.DeleteGroup)
		user.POST("/createSubUser", groupHandler.CreateSubUser)
		user.DELETE("/deleteSubUser/:groupId", groupHandler.DeleteSubUser)
		user.POST("/inviteUser", inviteHandler.GenerateInviteLink)
		user.GET("/checkInvite/:token", inviteHandler.CheckInvite)
		user.POST("/acceptInvite/:token", inviteHandler.AcceptInvite)
	}

	// Task routes (protected)
	tasks := r.Group("/tasks")
	tasks.Use(middleware.RequireAuth())
	{
		tasks.POST("/createTasks", taskHandler.CreateTask)
		tasks.PUT("/updateTask", taskHandler.UpdateTask)
		tasks.DELETE("/deleteTask/:taskId", taskHandler.DeleteTask)
		tasks.GET("/getUserAllTasks", taskHandler.GetUserAllTasks)
		tasks.GET("/getUserTasks/:groupId", taskHandler.GetUserTasks)
		tasks.GET("/getUserAnalysis/:userId", analyticsHandler.GetUserAnalysis)
		tasks.GET("/getTrends/:userId", analyticsHandler.GetTrends)
		tasks.GET("/getPeakHrs/:userId", analyticsHandler.GetPeakHours)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
