package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"teztech/internal/api/middleware"
	"teztech/internal/auth"
	"teztech/internal/config"
	"teztech/internal/database"
	"teztech/internal/notify"
	"teztech/internal/settings"
	"teztech/internal/storage"
)

// RegisterRoutes wires every handler under /v1. The maintenance gate
// sits in front of everything except auth, health and metrics so admins
// can still log in and switch maintenance off.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	storageClient *storage.Client,
	cfg *config.Config,
) {
	settingsStore := settings.NewStore(db)
	notifier := notify.NewService(db, redisClient, logger)

	authHandler := NewAuthHandler(
		db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour,
		cfg.Auth.LoginLockThreshold,
		cfg.Auth.LoginLockTTL(),
		cfg.Auth.CookieDomain,
	)
	jobHandler := NewJobHandler(db, asynqClient, logger, cfg.Search)
	companyHandler := NewCompanyHandler(db, logger)
	applicationHandler := NewApplicationHandler(db, asynqClient, logger)
	profileHandler := NewProfileHandler(db, logger)
	settingsHandler := NewSettingsHandler(settingsStore, logger)
	notificationHandler := NewNotificationHandler(db, notifier, logger)
	assetHandler := NewAssetHandler(db, storageClient, logger, cfg.Uploads)
	wsHandler := NewWsHandler(redisClient, authService, logger, cfg.API.AllowedOrigins)

	authMiddleware := middleware.AuthMiddleware(authService)
	passwordGate := middleware.RequirePasswordChangeCompletedMiddleware()
	maintenanceGate := middleware.MaintenanceGate(settingsStore)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
			authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
		}

		public := v1.Group("")
		public.Use(maintenanceGate)
		{
			public.GET("/jobs", jobHandler.SearchJobs)
			public.GET("/jobs/featured", jobHandler.FeaturedJobs)
			public.GET("/jobs/:id", jobHandler.GetJob)
			public.GET("/settings", settingsHandler.GetSettings)
		}

		// The websocket authenticates with its first message, not the
		// Authorization header.
		v1.GET("/ws", wsHandler.HandleConnection)

		seeker := v1.Group("")
		seeker.Use(authMiddleware, passwordGate, maintenanceGate)
		{
			seeker.GET("/profile", profileHandler.GetProfile)
			seeker.PUT("/profile", profileHandler.UpdateProfile)
			seeker.GET("/profile/completeness", profileHandler.GetCompleteness)

			seeker.POST("/jobs/:id/apply", middleware.RequireRole(database.RoleSeeker), applicationHandler.Apply)
			seeker.GET("/applications", middleware.RequireRole(database.RoleSeeker), applicationHandler.ListMyApplications)
			seeker.DELETE("/applications/:id", middleware.RequireRole(database.RoleSeeker), applicationHandler.Withdraw)

			seeker.GET("/notifications", notificationHandler.ListNotifications)
			seeker.GET("/notifications/unread", notificationHandler.UnreadCount)
			seeker.POST("/notifications/:id/read", notificationHandler.MarkRead)
			seeker.POST("/notifications/read-all", notificationHandler.MarkAllRead)

			seeker.POST("/assets/upload", assetHandler.UploadAsset)
			seeker.GET("/assets", assetHandler.ListAssets)
			seeker.GET("/assets/view", assetHandler.GetAssetURL)
			seeker.DELETE("/assets", assetHandler.DeleteAsset)
		}

		employer := v1.Group("/employer")
		employer.Use(authMiddleware, passwordGate, maintenanceGate, middleware.RequireRole(database.RoleEmployer))
		{
			employer.POST("/companies", companyHandler.CreateCompany)
			employer.GET("/companies", companyHandler.ListCompanies)
			employer.PUT("/companies/:id", companyHandler.UpdateCompany)

			employer.POST("/jobs", jobHandler.CreateJob)
			employer.GET("/jobs", jobHandler.ListEmployerJobs)
			employer.PUT("/jobs/:id", jobHandler.UpdateJob)
			employer.POST("/jobs/:id/close", jobHandler.CloseJob)
			employer.DELETE("/jobs/:id", jobHandler.DeleteJob)

			employer.GET("/jobs/:id/applications", applicationHandler.ListApplicants)
			employer.POST("/applications/:id/status", applicationHandler.UpdateStatus)
		}

		admin := v1.Group("/admin")
		admin.Use(authMiddleware, passwordGate, middleware.RequireRole(database.RoleAdmin))
		{
			admin.PUT("/settings", settingsHandler.UpdateSettings)
			admin.POST("/jobs/:id/feature", jobHandler.FeatureJob)
			admin.DELETE("/jobs/:id", jobHandler.DeleteJob)
		}
	}
}
