package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/config"
	"taskify/backend/internal/database"
	"taskify/backend/internal/handlers"
	"taskify/backend/internal/middleware"
	"taskify/backend/internal/monitoring"
	"taskify/backend/internal/repositories"
	"taskify/backend/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Application holds all application dependencies and state
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Pool   *database.DatabasePool
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	// Services
	TaskService     services.TaskService
	CategoryService services.CategoryService
	StatsService    services.StatsService
	BackupService   services.BackupService
	AuthService     services.AuthService
	UserService     services.UserService
	RegisterService services.RegisterService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Taskify Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	poolConfig := database.DefaultPoolConfig()
	poolConfig.DSN = cfg.GetDatabaseDSN()
	poolConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	poolConfig.MaxIdleConns = cfg.Database.MaxIdleConns
	poolConfig.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.ConnMaxIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	app.Pool = pool
	app.DB = pool.DB

	log.Println("✅ Database connected and configured")

	migrationConfig := &repositories.MigrationConfig{
		MigrationsPath: "file://migrations",
		DBName:         cfg.Database.Name,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
	}

	if err := repositories.RunMigrations(app.DB, migrationConfig); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
		redisClient = nil
	} else {
		app.Redis = redisClient
		log.Println("✅ Redis connected")
	}

	if redisClient != nil {
		redisCache := cache.NewRedisCacheWithClient(redisClient)
		app.Cache = cache.NewMultiLevelCache(redisCache)
		log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
	} else {
		app.Cache = cache.NewMultiLevelCache(nil)
		log.Println("✅ Memory cache initialized (fallback mode)")
	}

	// Initialize services
	app.CategoryService = services.NewCategoryService()
	app.AuthService = services.NewAuthService()
	app.UserService = services.NewUserService()
	app.RegisterService = services.NewRegisterService()

	taskServiceImpl := services.NewTaskService()
	statsServiceImpl := services.NewStatsService()
	if app.Cache != nil {
		app.TaskService = services.NewCachedTaskService(taskServiceImpl, app.Cache)
		app.StatsService = services.NewCachedStatsService(statsServiceImpl, app.Cache)
		log.Println("✅ Cached task and stats services initialized")
	} else {
		app.TaskService = taskServiceImpl
		app.StatsService = statsServiceImpl
		log.Println("✅ Task and stats services initialized")
	}

	app.BackupService = services.NewBackupService(app.TaskService, app.CategoryService)

	log.Println("✅ All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
	r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints (no auth required)
	r.GET("/health", app.healthHandler())
	r.GET("/ready", app.readinessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	v1 := r.Group("/api/v1")

	// Public authentication routes
	authRoutes := v1.Group("/auth")
	{
		authHandler := handlers.NewAuthHandler(app.DB, app.AuthService)
		refreshHandler := handlers.NewRefreshHandler(app.DB, app.AuthService)
		registrationHandler := handlers.NewRegisterHandler(app.DB, app.RegisterService)

		authRoutes.POST("/register", registrationHandler.Registration)
		authRoutes.POST("/login", authHandler.Token)
		authRoutes.POST("/refresh", refreshHandler.Refresh)
		authRoutes.POST("/logout", refreshHandler.Revoke)
	}

	// Protected routes (require authentication)
	protected := v1.Group("")
	protected.Use(middleware.AuthzMiddleware(middleware.AuthzConfig{Secret: app.Config.JWT.Secret}))
	{
		taskHandler := handlers.NewTaskHandler(app.DB, app.TaskService)
		taskRoutes := protected.Group("/tasks")
		{
			taskRoutes.GET("", taskHandler.GetTasks)
			taskRoutes.POST("", taskHandler.CreateTask)
			taskRoutes.GET("/upcoming", taskHandler.GetUpcomingTasks)
			taskRoutes.GET("/overdue", taskHandler.GetOverdueTasks)
			taskRoutes.GET("/counts", taskHandler.GetStatusCounts)
			taskRoutes.PUT("/reorder", taskHandler.BulkUpdateOrder)
			taskRoutes.POST("/bulk-delete", taskHandler.BulkDeleteTasks)
			taskRoutes.GET("/:id", taskHandler.GetTaskByID)
			taskRoutes.PUT("/:id", taskHandler.UpdateTask)
			taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
			taskRoutes.PATCH("/:id/complete", taskHandler.ToggleComplete)
			taskRoutes.PATCH("/:id/archive", taskHandler.ToggleArchive)
		}

		categoryHandler := handlers.NewCategoryHandler(app.DB, app.CategoryService)
		categoryRoutes := protected.Group("/categories")
		{
			categoryRoutes.GET("", categoryHandler.GetCategories)
			categoryRoutes.POST("", categoryHandler.CreateCategory)
			categoryRoutes.GET("/:id", categoryHandler.GetCategoryByID)
			categoryRoutes.PUT("/:id", categoryHandler.UpdateCategory)
			categoryRoutes.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		statsHandler := handlers.NewStatsHandler(app.DB, app.StatsService)
		statsRoutes := protected.Group("/stats")
		{
			statsRoutes.GET("/general", statsHandler.GetGeneralStats)
			statsRoutes.GET("/priority", statsHandler.GetStatsByPriority)
			statsRoutes.GET("/categories", statsHandler.GetStatsByCategory)
			statsRoutes.GET("/productivity/weekly", statsHandler.GetWeeklyProductivity)
			statsRoutes.GET("/productivity/monthly", statsHandler.GetMonthlyProductivity)
		}

		backupHandler := handlers.NewBackupHandler(app.DB, app.BackupService)
		backupRoutes := protected.Group("/backup")
		{
			backupRoutes.GET("/export", backupHandler.ExportData)
			backupRoutes.POST("/import", backupHandler.ImportData)
			backupRoutes.DELETE("/all", backupHandler.DeleteAllData)
		}

		userHandler := handlers.NewUserHandler(app.DB, app.UserService)
		userRoutes := protected.Group("/users")
		{
			userRoutes.GET("/profile", userHandler.GetUserProfile)
			userRoutes.PUT("/profile", userHandler.UpdateUserProfile)
		}

		// Cache management routes (admin only)
		if app.Cache != nil {
			cacheHandler := handlers.NewCacheHandler(app.Cache)
			cacheRoutes := protected.Group("/cache")
			cacheRoutes.Use(app.adminOnlyMiddleware())
			{
				cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
				cacheRoutes.GET("/health", cacheHandler.GetCacheHealth)
				cacheRoutes.DELETE("/clear", cacheHandler.ClearCache)
			}
		}
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Cache != nil {
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	}

	if app.Pool != nil {
		if err := app.Pool.Close(); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}

	log.Println("✅ Cleanup complete")
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "taskify-backend",
		}

		if err := app.Pool.Health(); err != nil {
			health["status"] = "unhealthy"
			health["database"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["database"] = "up"

		if app.Redis != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				health["redis"] = "down"
			} else {
				health["redis"] = "up"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func (app *Application) readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Pool.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"reason": "database not ready",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ready": true,
		})
	}
}

func (app *Application) adminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "Admin role required for this operation",
			})
			return
		}
		c.Next()
	}
}
