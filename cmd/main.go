package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "whutmovie/docs"
	"whutmovie/internal/config"
	"whutmovie/internal/database"
	"whutmovie/internal/handlers"
	"whutmovie/internal/middleware"
	"whutmovie/internal/repository"
	"whutmovie/internal/routes"
	"whutmovie/internal/services"
	"whutmovie/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// @title WhutMovie API
// @version 1.0
// @description Curated movie lists: movies, genres, and categories of three ranked picks plus honorable mentions, with a cookie-session admin area.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8010
// @BasePath /api/v1
// @schemes http https

func main() {
	// Load environment variables
	loadEnvFile()

	cfg := config.Load()
	log := setupLogger()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database connection: %v", err)
		}
	}()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.Seed(startupCtx, db, cfg.Auth, log); err != nil {
		if errors.Is(err, database.ErrNoAdmin) {
			log.Fatal("No admin user exists. Set ADMIN_SEED_PASSWORD (at least 8 characters) to create one.")
		}
		log.Fatalf("Failed to seed database: %v", err)
	}

	userRepo := repository.NewAdminUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	movieRepo := repository.NewMovieRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	sessions := services.NewSessionStore(sessionRepo, cfg.Auth.SessionTTL, log)
	if removed, err := sessions.Sweep(startupCtx); err != nil {
		log.WithError(err).Warn("Failed to sweep expired sessions")
	} else if removed > 0 {
		log.WithField("removed", removed).Info("Expired sessions swept")
	}

	pageCache := services.NewPageCacheService(database.NewRedisClient(cfg.Redis, log), cfg.Redis.CacheTTL, log)

	var posters services.PosterStorage
	if cfg.MinIOEnabled() {
		minioService, err := services.NewMinIOService(&cfg.MinIO, log)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO service: %v", err)
		}
		posters = minioService
	} else {
		log.Info("AWS_ENDPOINT not set, poster uploads disabled")
	}

	var publisher services.ContactPublisher
	if cfg.RabbitMQ.URL != "" {
		publisher = services.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.ContactQueue, log)
	} else {
		log.Info("RABBITMQ_URL not set, contact messages will only be logged")
	}

	authService := services.NewAuthService(userRepo, sessions, cfg.Auth.BcryptCost, log)
	userService := services.NewUserService(userRepo, cfg.Auth.BcryptCost, log)
	genreService := services.NewGenreService(genreRepo, pageCache, log)
	movieService := services.NewMovieService(movieRepo, genreRepo, posters, pageCache, log)
	categoryService := services.NewCategoryService(categoryRepo, pageCache, log)
	dashboardService := services.NewDashboardService(movieRepo, genreRepo, categoryRepo)
	contactService := services.NewContactService(publisher, log)

	auth := middleware.NewAuth(authService, cfg.Auth.SecureCookie, log)

	app := fiber.New(fiber.Config{
		AppName:               "WhutMovie API",
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler:          customErrorHandler(log),
	})

	setupMiddleware(app, cfg)

	app.Get("/health", healthCheckHandler(db))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	routes.Setup(app, routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, auth, log),
		Users:      handlers.NewUserHandler(userService, log),
		Movies:     handlers.NewMovieHandler(movieService, log),
		Genres:     handlers.NewGenreHandler(genreService, log),
		Categories: handlers.NewCategoryHandler(categoryService, dashboardService, log),
		Dashboard:  handlers.NewDashboardHandler(dashboardService, log),
		Upload:     handlers.NewUploadHandler(posters, log),
		Contact:    handlers.NewContactHandler(contactService, log),
	}, auth, pageCache)

	// Graceful shutdown
	go gracefulShutdown(app, log)

	log.Infof("WhutMovie API starting on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}
}

func setupLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	if os.Getenv("GO_ENV") == "dev" || os.Getenv("GO_ENV") == "development" {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}

func setupMiddleware(app *fiber.App, cfg *config.Config) {
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !cfg.IsProduction(),
	}))

	app.Use(middleware.Metrics())

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Session cookies only travel cross-origin to an explicit allow list.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: cfg.Server.CORSOrigins != "*",
		MaxAge:           86400, // 24 hours
	}))
}

func healthCheckHandler(db *database.Database) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "healthy"
		status := fiber.StatusOK
		if err := db.HealthCheck(); err != nil {
			dbStatus = "unhealthy"
			status = fiber.StatusServiceUnavailable
		}

		return c.Status(status).JSON(fiber.Map{
			"status":    "ok",
			"service":   "whutmovie",
			"version":   "1.0.0",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func customErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": code,
			}).Error("Request error")
		}

		return utils.ErrorResponse(c, code, message)
	}
}

func gracefulShutdown(app *fiber.App, log *logrus.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		log.Errorf("Error during shutdown: %v", err)
	}

	log.Info("Server shutdown complete")
}

func loadEnvFile() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{})
	log.SetOutput(os.Stdout)

	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "dev"
	}

	execDir, err := os.Getwd()
	if err != nil {
		log.Warnf("Could not get working directory: %v", err)
		return
	}

	envFile := filepath.Join(execDir, "envs", ".env."+env)
	if err := godotenv.Load(envFile); err != nil {
		log.Warnf("Could not load environment file %s: %v", envFile, err)

		defaultEnvFile := filepath.Join(execDir, "envs", ".env")
		if err := godotenv.Load(defaultEnvFile); err != nil {
			log.Warnf("Could not load default environment file: %v", err)
		} else {
			log.Infof("Environment loaded from default file %s", defaultEnvFile)
		}
	} else {
		log.Infof("Environment loaded from file %s", envFile)
	}
}
