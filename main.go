package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"notekeep/app"
	"notekeep/auth"
	"notekeep/config"
	"notekeep/database"
	"notekeep/handlers"
	"notekeep/middleware"
)

func main() {
	config.Load()

	logger := setupLogger()
	slog.SetDefault(logger)

	gateway := database.NewGateway(config.AppConfig.DBPath, logger)
	if err := gateway.Connect(); err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer gateway.Disconnect()

	if err := gateway.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database initialized", "path", config.AppConfig.DBPath)

	tokens := auth.NewTokenManager(config.AppConfig.JWTSecret, config.AppConfig.TokenTTL)
	a := app.New(gateway, tokens, logger)

	srv := fiber.New(fiber.Config{
		ReadTimeout:           time.Second * 10,
		WriteTimeout:          time.Second * 10,
		IdleTimeout:           time.Second * 30,
		DisableStartupMessage: config.AppConfig.Env == "production",
		ErrorHandler:          errorHandler(logger),
	})

	srv.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(),
		cors.New(cors.Config{
			AllowOrigins: config.GetEnv("CORS_ORIGINS", "*"),
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,Authorization",
			MaxAge:       86400,
		}),
		limiter.New(limiter.Config{
			Max:        200,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)

	srv.Get("/health", handlers.Health(a))
	srv.Get("/shared/:shortId", handlers.GetSharedNote(a))
	srv.Post("/api/auth/register", handlers.Register(a))
	srv.Post("/api/auth/login", handlers.Login(a))

	api := srv.Group("/api", middleware.AuthRequired(tokens))
	api.Get("/auth/me", handlers.Me(a))
	api.Get("/status", handlers.GetStatus(a))

	api.Get("/notes", handlers.ListNotes(a))
	api.Post("/notes", handlers.CreateNote(a))
	api.Post("/notes/sync", handlers.SyncNotes(a))
	api.Get("/notes/:id", handlers.GetNote(a))
	api.Put("/notes/:id", handlers.UpdateNote(a))
	api.Delete("/notes/:id", handlers.TrashNote(a))
	api.Post("/notes/:id/restore", handlers.RestoreNote(a))
	api.Delete("/notes/:id/permanent", handlers.PermanentDeleteNote(a))
	api.Post("/notes/:id/versions", handlers.AddNoteVersion(a))
	api.Post("/notes/:id/comments", handlers.AddNoteComment(a))

	api.Get("/folders", handlers.ListFolders(a))
	api.Post("/folders", handlers.CreateFolder(a))
	api.Post("/folders/sync", handlers.SyncFolders(a))
	api.Get("/folders/:id", handlers.GetFolder(a))
	api.Put("/folders/:id", handlers.UpdateFolder(a))
	api.Delete("/folders/:id", handlers.TrashFolder(a))
	api.Post("/folders/:id/restore", handlers.RestoreFolder(a))
	api.Delete("/folders/:id/permanent", handlers.PermanentDeleteFolder(a))

	admin := api.Group("/admin", middleware.AdminOnly())
	admin.Get("/accounts", handlers.ListAccounts(a))
	admin.Post("/accounts/sync", handlers.SyncAccounts(a))
	admin.Get("/accounts/:id", handlers.GetAccount(a))
	admin.Put("/accounts/:id", handlers.UpdateAccount(a))
	admin.Delete("/accounts/:id", handlers.DeleteAccount(a))
	admin.Post("/accounts/:id/suspend", handlers.SuspendAccount(a))
	admin.Post("/accounts/:id/unsuspend", handlers.UnsuspendAccount(a))
	admin.Post("/migrate", handlers.Migrate(a))
	admin.Post("/query", handlers.RawQuery(a))
	admin.Post("/exec", handlers.RawExec(a))
	admin.Post("/transaction", handlers.RawTransaction(a))

	logger.Info("starting server", "port", config.AppConfig.Port, "env", config.AppConfig.Env)

	go func() {
		if err := srv.Listen(":" + config.AppConfig.Port); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.ShutdownWithContext(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func setupLogger() *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     getLogLevel(),
		AddSource: config.AppConfig.Env == "development",
	}

	if config.AppConfig.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func getLogLevel() slog.Level {
	switch config.GetEnv("LOG_LEVEL", "info") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		requestID := ""
		if id, ok := c.Locals("requestID").(string); ok {
			requestID = id
		}

		logger.Error("request failed",
			"request_id", requestID,
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(fiber.Map{
			"error":      message,
			"request_id": requestID,
		})
	}
}
