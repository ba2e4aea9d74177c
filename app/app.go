package app

import (
	"log/slog"

	"notekeep/auth"
	"notekeep/database"
	"notekeep/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	Gateway   *database.Gateway
	Tokens    *auth.TokenManager
	Validator *validator.Validator
	Logger    *slog.Logger
}

// New creates a new App instance with all dependencies
func New(gateway *database.Gateway, tokens *auth.TokenManager, logger *slog.Logger) *App {
	return &App{
		Gateway:   gateway,
		Tokens:    tokens,
		Validator: validator.New(),
		Logger:    logger,
	}
}
