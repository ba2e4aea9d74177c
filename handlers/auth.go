package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notekeep/app"
	"notekeep/auth"
	"notekeep/middleware"
	"notekeep/models"
)

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account with a bcrypt-hashed credential.
func Register(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return badRequest(c, err.Error())
		}

		hash, algorithm, err := auth.HashPassword(req.Password)
		if err != nil {
			return serverError(c, "Failed to create account", err)
		}

		account, err := a.Gateway.Accounts.Create(models.CreateAccountParams{
			Username:      req.Username,
			Email:         req.Email,
			PasswordHash:  hash,
			HashAlgorithm: algorithm,
			DisplayName:   req.DisplayName,
		})
		if err != nil {
			return serverError(c, "Failed to create account", err)
		}
		return created(c, account)
	}
}

// Login verifies credentials, refreshes the login timestamp and issues
// a bearer token.
func Login(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return badRequest(c, err.Error())
		}

		account, err := a.Gateway.Accounts.FindByEmail(req.Email)
		if err != nil {
			return serverError(c, "Login failed", err)
		}
		if account == nil || !auth.VerifyPassword(account.PasswordHash, account.HashAlgorithm, req.Password) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
		}
		if account.Suspended {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account suspended"})
		}

		token, err := a.Tokens.Generate(account.ID, string(account.Role))
		if err != nil {
			return serverError(c, "Login failed", err)
		}
		if err := a.Gateway.Accounts.TouchLastLogin(account.ID); err != nil {
			a.Logger.Warn("failed to touch last_login_at", "account_id", account.ID, "error", err)
		}

		return success(c, fiber.Map{"token": token, "account": account})
	}
}

// Me returns the authenticated account and refreshes its activity
// timestamp.
func Me(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := middleware.GetAccountID(c)
		account, err := a.Gateway.Accounts.FindByID(id)
		if err != nil {
			return serverError(c, "Failed to fetch account", err)
		}
		if account == nil {
			return notFound(c, "Account not found")
		}
		if err := a.Gateway.Accounts.TouchLastSeen(id); err != nil {
			a.Logger.Warn("failed to touch last_seen_at", "account_id", id, "error", err)
		}
		return success(c, account)
	}
}
