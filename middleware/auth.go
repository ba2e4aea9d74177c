package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"notekeep/auth"
)

// AuthRequired checks the Authorization header for a valid bearer token
// and stores the account identity in request locals.
func AuthRequired(tokens *auth.TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": message,
			})
		}

		c.Locals("accountID", claims.AccountID)
		c.Locals("role", claims.Role)
		return c.Next()
	}
}

// AdminOnly gates a route to admin-role tokens. Must run after
// AuthRequired.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("role").(string); role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}

// GetAccountID extracts the authenticated account id from locals.
func GetAccountID(c *fiber.Ctx) string {
	if id, ok := c.Locals("accountID").(string); ok {
		return id
	}
	return ""
}
