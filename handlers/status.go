package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"notekeep/app"
)

func Health(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !a.Gateway.HealthCheck() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

func GetStatus(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := a.Gateway.GetStatus()
		if err != nil {
			return serverError(c, "Failed to fetch status", err)
		}
		return success(c, status)
	}
}

func Migrate(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Gateway.Migrate(); err != nil {
			return serverError(c, "Migration failed", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

type rawRequest struct {
	Query string `json:"query" validate:"required"`
	Args  []any  `json:"args"`
}

// RawQuery runs an arbitrary SELECT, bypassing the repository
// contracts. Admin only; the caller owns the consequences.
func RawQuery(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rawRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return badRequest(c, err.Error())
		}

		rows, err := a.Gateway.RawQuery(req.Query, req.Args...)
		if err != nil {
			return serverError(c, "Query failed", err)
		}
		return success(c, fiber.Map{"rows": rows})
	}
}

// RawExec runs an arbitrary statement, bypassing the repository
// contracts. Admin only.
func RawExec(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req rawRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(req); err != nil {
			return badRequest(c, err.Error())
		}

		affected, lastID, err := a.Gateway.RawExec(req.Query, req.Args...)
		if err != nil {
			return serverError(c, "Statement failed", err)
		}
		return success(c, fiber.Map{"rows_affected": affected, "last_insert_id": lastID})
	}
}

// RawTransaction runs a list of statements in one transaction; any
// failure rolls the whole list back.
func RawTransaction(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var reqs []rawRequest
		if err := c.BodyParser(&reqs); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if len(reqs) == 0 {
			return badRequest(c, "at least one statement is required")
		}

		err := a.Gateway.RawTransaction(func(tx *sql.Tx) error {
			for _, req := range reqs {
				if _, err := tx.Exec(req.Query, req.Args...); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return serverError(c, "Transaction failed", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}
