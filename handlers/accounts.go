package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notekeep/app"
	"notekeep/models"
)

// ListAccounts returns accounts with filtered pagination (admin only).
func ListAccounts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := models.AccountFilter{
			Search:      c.Query("search"),
			Suspended:   parseBoolQuery(c, "suspended"),
			ListOptions: listOptions(c),
		}
		if role := c.Query("role"); role != "" {
			r := models.Role(role)
			f.Role = &r
		}

		page, err := a.Gateway.Accounts.FindWithFilter(f)
		if err != nil {
			return serverError(c, "Failed to list accounts", err)
		}
		return success(c, page)
	}
}

func GetAccount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, err := a.Gateway.Accounts.FindByID(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to fetch account", err)
		}
		if account == nil {
			return notFound(c, "Account not found")
		}
		return success(c, account)
	}
}

func UpdateAccount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params models.UpdateAccountParams
		if err := c.BodyParser(&params); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(params); err != nil {
			return badRequest(c, err.Error())
		}

		account, err := a.Gateway.Accounts.Update(c.Params("id"), params)
		if err != nil {
			return serverError(c, "Failed to update account", err)
		}
		if account == nil {
			return notFound(c, "Account not found")
		}
		return success(c, account)
	}
}

// DeleteAccount removes the account and drives the note/folder cascade
// explicitly; nothing cascades on its own.
func DeleteAccount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		notes, err := a.Gateway.Notes.DeleteByOwner(id)
		if err != nil {
			return serverError(c, "Failed to delete account notes", err)
		}
		folders, err := a.Gateway.Folders.DeleteByOwner(id)
		if err != nil {
			return serverError(c, "Failed to delete account folders", err)
		}
		removed, err := a.Gateway.Accounts.Delete(id)
		if err != nil {
			return serverError(c, "Failed to delete account", err)
		}
		if !removed {
			return notFound(c, "Account not found")
		}
		return success(c, fiber.Map{"status": "ok", "notes_removed": notes, "folders_removed": folders})
	}
}

func SuspendAccount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.BodyParser(&body); err != nil {
			return badRequest(c, "Invalid request body")
		}

		account, err := a.Gateway.Accounts.Suspend(c.Params("id"), body.Reason)
		if err != nil {
			return serverError(c, "Failed to suspend account", err)
		}
		if account == nil {
			return notFound(c, "Account not found")
		}
		return success(c, account)
	}
}

func UnsuspendAccount(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, err := a.Gateway.Accounts.Unsuspend(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to unsuspend account", err)
		}
		if account == nil {
			return notFound(c, "Account not found")
		}
		return success(c, account)
	}
}

// SyncAccounts applies a bulk batch of account upserts with per-item
// isolation and reports the aggregate outcome.
func SyncAccounts(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.AccountSyncItem
		if err := c.BodyParser(&items); err != nil {
			return badRequest(c, "Invalid request body")
		}
		return success(c, a.Gateway.Accounts.BulkUpsert(items))
	}
}
