package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notekeep/app"
	"notekeep/middleware"
	"notekeep/models"
)

func ListFolders(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := models.FolderFilter{
			IncludeDeleted: c.QueryBool("include_deleted", false),
			OnlyDeleted:    c.QueryBool("only_deleted", false),
			ListOptions:    listOptions(c),
		}
		page, err := a.Gateway.Folders.FindByOwner(middleware.GetAccountID(c), f)
		if err != nil {
			return serverError(c, "Failed to list folders", err)
		}
		return success(c, page)
	}
}

func CreateFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params models.CreateFolderParams
		if err := c.BodyParser(&params); err != nil {
			return badRequest(c, "Invalid request body")
		}
		params.OwnerID = middleware.GetAccountID(c)
		if err := a.Validator.Validate(params); err != nil {
			return badRequest(c, err.Error())
		}

		folder, err := a.Gateway.Folders.Create(params)
		if err != nil {
			return serverError(c, "Failed to create folder", err)
		}
		return created(c, folder)
	}
}

func GetFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folder, err := a.Gateway.Folders.FindByID(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to fetch folder", err)
		}
		if folder == nil || folder.OwnerID != middleware.GetAccountID(c) {
			return notFound(c, "Folder not found")
		}
		return success(c, folder)
	}
}

func UpdateFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folder, err := a.Gateway.Folders.FindByID(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to fetch folder", err)
		}
		if folder == nil || folder.OwnerID != middleware.GetAccountID(c) {
			return notFound(c, "Folder not found")
		}

		var params models.UpdateFolderParams
		if err := c.BodyParser(&params); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(params); err != nil {
			return badRequest(c, err.Error())
		}

		updated, err := a.Gateway.Folders.Update(folder.ID, params)
		if err != nil {
			return serverError(c, "Failed to update folder", err)
		}
		if updated == nil {
			return notFound(c, "Folder not found")
		}
		return success(c, updated)
	}
}

func TrashFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Gateway.Folders.Trash(c.Params("id"), middleware.GetAccountID(c)); err != nil {
			return serverError(c, "Failed to trash folder", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

func RestoreFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Gateway.Folders.Restore(c.Params("id"), middleware.GetAccountID(c)); err != nil {
			return serverError(c, "Failed to restore folder", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

func PermanentDeleteFolder(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		removed, err := a.Gateway.Folders.PermanentDelete(c.Params("id"), middleware.GetAccountID(c))
		if err != nil {
			return serverError(c, "Failed to delete folder", err)
		}
		if !removed {
			return notFound(c, "Folder not found")
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

// SyncFolders applies a bulk batch of folder upserts. The folder path
// commits the batch in one transaction.
func SyncFolders(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.FolderSyncItem
		if err := c.BodyParser(&items); err != nil {
			return badRequest(c, "Invalid request body")
		}
		// The owner always comes from the token, never the payload.
		ownerID := middleware.GetAccountID(c)
		for i := range items {
			items[i].OwnerID = ownerID
		}
		return success(c, a.Gateway.Folders.BulkUpsert(items))
	}
}
