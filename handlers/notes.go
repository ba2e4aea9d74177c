package handlers

import (
	"github.com/gofiber/fiber/v2"

	"notekeep/app"
	"notekeep/middleware"
	"notekeep/models"
)

// ListNotes returns the caller's notes with filtered pagination.
func ListNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := a.Gateway.Notes.FindByOwner(middleware.GetAccountID(c), noteFilter(c))
		if err != nil {
			return serverError(c, "Failed to list notes", err)
		}
		return success(c, page)
	}
}

// CreateNote creates a note owned by the caller.
func CreateNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var params models.CreateNoteParams
		if err := c.BodyParser(&params); err != nil {
			return badRequest(c, "Invalid request body")
		}
		params.OwnerID = middleware.GetAccountID(c)
		if err := a.Validator.Validate(params); err != nil {
			return badRequest(c, err.Error())
		}

		note, err := a.Gateway.Notes.Create(params)
		if err != nil {
			return serverError(c, "Failed to create note", err)
		}
		if err := a.Gateway.Accounts.TouchNotesUpdated(params.OwnerID); err != nil {
			a.Logger.Warn("failed to touch notes_updated_at", "account_id", params.OwnerID, "error", err)
		}
		return created(c, note)
	}
}

func GetNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := a.Gateway.Notes.FindByID(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to fetch note", err)
		}
		if note == nil || note.OwnerID != middleware.GetAccountID(c) {
			return notFound(c, "Note not found")
		}
		return success(c, note)
	}
}

// GetSharedNote resolves a note by its public short id and bumps the
// view counter. No authentication; only non-private notes are served.
func GetSharedNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := a.Gateway.Notes.FindByShortID(c.Params("shortId"))
		if err != nil {
			return serverError(c, "Failed to fetch note", err)
		}
		if note == nil || note.Visibility == models.VisibilityPrivate {
			return notFound(c, "Note not found")
		}
		if err := a.Gateway.Notes.IncrementViews(note.ID); err != nil {
			a.Logger.Warn("failed to increment views", "note_id", note.ID, "error", err)
		}
		return success(c, note)
	}
}

func UpdateNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := a.Gateway.Notes.FindByID(c.Params("id"))
		if err != nil {
			return serverError(c, "Failed to fetch note", err)
		}
		if note == nil || note.OwnerID != middleware.GetAccountID(c) {
			return notFound(c, "Note not found")
		}

		var params models.UpdateNoteParams
		if err := c.BodyParser(&params); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := a.Validator.Validate(params); err != nil {
			return badRequest(c, err.Error())
		}

		updated, err := a.Gateway.Notes.Update(note.ID, params)
		if err != nil {
			return serverError(c, "Failed to update note", err)
		}
		if updated == nil {
			return notFound(c, "Note not found")
		}
		return success(c, updated)
	}
}

// TrashNote soft-deletes a note; restore brings it back with its
// pre-trash folder and flags.
func TrashNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Gateway.Notes.Trash(c.Params("id"), middleware.GetAccountID(c)); err != nil {
			return serverError(c, "Failed to trash note", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

func RestoreNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := a.Gateway.Notes.Restore(c.Params("id"), middleware.GetAccountID(c)); err != nil {
			return serverError(c, "Failed to restore note", err)
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

func PermanentDeleteNote(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		removed, err := a.Gateway.Notes.PermanentDelete(c.Params("id"), middleware.GetAccountID(c))
		if err != nil {
			return serverError(c, "Failed to delete note", err)
		}
		if !removed {
			return notFound(c, "Note not found")
		}
		return success(c, fiber.Map{"status": "ok"})
	}
}

// AddNoteVersion appends a content snapshot to the note's version log.
func AddNoteVersion(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := ownedNote(a, c)
		if err != nil {
			return serverError(c, "Failed to fetch note", err)
		}
		if note == nil {
			return notFound(c, "Note not found")
		}

		var version models.NoteVersion
		if err := c.BodyParser(&version); err != nil {
			return badRequest(c, "Invalid request body")
		}

		updated, err := a.Gateway.Notes.AddVersion(note.ID, version)
		if err != nil {
			return serverError(c, "Failed to add version", err)
		}
		return success(c, updated)
	}
}

// AddNoteComment appends an authored entry to the note's comment log.
func AddNoteComment(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		note, err := ownedNote(a, c)
		if err != nil {
			return serverError(c, "Failed to fetch note", err)
		}
		if note == nil {
			return notFound(c, "Note not found")
		}

		var comment models.NoteComment
		if err := c.BodyParser(&comment); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if comment.Text == "" {
			return badRequest(c, "text is required")
		}
		comment.AuthorID = middleware.GetAccountID(c)

		updated, err := a.Gateway.Notes.AddComment(note.ID, comment)
		if err != nil {
			return serverError(c, "Failed to add comment", err)
		}
		return success(c, updated)
	}
}

// SyncNotes applies a bulk batch of note upserts with per-item
// isolation and reports the aggregate outcome.
func SyncNotes(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.NoteSyncItem
		if err := c.BodyParser(&items); err != nil {
			return badRequest(c, "Invalid request body")
		}
		// The owner always comes from the token. A payload owner_id
		// would let a caller target another account's rows.
		ownerID := middleware.GetAccountID(c)
		for i := range items {
			items[i].OwnerID = ownerID
		}

		result := a.Gateway.Notes.BulkUpsert(items)
		if result.Synced > 0 {
			if err := a.Gateway.Accounts.TouchNotesUpdated(ownerID); err != nil {
				a.Logger.Warn("failed to touch notes_updated_at", "account_id", ownerID, "error", err)
			}
		}
		return success(c, result)
	}
}

func ownedNote(a *app.App, c *fiber.Ctx) (*models.Note, error) {
	note, err := a.Gateway.Notes.FindByID(c.Params("id"))
	if err != nil {
		return nil, err
	}
	if note == nil || note.OwnerID != middleware.GetAccountID(c) {
		return nil, nil
	}
	return note, nil
}
