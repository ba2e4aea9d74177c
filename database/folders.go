package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"notekeep/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx, so the folder upsert
// can run standalone or inside the bulk-sync transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// FolderRepository maps the folders table to models.Folder.
type FolderRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewFolderRepository(db *DB, logger *slog.Logger) *FolderRepository {
	return &FolderRepository{db: db, logger: logger}
}

var folderOrderColumns = map[string]bool{
	"name":       true,
	"created_at": true,
	"updated_at": true,
}

var folderCountColumns = map[string]bool{
	"owner_id":   true,
	"name":       true,
	"color":      true,
	"is_deleted": true,
}

func (r *FolderRepository) FindByID(id string) (*models.Folder, error) {
	return r.findOne(r.db, "id = ?", id)
}

func (r *FolderRepository) findOne(e execer, cond string, args ...any) (*models.Folder, error) {
	row := e.QueryRow("SELECT "+folderColumns+" FROM folders WHERE "+cond, args...)
	folder, err := scanFolder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// FindAll returns one page of non-deleted folders plus the total count,
// computed concurrently from the same predicates.
func (r *FolderRepository) FindAll(opts models.ListOptions) (*models.Page[models.Folder], error) {
	opts.Normalize()
	q := newQuery("folders", folderColumns).deletedState(false, false)
	order := orderColumn(opts.OrderBy, folderOrderColumns, "created_at")
	return runPaged(r.db, q, order, opts.Desc, opts.Limit, opts.Offset, scanFolder)
}

// FindByOwner lists one owner's folders, honoring the deleted-state
// filter defaults.
func (r *FolderRepository) FindByOwner(ownerID string, f models.FolderFilter) (*models.Page[models.Folder], error) {
	f.Normalize()
	q := newQuery("folders", folderColumns)
	if ownerID != "" {
		q.where("owner_id = ?", ownerID)
	}
	q.deletedState(f.IncludeDeleted, f.OnlyDeleted)
	order := orderColumn(f.OrderBy, folderOrderColumns, "created_at")
	return runPaged(r.db, q, order, f.Desc, f.Limit, f.Offset, scanFolder)
}

// Create inserts a new folder and reads it back.
func (r *FolderRepository) Create(p models.CreateFolderParams) (*models.Folder, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	color := p.Color
	if color == "" {
		color = models.DefaultFolderColor
	}

	_, err := r.db.Exec(`
		INSERT INTO folders (id, owner_id, name, color, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, id, p.OwnerID, p.Name, color, now, now)
	if err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// Update applies a partial update, touching only supplied fields.
func (r *FolderRepository) Update(id string, p models.UpdateFolderParams) (*models.Folder, error) {
	folder, err := r.updateOn(r.db, id, p)
	if err != nil {
		return nil, err
	}
	return folder, nil
}

func (r *FolderRepository) updateOn(e execer, id string, p models.UpdateFolderParams) (*models.Folder, error) {
	if p.IsEmpty() {
		return r.findOne(e, "id = ?", id)
	}

	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *p.Color)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := e.Exec("UPDATE folders SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.findOne(e, "id = ?", id)
}

// Delete hard-removes the folder row, reporting whether a row was
// removed. Notes pointing at the folder keep their folder_id; the
// reference is by value, not enforced referentially.
func (r *FolderRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of folders matching an exact-match filter.
func (r *FolderRepository) Count(filter map[string]any) (int, error) {
	q := newQuery("folders", folderColumns)
	for field, value := range filter {
		if !folderCountColumns[field] {
			return 0, fmt.Errorf("count: unknown column %q", field)
		}
		if b, ok := value.(bool); ok {
			value = boolToInt(b)
		}
		q.where(field+" = ?", value)
	}
	query, args := q.countSQL()
	var total int
	if err := r.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Trash soft-deletes an active folder. Folders carry no placement, so
// there is no shadow state to snapshot. Missing, foreign or
// already-trashed folders are silently ignored.
func (r *FolderRepository) Trash(id, ownerID string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE folders SET is_deleted = 1, deleted_at = ?, updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_deleted = 0
	`, now, now, id, ownerID)
	return err
}

// Restore clears the deleted flag and timestamp of a trashed folder.
func (r *FolderRepository) Restore(id, ownerID string) error {
	_, err := r.db.Exec(`
		UPDATE folders SET is_deleted = 0, deleted_at = NULL, updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_deleted = 1
	`, time.Now().UTC(), id, ownerID)
	return err
}

// PermanentDelete hard-removes the folder regardless of trash state,
// scoped to the caller's ownership.
func (r *FolderRepository) PermanentDelete(id, ownerID string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM folders WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByOwner removes all of one account's folders.
func (r *FolderRepository) DeleteByOwner(ownerID string) (int64, error) {
	res, err := r.db.Exec("DELETE FROM folders WHERE owner_id = ?", ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Upsert inserts the folder if (id, owner) is absent and updates it
// otherwise. Omitted fields default on insert: empty name, the default
// color, current timestamps.
func (r *FolderRepository) Upsert(item models.FolderSyncItem) (*models.Folder, error) {
	return r.upsertOn(r.db, item)
}

func (r *FolderRepository) upsertOn(e execer, item models.FolderSyncItem) (*models.Folder, error) {
	if item.OwnerID == "" {
		return nil, fmt.Errorf("folder %s: owner_id is required", item.ID)
	}

	existing, err := r.findOne(e, "id = ? AND owner_id = ?", item.ID, item.OwnerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.updateOn(e, item.ID, item.UpdateFolderParams)
	}

	now := time.Now().UTC()
	name := ""
	if item.Name != nil {
		name = *item.Name
	}
	color := models.DefaultFolderColor
	if item.Color != nil {
		color = *item.Color
	}

	_, err = e.Exec(`
		INSERT INTO folders (id, owner_id, name, color, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, item.ID, item.OwnerID, name, color, now, now)
	if err != nil {
		return nil, err
	}
	return r.findOne(e, "id = ?", item.ID)
}

// BulkUpsert applies Upsert to every item inside one explicit
// transaction. Unlike the note and account paths, folder batches commit
// together; per-item failures are still collected rather than aborting
// the batch, so the success count keeps its usual meaning.
func (r *FolderRepository) BulkUpsert(items []models.FolderSyncItem) SyncResult {
	result := SyncResult{Total: len(items)}

	err := r.db.Transaction(func(tx *sql.Tx) error {
		for _, item := range items {
			if _, err := r.upsertOn(tx, item); err != nil {
				result.Failures = append(result.Failures, SyncFailure{ID: item.ID, Error: err.Error()})
				continue
			}
			result.Synced++
		}
		return nil
	})
	if err != nil {
		// Commit failure voids the whole batch.
		result.Synced = 0
		result.Failures = append(result.Failures, SyncFailure{Error: err.Error()})
	}

	for _, f := range result.Failures {
		r.logger.Warn("folder sync item failed", "id", f.ID, "error", f.Error)
	}
	return result
}
