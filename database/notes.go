package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"notekeep/models"
)

// rowLocks serializes read-modify-write cycles per note id. The version
// and comment logs are rewritten whole on append, so two concurrent
// appends to the same note would otherwise race and the later write
// would silently discard the earlier one.
type rowLocks struct {
	m sync.Map // note id -> *sync.Mutex
}

func (l *rowLocks) lock(id string) func() {
	v, _ := l.m.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// NoteRepository maps the notes table to models.Note.
type NoteRepository struct {
	db     *DB
	logger *slog.Logger
	locks  rowLocks
}

func NewNoteRepository(db *DB, logger *slog.Logger) *NoteRepository {
	return &NoteRepository{db: db, logger: logger}
}

var noteOrderColumns = map[string]bool{
	"title":      true,
	"created_at": true,
	"updated_at": true,
	"views":      true,
	"visibility": true,
	"pinned":     true,
	"favorite":   true,
}

var noteCountColumns = map[string]bool{
	"owner_id":   true,
	"folder_id":  true,
	"visibility": true,
	"pinned":     true,
	"favorite":   true,
	"is_deleted": true,
	"short_id":   true,
}

func (r *NoteRepository) FindByID(id string) (*models.Note, error) {
	return r.findOne("id = ?", id)
}

// FindByShortID looks a note up by its compact public share identifier.
func (r *NoteRepository) FindByShortID(shortID string) (*models.Note, error) {
	if shortID == "" {
		return nil, nil
	}
	return r.findOne("short_id = ? AND is_deleted = 0", shortID)
}

func (r *NoteRepository) findOne(cond string, args ...any) (*models.Note, error) {
	row := r.db.QueryRow("SELECT "+noteColumns+" FROM notes WHERE "+cond, args...)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// FindAll returns one page of non-deleted notes plus the total count,
// computed concurrently from the same predicates.
func (r *NoteRepository) FindAll(opts models.ListOptions) (*models.Page[models.Note], error) {
	opts.Normalize()
	q := newQuery("notes", noteColumns).deletedState(false, false)
	order := orderColumn(opts.OrderBy, noteOrderColumns, "updated_at")
	return runPaged(r.db, q, order, opts.Desc, opts.Limit, opts.Offset, scanNote)
}

// FindByOwner lists one owner's notes with the full filter surface.
func (r *NoteRepository) FindByOwner(ownerID string, f models.NoteFilter) (*models.Page[models.Note], error) {
	f.OwnerID = ownerID
	return r.FindWithFilter(f)
}

// FindWithFilter composes the optional predicates in a fixed order:
// owner equality, deleted state, the tri-state folder reference, the
// visibility enum, substring search ORed across title and content, and
// tag containment ("has at least one of").
func (r *NoteRepository) FindWithFilter(f models.NoteFilter) (*models.Page[models.Note], error) {
	f.Normalize()
	q := newQuery("notes", noteColumns)
	if f.OwnerID != "" {
		q.where("owner_id = ?", f.OwnerID)
	}
	q.deletedState(f.IncludeDeleted, f.OnlyDeleted)
	if f.FolderID.Present {
		if f.FolderID.Null {
			q.where("folder_id IS NULL")
		} else {
			q.where("folder_id = ?", f.FolderID.Value)
		}
	}
	if f.Visibility != nil {
		q.where("visibility = ?", string(*f.Visibility))
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q.whereAny([]string{"title LIKE ?", "content LIKE ?"}, needle, needle)
	}
	if len(f.Tags) > 0 {
		exprs := make([]string, 0, len(f.Tags))
		args := make([]any, 0, len(f.Tags))
		for _, tag := range f.Tags {
			exprs = append(exprs, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)")
			args = append(args, tag)
		}
		q.whereAny(exprs, args...)
	}
	order := orderColumn(f.OrderBy, noteOrderColumns, "updated_at")
	return runPaged(r.db, q, order, f.Desc, f.Limit, f.Offset, scanNote)
}

// Create inserts a new note and reads it back, so defaulted columns
// come from the store rather than the insert echo.
func (r *NoteRepository) Create(p models.CreateNoteParams) (*models.Note, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	visibility := p.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	tags, err := encodeJSON(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO notes (id, owner_id, title, content, tags, pinned, favorite,
			folder_id, visibility, password, share_url, short_id, expires_at,
			views, versions, comments, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '[]', '[]', ?, ?, 0)
	`, id, p.OwnerID, p.Title, p.Content, tags, boolToInt(p.Pinned), boolToInt(p.Favorite),
		nullableString(p.FolderID), string(visibility), p.Password, p.ShareURL, p.ShortID,
		nullableTime(p.ExpiresAt), now, now)
	if err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// Update applies a partial update, touching only supplied fields. An
// empty update short-circuits to a plain read.
func (r *NoteRepository) Update(id string, p models.UpdateNoteParams) (*models.Note, error) {
	if p.IsEmpty() {
		return r.FindByID(id)
	}

	var sets []string
	var args []any
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *p.Content)
	}
	if p.Tags != nil {
		encoded, err := encodeJSON(*p.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, encoded)
	}
	if p.Pinned != nil {
		sets = append(sets, "pinned = ?")
		args = append(args, boolToInt(*p.Pinned))
	}
	if p.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, boolToInt(*p.Favorite))
	}
	if p.FolderID.Present {
		if p.FolderID.Null {
			sets = append(sets, "folder_id = NULL")
		} else {
			sets = append(sets, "folder_id = ?")
			args = append(args, p.FolderID.Value)
		}
	}
	if p.Visibility != nil {
		sets = append(sets, "visibility = ?")
		args = append(args, string(*p.Visibility))
	}
	if p.Password != nil {
		sets = append(sets, "password = ?")
		args = append(args, *p.Password)
	}
	if p.ShareURL != nil {
		sets = append(sets, "share_url = ?")
		args = append(args, *p.ShareURL)
	}
	if p.ShortID != nil {
		sets = append(sets, "short_id = ?")
		args = append(args, *p.ShortID)
	}
	if p.ExpiresAt != nil {
		sets = append(sets, "expires_at = ?")
		args = append(args, *p.ExpiresAt)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.Exec("UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.FindByID(id)
}

// Delete hard-removes the note row, reporting whether a row was removed.
func (r *NoteRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of notes matching an exact-match filter.
func (r *NoteRepository) Count(filter map[string]any) (int, error) {
	q := newQuery("notes", noteColumns)
	for field, value := range filter {
		if !noteCountColumns[field] {
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

// Trash soft-deletes an active note: one UPDATE snapshots the current
// folder/pinned/favorite into the original_* shadow fields and clears
// the live fields, so the transition is atomic. Missing, foreign or
// already-trashed notes are silently ignored.
func (r *NoteRepository) Trash(id, ownerID string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		UPDATE notes SET
			is_deleted = 1,
			deleted_at = ?,
			original_folder_id = folder_id,
			original_pinned = pinned,
			original_favorite = favorite,
			folder_id = NULL,
			pinned = 0,
			favorite = 0,
			updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_deleted = 0
	`, now, now, id, ownerID)
	return err
}

// Restore moves a trashed note back to its pre-trash placement and
// clears the shadow fields. Shadow booleans that were never set default
// to false.
func (r *NoteRepository) Restore(id, ownerID string) error {
	_, err := r.db.Exec(`
		UPDATE notes SET
			is_deleted = 0,
			deleted_at = NULL,
			folder_id = original_folder_id,
			pinned = COALESCE(original_pinned, 0),
			favorite = COALESCE(original_favorite, 0),
			original_folder_id = NULL,
			original_pinned = NULL,
			original_favorite = NULL,
			updated_at = ?
		WHERE id = ? AND owner_id = ? AND is_deleted = 1
	`, time.Now().UTC(), id, ownerID)
	return err
}

// PermanentDelete hard-removes the note regardless of trash state,
// scoped to the caller's ownership.
func (r *NoteRepository) PermanentDelete(id, ownerID string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM notes WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByOwner removes all of one account's notes. Account deletion
// does not cascade on its own; this is the explicit driver.
func (r *NoteRepository) DeleteByOwner(ownerID string) (int64, error) {
	res, err := r.db.Exec("DELETE FROM notes WHERE owner_id = ?", ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AddVersion appends a full content snapshot to the note's version log.
// The log is rewritten whole, so the cycle holds the note's row lock.
func (r *NoteRepository) AddVersion(noteID string, version models.NoteVersion) (*models.Note, error) {
	unlock := r.locks.lock(noteID)
	defer unlock()

	note, err := r.FindByID(noteID)
	if err != nil || note == nil {
		return nil, err
	}

	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	versions, err := encodeJSON(append(note.Versions, version))
	if err != nil {
		return nil, fmt.Errorf("failed to encode versions: %w", err)
	}

	_, err = r.db.Exec("UPDATE notes SET versions = ?, updated_at = ? WHERE id = ?",
		versions, time.Now().UTC(), noteID)
	if err != nil {
		return nil, err
	}
	return r.FindByID(noteID)
}

// AddComment appends an authored entry to the note's comment log,
// under the same per-row lock as AddVersion.
func (r *NoteRepository) AddComment(noteID string, comment models.NoteComment) (*models.Note, error) {
	unlock := r.locks.lock(noteID)
	defer unlock()

	note, err := r.FindByID(noteID)
	if err != nil || note == nil {
		return nil, err
	}

	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	comments, err := encodeJSON(append(note.Comments, comment))
	if err != nil {
		return nil, fmt.Errorf("failed to encode comments: %w", err)
	}

	_, err = r.db.Exec("UPDATE notes SET comments = ?, updated_at = ? WHERE id = ?",
		comments, time.Now().UTC(), noteID)
	if err != nil {
		return nil, err
	}
	return r.FindByID(noteID)
}

// IncrementViews bumps the view counter as a single atomic statement at
// the store, so concurrent increments never lose updates.
func (r *NoteRepository) IncrementViews(noteID string) error {
	_, err := r.db.Exec("UPDATE notes SET views = views + 1 WHERE id = ?", noteID)
	return err
}

// Upsert inserts the note if (id, owner) is absent and updates it
// otherwise. Omitted fields default on insert: empty strings, empty
// collections, zero views, private visibility.
func (r *NoteRepository) Upsert(item models.NoteSyncItem) (*models.Note, error) {
	if item.OwnerID == "" {
		return nil, fmt.Errorf("note %s: owner_id is required", item.ID)
	}

	existing, err := r.findOne("id = ? AND owner_id = ?", item.ID, item.OwnerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.Update(item.ID, item.UpdateNoteParams)
	}

	now := time.Now().UTC()
	p := item.UpdateNoteParams
	title, content, password, shareURL, shortID := "", "", "", "", ""
	if p.Title != nil {
		title = *p.Title
	}
	if p.Content != nil {
		content = *p.Content
	}
	if p.Password != nil {
		password = *p.Password
	}
	if p.ShareURL != nil {
		shareURL = *p.ShareURL
	}
	if p.ShortID != nil {
		shortID = *p.ShortID
	}
	visibility := models.VisibilityPrivate
	if p.Visibility != nil {
		visibility = *p.Visibility
	}
	pinned, favorite := false, false
	if p.Pinned != nil {
		pinned = *p.Pinned
	}
	if p.Favorite != nil {
		favorite = *p.Favorite
	}
	var folderID sql.NullString
	if p.FolderID.Present && !p.FolderID.Null {
		folderID = sql.NullString{String: p.FolderID.Value, Valid: true}
	}
	tags := "[]"
	if p.Tags != nil {
		if tags, err = encodeJSON(*p.Tags); err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
	}

	_, err = r.db.Exec(`
		INSERT INTO notes (id, owner_id, title, content, tags, pinned, favorite,
			folder_id, visibility, password, share_url, short_id, expires_at,
			views, versions, comments, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, '[]', '[]', ?, ?, 0)
	`, item.ID, item.OwnerID, title, content, tags, boolToInt(pinned), boolToInt(favorite),
		folderID, string(visibility), password, shareURL, shortID,
		nullableTime(p.ExpiresAt), now, now)
	if err != nil {
		return nil, err
	}
	return r.FindByID(item.ID)
}

// BulkUpsert applies Upsert to every item independently and
// concurrently, with no collective transaction. One bad record cannot
// block the rest of the synchronization batch.
func (r *NoteRepository) BulkUpsert(items []models.NoteSyncItem) SyncResult {
	result := fanOut(items,
		func(it models.NoteSyncItem) string { return it.ID },
		func(it models.NoteSyncItem) error {
			_, err := r.Upsert(it)
			return err
		})
	for _, f := range result.Failures {
		r.logger.Warn("note sync item failed", "id", f.ID, "error", f.Error)
	}
	return result
}
