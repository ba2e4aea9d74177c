package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"notekeep/models"
)

// This file is the codec boundary between storage and in-memory
// representations: booleans travel as 0/1 integers, collection fields
// (tags, permissions, versions, comments) as JSON text, nullable
// columns through sql.Null*. Nothing outside this file touches the
// storage encoding.

// rowScanner lets the same decoder serve *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, username, email, password_hash, hash_algorithm, display_name,
	role, permissions, suspended, suspended_at, suspended_reason,
	last_login_at, last_seen_at, notes_updated_at, created_at, updated_at`

const noteColumns = `id, owner_id, title, content, tags, pinned, favorite, folder_id,
	visibility, password, share_url, short_id, expires_at, views,
	versions, comments, created_at, updated_at,
	is_deleted, deleted_at, original_folder_id, original_pinned, original_favorite`

const folderColumns = `id, owner_id, name, color, created_at, updated_at, is_deleted, deleted_at`

func scanAccount(row rowScanner) (*models.Account, error) {
	var a models.Account
	var permissions string
	var suspended int
	var suspendedAt, lastLoginAt, lastSeenAt, notesUpdatedAt sql.NullTime
	var suspendedReason sql.NullString

	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.HashAlgorithm, &a.DisplayName,
		&a.Role, &permissions, &suspended, &suspendedAt, &suspendedReason,
		&lastLoginAt, &lastSeenAt, &notesUpdatedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Suspended = suspended == 1
	a.SuspendedAt = timePtr(suspendedAt)
	a.SuspendedReason = suspendedReason.String
	a.LastLoginAt = timePtr(lastLoginAt)
	a.LastSeenAt = timePtr(lastSeenAt)
	a.NotesUpdatedAt = timePtr(notesUpdatedAt)

	if err := decodeJSON(permissions, &a.Permissions); err != nil {
		return nil, fmt.Errorf("account %s: bad permissions column: %w", a.ID, err)
	}
	if a.Permissions == nil {
		a.Permissions = []string{}
	}
	return &a, nil
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	var tags, versions, comments string
	var pinned, favorite, isDeleted int
	var folderID, originalFolderID sql.NullString
	var expiresAt, deletedAt sql.NullTime
	var originalPinned, originalFavorite sql.NullInt64

	err := row.Scan(
		&n.ID, &n.OwnerID, &n.Title, &n.Content, &tags, &pinned, &favorite, &folderID,
		&n.Visibility, &n.Password, &n.ShareURL, &n.ShortID, &expiresAt, &n.Views,
		&versions, &comments, &n.CreatedAt, &n.UpdatedAt,
		&isDeleted, &deletedAt, &originalFolderID, &originalPinned, &originalFavorite,
	)
	if err != nil {
		return nil, err
	}

	n.Pinned = pinned == 1
	n.Favorite = favorite == 1
	n.FolderID = stringPtr(folderID)
	n.ExpiresAt = timePtr(expiresAt)
	n.IsDeleted = isDeleted == 1
	n.DeletedAt = timePtr(deletedAt)
	n.OriginalFolderID = stringPtr(originalFolderID)
	n.OriginalPinned = boolPtr(originalPinned)
	n.OriginalFavorite = boolPtr(originalFavorite)

	if err := decodeJSON(tags, &n.Tags); err != nil {
		return nil, fmt.Errorf("note %s: bad tags column: %w", n.ID, err)
	}
	if err := decodeJSON(versions, &n.Versions); err != nil {
		return nil, fmt.Errorf("note %s: bad versions column: %w", n.ID, err)
	}
	if err := decodeJSON(comments, &n.Comments); err != nil {
		return nil, fmt.Errorf("note %s: bad comments column: %w", n.ID, err)
	}
	if n.Tags == nil {
		n.Tags = []string{}
	}
	if n.Versions == nil {
		n.Versions = []models.NoteVersion{}
	}
	if n.Comments == nil {
		n.Comments = []models.NoteComment{}
	}
	return &n, nil
}

func scanFolder(row rowScanner) (*models.Folder, error) {
	var f models.Folder
	var isDeleted int
	var deletedAt sql.NullTime

	err := row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.Color,
		&f.CreatedAt, &f.UpdatedAt, &isDeleted, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	f.IsDeleted = isDeleted == 1
	f.DeletedAt = timePtr(deletedAt)
	return &f, nil
}

// encodeJSON serializes a collection field for storage; nil collections
// are stored as the empty array, never as SQL NULL.
func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	s := string(b)
	if s == "null" {
		s = "[]"
	}
	return s, nil
}

func decodeJSON(s string, dst any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func boolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Int64 == 1
	return &v
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
