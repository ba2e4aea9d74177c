package database

import "fmt"

// Migrate creates the schema if it is missing. Every statement is
// idempotent, so running it on every startup is safe.
func (db *DB) Migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			hash_algorithm TEXT NOT NULL DEFAULT 'bcrypt',
			display_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'user',
			permissions TEXT NOT NULL DEFAULT '[]',
			suspended INTEGER NOT NULL DEFAULT 0,
			suspended_at DATETIME,
			suspended_reason TEXT,
			last_login_at DATETIME,
			last_seen_at DATETIME,
			notes_updated_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS folders (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '#808080',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			pinned INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			folder_id TEXT,
			visibility TEXT NOT NULL DEFAULT 'private',
			password TEXT NOT NULL DEFAULT '',
			share_url TEXT NOT NULL DEFAULT '',
			short_id TEXT NOT NULL DEFAULT '',
			expires_at DATETIME,
			views INTEGER NOT NULL DEFAULT 0,
			versions TEXT NOT NULL DEFAULT '[]',
			comments TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			is_deleted INTEGER NOT NULL DEFAULT 0,
			deleted_at DATETIME,
			original_folder_id TEXT,
			original_pinned INTEGER,
			original_favorite INTEGER
		)`,

		`CREATE INDEX IF NOT EXISTS idx_notes_owner ON notes(owner_id, is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_short_id ON notes(short_id) WHERE short_id != ''`,
		`CREATE INDEX IF NOT EXISTS idx_folders_owner ON folders(owner_id, is_deleted)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts(role)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
