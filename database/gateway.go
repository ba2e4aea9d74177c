package database

import (
	"database/sql"
	"errors"
	"log/slog"
	"sync"
)

// ErrNotConnected is returned by gateway operations invoked before
// Connect or after Disconnect.
var ErrNotConnected = errors.New("database: gateway is not connected")

// Status is the gateway's operational snapshot.
type Status struct {
	Connected bool `json:"connected"`
	HasAdmin  bool `json:"has_admin"`
	Accounts  int  `json:"accounts"`
}

// Gateway composes the connection pool and the three entity
// repositories. It is the only object the request layer touches.
type Gateway struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	db       *DB
	Accounts *AccountRepository
	Notes    *NoteRepository
	Folders  *FolderRepository
}

func NewGateway(dbPath string, logger *slog.Logger) *Gateway {
	return &Gateway{path: dbPath, logger: logger}
}

// Connect opens the pool and wires the repositories. Calling it on a
// connected gateway is a no-op.
func (g *Gateway) Connect() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		return nil
	}

	db, err := New(g.path)
	if err != nil {
		return err
	}

	g.db = db
	g.Accounts = NewAccountRepository(db, g.logger)
	g.Notes = NewNoteRepository(db, g.logger)
	g.Folders = NewFolderRepository(db, g.logger)
	g.logger.Info("database connected", "path", g.path)
	return nil
}

// Disconnect tears the pool down. Repositories handed out earlier stop
// working; callers are expected to stop using them first.
func (g *Gateway) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	g.Accounts = nil
	g.Notes = nil
	g.Folders = nil
	g.logger.Info("database disconnected")
	return err
}

func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db != nil
}

// HealthCheck reports pool liveness; it never fails loudly.
func (g *Gateway) HealthCheck() bool {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return false
	}
	return db.HealthCheck()
}

// Migrate creates missing tables and indexes; safe to run repeatedly.
func (g *Gateway) Migrate() error {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return ErrNotConnected
	}
	return db.Migrate()
}

// GetStatus reports connectivity, whether any admin account exists, and
// the total account count.
func (g *Gateway) GetStatus() (*Status, error) {
	g.mu.Lock()
	accounts := g.Accounts
	g.mu.Unlock()

	if accounts == nil {
		return &Status{}, nil
	}

	hasAdmin, err := accounts.HasAdmin()
	if err != nil {
		return nil, err
	}
	total, err := accounts.Count(nil)
	if err != nil {
		return nil, err
	}
	return &Status{Connected: true, HasAdmin: hasAdmin, Accounts: total}, nil
}

// RawQuery runs an arbitrary SELECT and returns generic rows. It
// bypasses the repository contracts entirely; the caller is responsible
// for using it safely.
func (g *Gateway) RawQuery(query string, args ...any) ([]map[string]any, error) {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return nil, ErrNotConnected
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// RawExec runs an arbitrary statement and returns rows affected and the
// last insert id.
func (g *Gateway) RawExec(query string, args ...any) (rowsAffected, lastInsertID int64, err error) {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return 0, 0, ErrNotConnected
	}

	res, err := db.Exec(query, args...)
	if err != nil {
		return 0, 0, err
	}
	rowsAffected, _ = res.RowsAffected()
	lastInsertID, _ = res.LastInsertId()
	return rowsAffected, lastInsertID, nil
}

// RawTransaction runs caller-supplied work in one transaction with the
// usual commit/rollback discipline.
func (g *Gateway) RawTransaction(fn func(tx *sql.Tx) error) error {
	g.mu.Lock()
	db := g.db
	g.mu.Unlock()

	if db == nil {
		return ErrNotConnected
	}
	return db.Transaction(fn)
}
