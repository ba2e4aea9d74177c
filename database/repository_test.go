package database

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"notekeep/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)

	err = db.Migrate()
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestAccount(t *testing.T, repo *AccountRepository, username string) *models.Account {
	t.Helper()

	account, err := repo.Create(models.CreateAccountParams{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, account)
	return account
}

func strPtr(s string) *string      { return &s }
func tagsPtr(t []string) *[]string { return &t }
