package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeep/models"
)

func setupGateway(t *testing.T) *Gateway {
	t.Helper()

	g := NewGateway(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, g.Connect())
	require.NoError(t, g.Migrate())
	t.Cleanup(func() { g.Disconnect() })
	return g
}

func TestGatewayLifecycle(t *testing.T) {
	g := NewGateway(filepath.Join(t.TempDir(), "test.db"), testLogger())

	assert.False(t, g.IsConnected())
	assert.False(t, g.HealthCheck())
	assert.ErrorIs(t, g.Migrate(), ErrNotConnected)

	require.NoError(t, g.Connect())
	assert.True(t, g.IsConnected())
	assert.True(t, g.HealthCheck())

	require.NoError(t, g.Connect(), "connect is idempotent")

	require.NoError(t, g.Migrate())
	require.NoError(t, g.Migrate(), "migrate is idempotent")

	require.NoError(t, g.Disconnect())
	assert.False(t, g.IsConnected())
	assert.False(t, g.HealthCheck())
	require.NoError(t, g.Disconnect(), "disconnect is idempotent")
}

func TestGatewayStatus(t *testing.T) {
	g := setupGateway(t)

	status, err := g.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.False(t, status.HasAdmin)
	assert.Equal(t, 0, status.Accounts)

	_, err = g.Accounts.Create(models.CreateAccountParams{
		Username: "root", Email: "root@example.com", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	_, err = g.Accounts.Create(models.CreateAccountParams{
		Username: "user", Email: "user@example.com",
	})
	require.NoError(t, err)

	status, err = g.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.HasAdmin)
	assert.Equal(t, 2, status.Accounts)
}

// Status must stay safe against a concurrent disconnect: a repository
// captured before the teardown may see a closed pool and report an
// error, but never dereference a nil repository.
func TestGatewayStatusDuringDisconnect(t *testing.T) {
	g := NewGateway(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, g.Connect())
	require.NoError(t, g.Migrate())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			g.GetStatus()
		}
	}()
	for i := 0; i < 20; i++ {
		require.NoError(t, g.Disconnect())
		require.NoError(t, g.Connect())
	}
	<-done

	require.NoError(t, g.Disconnect())
	status, err := g.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestGatewayRawPassthrough(t *testing.T) {
	g := setupGateway(t)

	affected, _, err := g.RawExec(
		"INSERT INTO folders (id, owner_id, name, created_at, updated_at) VALUES (?, ?, ?, datetime('now'), datetime('now'))",
		"f1", "u1", "Raw")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	rows, err := g.RawQuery("SELECT id, name FROM folders WHERE owner_id = ?", "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "f1", rows[0]["id"])
	assert.Equal(t, "Raw", rows[0]["name"])

	t.Run("transaction rolls back on failure", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := g.RawTransaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec("DELETE FROM folders WHERE id = ?", "f1"); err != nil {
				return err
			}
			return sentinel
		})
		assert.ErrorIs(t, err, sentinel)

		rows, err := g.RawQuery("SELECT id FROM folders WHERE id = ?", "f1")
		require.NoError(t, err)
		assert.Len(t, rows, 1, "rolled-back delete must not stick")
	})

	t.Run("transaction commits on success", func(t *testing.T) {
		err := g.RawTransaction(func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM folders WHERE id = ?", "f1")
			return err
		})
		require.NoError(t, err)

		rows, err := g.RawQuery("SELECT id FROM folders WHERE id = ?", "f1")
		require.NoError(t, err)
		assert.Len(t, rows, 0)
	})
}
