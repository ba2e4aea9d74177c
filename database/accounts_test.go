package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeep/models"
)

func TestAccountCreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())

	account, err := repo.Create(models.CreateAccountParams{
		Username:      "alice",
		Email:         "alice@example.com",
		PasswordHash:  "$2a$10$fakehash",
		HashAlgorithm: "bcrypt",
		DisplayName:   "Alice",
		Permissions:   []string{"notes:write"},
	})
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, "$2a$10$fakehash", account.PasswordHash)
	assert.Equal(t, "bcrypt", account.HashAlgorithm)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.Equal(t, []string{"notes:write"}, account.Permissions)
	assert.False(t, account.Suspended)
	assert.Nil(t, account.SuspendedAt)
	assert.False(t, account.CreatedAt.IsZero())
	assert.False(t, account.UpdatedAt.IsZero())

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(account.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, account.ID, found.ID)
	})

	t.Run("find by email and username", func(t *testing.T) {
		byEmail, err := repo.FindByEmail("alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)

		byUsername, err := repo.FindByUsername("alice")
		require.NoError(t, err)
		require.NotNil(t, byUsername)
		assert.Equal(t, byEmail.ID, byUsername.ID)
	})

	t.Run("missing id yields nil, not error", func(t *testing.T) {
		found, err := repo.FindByID("no-such-id")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestAccountUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())
	account := createTestAccount(t, repo, "bob")

	t.Run("partial update touches only supplied fields", func(t *testing.T) {
		updated, err := repo.Update(account.ID, models.UpdateAccountParams{
			DisplayName: strPtr("Bobby"),
		})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, "Bobby", updated.DisplayName)
		assert.Equal(t, "bob", updated.Username)
		assert.True(t, updated.UpdatedAt.After(account.UpdatedAt) || updated.UpdatedAt.Equal(account.UpdatedAt))
	})

	t.Run("empty update is a plain read", func(t *testing.T) {
		before, err := repo.FindByID(account.ID)
		require.NoError(t, err)

		after, err := repo.Update(account.ID, models.UpdateAccountParams{})
		require.NoError(t, err)
		require.NotNil(t, after)

		assert.Equal(t, before.DisplayName, after.DisplayName)
		assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	})

	t.Run("missing id yields nil, not error", func(t *testing.T) {
		updated, err := repo.Update("no-such-id", models.UpdateAccountParams{
			DisplayName: strPtr("nobody"),
		})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestAccountDeleteAndCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())
	account := createTestAccount(t, repo, "carol")
	createTestAccount(t, repo, "dave")

	count, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.Count(map[string]any{"username": "carol"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.Count(map[string]any{"password_hash": "x"})
	assert.Error(t, err, "non-whitelisted column must be rejected")

	removed, err := repo.Delete(account.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(account.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second delete removes nothing")
}

func TestAccountSuspension(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())
	account := createTestAccount(t, repo, "eve")

	suspended, err := repo.Suspend(account.ID, "abuse")
	require.NoError(t, err)
	require.NotNil(t, suspended)

	assert.True(t, suspended.Suspended)
	assert.NotNil(t, suspended.SuspendedAt)
	assert.Equal(t, "abuse", suspended.SuspendedReason)

	restored, err := repo.Unsuspend(account.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)

	assert.False(t, restored.Suspended)
	assert.Nil(t, restored.SuspendedAt)
	assert.Empty(t, restored.SuspendedReason)
}

func TestAccountSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())

	_, err := repo.Create(models.CreateAccountParams{
		Username: "frank", Email: "frank@example.com", DisplayName: "Frank Zappa",
	})
	require.NoError(t, err)
	_, err = repo.Create(models.CreateAccountParams{
		Username: "grace", Email: "grace@frankly.io", DisplayName: "Grace",
	})
	require.NoError(t, err)
	_, err = repo.Create(models.CreateAccountParams{
		Username: "henry", Email: "henry@example.com", DisplayName: "Henry",
	})
	require.NoError(t, err)

	page, err := repo.FindWithFilter(models.AccountFilter{Search: "frank"})
	require.NoError(t, err)

	// Substring search spans username, email and display name.
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Data, 2)
}

func TestAccountUpsertIdempotence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())

	item := models.AccountSyncItem{
		ID: "acc-1",
		UpdateAccountParams: models.UpdateAccountParams{
			Username:    strPtr("ivan"),
			Email:       strPtr("ivan@example.com"),
			DisplayName: strPtr("Ivan"),
		},
	}

	first, err := repo.Upsert(item)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := repo.Upsert(item)
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Username, second.Username)
	assert.Equal(t, first.Email, second.Email)
	assert.Equal(t, first.DisplayName, second.DisplayName)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	count, err := repo.Count(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAccountBulkUpsertPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db, testLogger())

	items := []models.AccountSyncItem{
		{ID: "a1", UpdateAccountParams: models.UpdateAccountParams{
			Username: strPtr("u1"), Email: strPtr("u1@example.com")}},
		// Missing username/email on insert: malformed.
		{ID: "a2"},
		{ID: "a3", UpdateAccountParams: models.UpdateAccountParams{
			Username: strPtr("u3"), Email: strPtr("u3@example.com")}},
	}

	result := repo.BulkUpsert(items)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Synced)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "a2", result.Failures[0].ID)

	// Well-formed items persisted independently of the failure.
	for _, id := range []string{"a1", "a3"} {
		found, err := repo.FindByID(id)
		require.NoError(t, err)
		assert.NotNil(t, found)
	}
	missing, err := repo.FindByID("a2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
