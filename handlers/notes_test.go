package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeep/app"
	"notekeep/auth"
	"notekeep/database"
	"notekeep/handlers"
	"notekeep/middleware"
	"notekeep/models"
)

// setupTestApp wires a Fiber app against a temporary database and
// returns it with a ready bearer token for the test account.
func setupTestApp(t *testing.T) (*fiber.App, *app.App, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := database.NewGateway(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, gateway.Connect())
	require.NoError(t, gateway.Migrate())
	t.Cleanup(func() { gateway.Disconnect() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	a := app.New(gateway, tokens, logger)

	account, err := gateway.Accounts.Create(models.CreateAccountParams{
		Username: "tester", Email: "tester@example.com",
	})
	require.NoError(t, err)

	token, err := tokens.Generate(account.ID, string(account.Role))
	require.NoError(t, err)

	srv := fiber.New()
	srv.Get("/shared/:shortId", handlers.GetSharedNote(a))
	api := srv.Group("/api", middleware.AuthRequired(tokens))
	api.Get("/notes", handlers.ListNotes(a))
	api.Post("/notes", handlers.CreateNote(a))
	api.Post("/notes/sync", handlers.SyncNotes(a))
	api.Post("/folders/sync", handlers.SyncFolders(a))
	api.Get("/notes/:id", handlers.GetNote(a))
	api.Delete("/notes/:id", handlers.TrashNote(a))
	api.Post("/notes/:id/restore", handlers.RestoreNote(a))

	return srv, a, token
}

func doJSON(t *testing.T, srv *fiber.App, method, path, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestNoteEndpoints(t *testing.T) {
	srv, _, token := setupTestApp(t)

	t.Run("unauthorized without token", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/notes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	var noteID string
	t.Run("create note", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/notes", token, fiber.Map{
			"title":   "T",
			"content": "C",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var note models.Note
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&note))
		assert.Equal(t, "T", note.Title)
		assert.Equal(t, models.VisibilityPrivate, note.Visibility)
		noteID = note.ID
	})

	t.Run("get note", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/notes/"+noteID, token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("trash hides the note from listing", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodDelete, "/api/notes/"+noteID, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, srv, http.MethodGet, "/api/notes", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page models.Page[models.Note]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		assert.Equal(t, 0, page.Total)
	})

	t.Run("restore brings it back", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodPost, "/api/notes/"+noteID+"/restore", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = doJSON(t, srv, http.MethodGet, "/api/notes", token, nil)
		var page models.Page[models.Note]
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		assert.Equal(t, 1, page.Total)
	})

	t.Run("missing note is 404", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/api/notes/no-such-id", token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestNoteSyncEndpoint(t *testing.T) {
	srv, _, token := setupTestApp(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/notes/sync", token, []fiber.Map{
		{"id": "n1", "title": "one"},
		{"id": "n2", "title": "two"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result database.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Synced)
	assert.Empty(t, result.Failures)
}

// Sync items always run under the caller's identity; an owner_id in the
// payload must never let one account rewrite another account's rows.
func TestSyncIgnoresPayloadOwner(t *testing.T) {
	srv, a, token := setupTestApp(t)

	t.Run("notes", func(t *testing.T) {
		victim, err := a.Gateway.Notes.Create(models.CreateNoteParams{
			OwnerID: "victim", Title: "secret", Content: "top secret",
		})
		require.NoError(t, err)

		resp := doJSON(t, srv, http.MethodPost, "/api/notes/sync", token, []fiber.Map{
			{"id": victim.ID, "owner_id": "victim", "title": "pwned", "content": "defaced"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result database.SyncResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 0, result.Synced)
		assert.Len(t, result.Failures, 1)

		got, err := a.Gateway.Notes.FindByID(victim.ID)
		require.NoError(t, err)
		assert.Equal(t, "victim", got.OwnerID)
		assert.Equal(t, "secret", got.Title)
		assert.Equal(t, "top secret", got.Content)
	})

	t.Run("folders", func(t *testing.T) {
		victim, err := a.Gateway.Folders.Create(models.CreateFolderParams{
			OwnerID: "victim", Name: "private",
		})
		require.NoError(t, err)

		resp := doJSON(t, srv, http.MethodPost, "/api/folders/sync", token, []fiber.Map{
			{"id": victim.ID, "owner_id": "victim", "name": "pwned"},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result database.SyncResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 0, result.Synced)
		assert.Len(t, result.Failures, 1)

		got, err := a.Gateway.Folders.FindByID(victim.ID)
		require.NoError(t, err)
		assert.Equal(t, "victim", got.OwnerID)
		assert.Equal(t, "private", got.Name)
	})
}

func TestSharedNoteEndpoint(t *testing.T) {
	srv, a, _ := setupTestApp(t)

	_, err := a.Gateway.Notes.Create(models.CreateNoteParams{
		OwnerID: "someone", Title: "public", ShortID: "pub1",
		Visibility: models.VisibilityPublic,
	})
	require.NoError(t, err)
	_, err = a.Gateway.Notes.Create(models.CreateNoteParams{
		OwnerID: "someone", Title: "hidden", ShortID: "priv1",
	})
	require.NoError(t, err)

	t.Run("public note is served and counted", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/shared/pub1", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		note, err := a.Gateway.Notes.FindByShortID("pub1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), note.Views)
	})

	t.Run("private note is not exposed", func(t *testing.T) {
		resp := doJSON(t, srv, http.MethodGet, "/shared/priv1", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
