package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notekeep/models"
)

func TestValidateCreateFolderParams(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		params  models.CreateFolderParams
		wantErr bool
	}{
		{
			name:   "valid",
			params: models.CreateFolderParams{OwnerID: "u1", Name: "Work", Color: "#3273dc"},
		},
		{
			name:   "color optional",
			params: models.CreateFolderParams{OwnerID: "u1", Name: "Work"},
		},
		{
			name:    "missing owner",
			params:  models.CreateFolderParams{Name: "Work"},
			wantErr: true,
		},
		{
			name:    "bad color",
			params:  models.CreateFolderParams{OwnerID: "u1", Name: "Work", Color: "blue"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateVisibility(t *testing.T) {
	v := New()

	for _, vis := range []models.Visibility{
		models.VisibilityPrivate, models.VisibilityUnlisted, models.VisibilityPublic,
	} {
		assert.NoError(t, v.Validate(models.CreateNoteParams{OwnerID: "u1", Visibility: vis}))
	}

	bad := models.Visibility("secret")
	err := v.Validate(models.CreateNoteParams{OwnerID: "u1", Visibility: bad})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, "visibility", verrs[0].Tag)
}

func TestValidateRole(t *testing.T) {
	v := New()

	role := models.RoleAdmin
	assert.NoError(t, v.Validate(models.UpdateAccountParams{Role: &role}))

	bad := models.Role("overlord")
	assert.Error(t, v.Validate(models.UpdateAccountParams{Role: &bad}))
}

func TestValidationErrorsUseJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(models.CreateAccountParams{Username: "ab", Email: "nope"})
	require.Error(t, err)

	verrs, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]bool)
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["username"])
	assert.True(t, fields["email"])
}
