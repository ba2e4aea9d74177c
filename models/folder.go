package models

import "time"

// DefaultFolderColor is used when a folder is created or synced without
// an explicit color.
const DefaultFolderColor = "#808080"

type Folder struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type CreateFolderParams struct {
	OwnerID string `json:"owner_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=128"`
	Color   string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateFolderParams is a partial update; nil fields are left untouched.
type UpdateFolderParams struct {
	Name  *string `json:"name" validate:"omitempty,max=128"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// IsEmpty reports whether the update carries no fields at all.
func (p UpdateFolderParams) IsEmpty() bool {
	return p.Name == nil && p.Color == nil
}

// FolderSyncItem is one element of a bulk folder synchronization batch.
type FolderSyncItem struct {
	ID      string `json:"id" validate:"required"`
	OwnerID string `json:"owner_id" validate:"required"`
	UpdateFolderParams
}
