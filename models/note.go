package models

import "time"

// Visibility controls who can read a note, independent of ownership.
type Visibility string

const (
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPublic   Visibility = "public"
)

// Valid reports whether v is one of the known visibility levels.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPrivate, VisibilityUnlisted, VisibilityPublic:
		return true
	}
	return false
}

// NoteVersion is a full content snapshot taken at a point in time.
type NoteVersion struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteComment is one authored entry in a note's comment log.
type NoteComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Note struct {
	ID         string        `json:"id"`
	OwnerID    string        `json:"owner_id"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Tags       []string      `json:"tags"`
	Pinned     bool          `json:"pinned"`
	Favorite   bool          `json:"favorite"`
	FolderID   *string       `json:"folder_id"`
	Visibility Visibility    `json:"visibility"`
	Password   string        `json:"-"`
	ShareURL   string        `json:"share_url,omitempty"`
	ShortID    string        `json:"short_id,omitempty"`
	ExpiresAt  *time.Time    `json:"expires_at,omitempty"`
	Views      int64         `json:"views"`
	Versions   []NoteVersion `json:"versions"`
	Comments   []NoteComment `json:"comments"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Soft-delete state. While deleted, folder/pinned/favorite are
	// cleared and the Original* fields hold the pre-delete values so a
	// restore can put the note back where it was.
	IsDeleted        bool       `json:"is_deleted"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	OriginalFolderID *string    `json:"original_folder_id,omitempty"`
	OriginalPinned   *bool      `json:"original_pinned,omitempty"`
	OriginalFavorite *bool      `json:"original_favorite,omitempty"`
}

// CreateNoteParams carries the fields accepted when creating a note.
type CreateNoteParams struct {
	OwnerID    string     `json:"owner_id" validate:"required"`
	Title      string     `json:"title" validate:"max=512"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	Pinned     bool       `json:"pinned"`
	Favorite   bool       `json:"favorite"`
	FolderID   *string    `json:"folder_id"`
	Visibility Visibility `json:"visibility" validate:"omitempty,visibility"`
	Password   string     `json:"password"`
	ShareURL   string     `json:"share_url"`
	ShortID    string     `json:"short_id"`
	ExpiresAt  *time.Time `json:"expires_at"`
}

// UpdateNoteParams is a partial update; nil/absent fields are left
// untouched. FolderID is tri-state: absent keeps the current folder,
// explicit null detaches the note, a value moves it.
type UpdateNoteParams struct {
	Title      *string       `json:"title" validate:"omitempty,max=512"`
	Content    *string       `json:"content"`
	Tags       *[]string     `json:"tags"`
	Pinned     *bool         `json:"pinned"`
	Favorite   *bool         `json:"favorite"`
	FolderID   Field[string] `json:"folder_id"`
	Visibility *Visibility   `json:"visibility" validate:"omitempty,visibility"`
	Password   *string       `json:"password"`
	ShareURL   *string       `json:"share_url"`
	ShortID    *string       `json:"short_id"`
	ExpiresAt  *time.Time    `json:"expires_at"`
}

// IsEmpty reports whether the update carries no fields at all.
func (p UpdateNoteParams) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil &&
		p.Pinned == nil && p.Favorite == nil && !p.FolderID.Present &&
		p.Visibility == nil && p.Password == nil && p.ShareURL == nil &&
		p.ShortID == nil && p.ExpiresAt == nil
}

// NoteSyncItem is one element of a bulk note synchronization batch.
type NoteSyncItem struct {
	ID      string `json:"id" validate:"required"`
	OwnerID string `json:"owner_id" validate:"required"`
	UpdateNoteParams
}
