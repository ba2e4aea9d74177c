package models

// ListOptions controls pagination and ordering for list queries. OrderBy
// is checked against each repository's column whitelist before it is
// interpolated into SQL.
type ListOptions struct {
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	OrderBy string `json:"order_by"`
	Desc    bool   `json:"desc"`
}

// Normalize clamps pagination to sane bounds.
func (o *ListOptions) Normalize() {
	if o.Limit < 1 || o.Limit > 100 {
		o.Limit = 30
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// Page is one page of results plus the total count of rows matching the
// same filter, regardless of limit/offset.
type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NoteFilter selects notes for filtered listing. Zero values mean "no
// constraint" except for the deleted-state pair: by default only
// non-deleted notes are returned.
type NoteFilter struct {
	OwnerID        string
	IncludeDeleted bool
	OnlyDeleted    bool
	// FolderID is tri-state: absent means any folder, explicit null
	// means notes outside any folder, a value means that folder only.
	FolderID   Field[string]
	Visibility *Visibility
	// Search matches as a substring across title and content.
	Search string
	// Tags matches notes containing at least one of the given tags.
	Tags []string

	ListOptions
}

// AccountFilter selects accounts for filtered listing.
type AccountFilter struct {
	Role      *Role
	Suspended *bool
	// Search matches as a substring across username, email and
	// display name.
	Search string

	ListOptions
}

// FolderFilter selects folders for filtered listing.
type FolderFilter struct {
	OwnerID        string
	IncludeDeleted bool
	OnlyDeleted    bool

	ListOptions
}
