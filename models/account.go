package models

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

type Account struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	HashAlgorithm   string     `json:"-"`
	DisplayName     string     `json:"display_name"`
	Role            Role       `json:"role"`
	Permissions     []string   `json:"permissions"`
	Suspended       bool       `json:"suspended"`
	SuspendedAt     *time.Time `json:"suspended_at,omitempty"`
	SuspendedReason string     `json:"suspended_reason,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	LastSeenAt      *time.Time `json:"last_seen_at,omitempty"`
	NotesUpdatedAt  *time.Time `json:"notes_updated_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateAccountParams carries the fields needed to create an account.
// PasswordHash/HashAlgorithm are produced by the auth package, never
// accepted raw from clients.
type CreateAccountParams struct {
	Username      string   `json:"username" validate:"required,min=3,max=64"`
	Email         string   `json:"email" validate:"required,email"`
	PasswordHash  string   `json:"-"`
	HashAlgorithm string   `json:"-"`
	DisplayName   string   `json:"display_name" validate:"max=128"`
	Role          Role     `json:"role" validate:"omitempty,role"`
	Permissions   []string `json:"permissions"`
}

// UpdateAccountParams is a partial update; nil fields are left untouched.
type UpdateAccountParams struct {
	Username    *string   `json:"username" validate:"omitempty,min=3,max=64"`
	Email       *string   `json:"email" validate:"omitempty,email"`
	DisplayName *string   `json:"display_name" validate:"omitempty,max=128"`
	Role        *Role     `json:"role" validate:"omitempty,role"`
	Permissions *[]string `json:"permissions"`
}

// IsEmpty reports whether the update carries no fields at all.
func (p UpdateAccountParams) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.DisplayName == nil &&
		p.Role == nil && p.Permissions == nil
}

// AccountSyncItem is one element of a bulk account synchronization batch.
// On insert, Username and Email are required; everything else falls back
// to documented defaults.
type AccountSyncItem struct {
	ID string `json:"id" validate:"required"`
	UpdateAccountParams
}
