package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"notekeep/models"
)

// AccountRepository maps the accounts table to models.Account.
type AccountRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewAccountRepository(db *DB, logger *slog.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

var accountOrderColumns = map[string]bool{
	"username":     true,
	"email":        true,
	"role":         true,
	"created_at":   true,
	"updated_at":   true,
	"last_seen_at": true,
}

var accountCountColumns = map[string]bool{
	"username":     true,
	"email":        true,
	"display_name": true,
	"role":         true,
	"suspended":    true,
}

func (r *AccountRepository) FindByID(id string) (*models.Account, error) {
	return r.findOne("id = ?", id)
}

func (r *AccountRepository) FindByEmail(email string) (*models.Account, error) {
	return r.findOne("email = ?", email)
}

func (r *AccountRepository) FindByUsername(username string) (*models.Account, error) {
	return r.findOne("username = ?", username)
}

func (r *AccountRepository) findOne(cond string, args ...any) (*models.Account, error) {
	row := r.db.QueryRow("SELECT "+accountColumns+" FROM accounts WHERE "+cond, args...)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// FindAll returns one page of accounts plus the total row count,
// computed concurrently from the same predicates.
func (r *AccountRepository) FindAll(opts models.ListOptions) (*models.Page[models.Account], error) {
	opts.Normalize()
	q := newQuery("accounts", accountColumns)
	order := orderColumn(opts.OrderBy, accountOrderColumns, "created_at")
	return runPaged(r.db, q, order, opts.Desc, opts.Limit, opts.Offset, scanAccount)
}

// FindWithFilter composes the optional predicates in a fixed order:
// role equality, suspension flag, then substring search ORed across
// username, email and display name.
func (r *AccountRepository) FindWithFilter(f models.AccountFilter) (*models.Page[models.Account], error) {
	f.Normalize()
	q := newQuery("accounts", accountColumns)
	if f.Role != nil {
		q.where("role = ?", string(*f.Role))
	}
	if f.Suspended != nil {
		q.where("suspended = ?", boolToInt(*f.Suspended))
	}
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q.whereAny(
			[]string{"username LIKE ?", "email LIKE ?", "display_name LIKE ?"},
			needle, needle, needle,
		)
	}
	order := orderColumn(f.OrderBy, accountOrderColumns, "created_at")
	return runPaged(r.db, q, order, f.Desc, f.Limit, f.Offset, scanAccount)
}

// Create inserts a new account and reads it back, so defaulted columns
// come from the store rather than the insert echo.
func (r *AccountRepository) Create(p models.CreateAccountParams) (*models.Account, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	role := p.Role
	if role == "" {
		role = models.RoleUser
	}
	algorithm := p.HashAlgorithm
	if algorithm == "" {
		algorithm = "bcrypt"
	}
	permissions, err := encodeJSON(p.Permissions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode permissions: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO accounts (id, username, email, password_hash, hash_algorithm,
			display_name, role, permissions, suspended, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, id, p.Username, p.Email, p.PasswordHash, algorithm,
		p.DisplayName, string(role), permissions, now, now)
	if err != nil {
		return nil, err
	}

	return r.FindByID(id)
}

// Update applies a partial update, touching only supplied fields. An
// empty update short-circuits to a plain read; any real change
// refreshes updated_at.
func (r *AccountRepository) Update(id string, p models.UpdateAccountParams) (*models.Account, error) {
	if p.IsEmpty() {
		return r.FindByID(id)
	}

	var sets []string
	var args []any
	if p.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *p.Username)
	}
	if p.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *p.Email)
	}
	if p.DisplayName != nil {
		sets = append(sets, "display_name = ?")
		args = append(args, *p.DisplayName)
	}
	if p.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*p.Role))
	}
	if p.Permissions != nil {
		encoded, err := encodeJSON(*p.Permissions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode permissions: %w", err)
		}
		sets = append(sets, "permissions = ?")
		args = append(args, encoded)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	res, err := r.db.Exec("UPDATE accounts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.FindByID(id)
}

// Delete hard-removes the account row. It reports whether a row was
// actually removed; cascades to notes/folders are driven explicitly by
// the caller via DeleteByOwner.
func (r *AccountRepository) Delete(id string) (bool, error) {
	res, err := r.db.Exec("DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of accounts matching an exact-match filter.
// Field names are checked against the column whitelist.
func (r *AccountRepository) Count(filter map[string]any) (int, error) {
	q := newQuery("accounts", accountColumns)
	for field, value := range filter {
		if !accountCountColumns[field] {
			return 0, fmt.Errorf("count: unknown column %q", field)
		}
		if b, ok := value.(bool); ok {
			value = boolToInt(b)
		}
		q.where(field+" = ?", value)
	}
	query, args := q.countSQL()
	var total int
	if err := r.db.QueryRow(query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// HasAdmin reports whether any admin-role account exists.
func (r *AccountRepository) HasAdmin() (bool, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM accounts WHERE role = ?", string(models.RoleAdmin)).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Suspend flags the account with a reason and timestamp. The pair is
// set together with the flag so the suspension invariant always holds.
func (r *AccountRepository) Suspend(id, reason string) (*models.Account, error) {
	now := time.Now().UTC()
	res, err := r.db.Exec(`
		UPDATE accounts SET suspended = 1, suspended_at = ?, suspended_reason = ?, updated_at = ?
		WHERE id = ?
	`, now, reason, now, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.FindByID(id)
}

func (r *AccountRepository) Unsuspend(id string) (*models.Account, error) {
	res, err := r.db.Exec(`
		UPDATE accounts SET suspended = 0, suspended_at = NULL, suspended_reason = NULL, updated_at = ?
		WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.FindByID(id)
}

// TouchLastLogin updates the login activity timestamp.
func (r *AccountRepository) TouchLastLogin(id string) error {
	_, err := r.db.Exec("UPDATE accounts SET last_login_at = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

// TouchLastSeen updates the general activity timestamp.
func (r *AccountRepository) TouchLastSeen(id string) error {
	_, err := r.db.Exec("UPDATE accounts SET last_seen_at = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

// TouchNotesUpdated updates the notes-touched activity timestamp.
func (r *AccountRepository) TouchNotesUpdated(id string) error {
	_, err := r.db.Exec("UPDATE accounts SET notes_updated_at = ? WHERE id = ?", time.Now().UTC(), id)
	return err
}

// Upsert inserts the account if absent and updates it otherwise.
// Repeating the identical call produces the same terminal row state.
func (r *AccountRepository) Upsert(item models.AccountSyncItem) (*models.Account, error) {
	existing, err := r.FindByID(item.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.Update(item.ID, item.UpdateAccountParams)
	}

	if item.Username == nil || item.Email == nil {
		return nil, fmt.Errorf("account %s: username and email are required on insert", item.ID)
	}

	now := time.Now().UTC()
	displayName := ""
	if item.DisplayName != nil {
		displayName = *item.DisplayName
	}
	role := models.RoleUser
	if item.Role != nil {
		role = *item.Role
	}
	permissions := "[]"
	if item.Permissions != nil {
		if permissions, err = encodeJSON(*item.Permissions); err != nil {
			return nil, fmt.Errorf("failed to encode permissions: %w", err)
		}
	}

	_, err = r.db.Exec(`
		INSERT INTO accounts (id, username, email, password_hash, hash_algorithm,
			display_name, role, permissions, suspended, created_at, updated_at)
		VALUES (?, ?, ?, '', 'bcrypt', ?, ?, ?, 0, ?, ?)
	`, item.ID, *item.Username, *item.Email, displayName, string(role), permissions, now, now)
	if err != nil {
		return nil, err
	}
	return r.FindByID(item.ID)
}

// BulkUpsert applies Upsert to every item independently and
// concurrently. Failures are aggregated, never propagated; a bad record
// cannot block the rest of the batch.
func (r *AccountRepository) BulkUpsert(items []models.AccountSyncItem) SyncResult {
	result := fanOut(items,
		func(it models.AccountSyncItem) string { return it.ID },
		func(it models.AccountSyncItem) error {
			_, err := r.Upsert(it)
			return err
		})
	for _, f := range result.Failures {
		r.logger.Warn("account sync item failed", "id", f.ID, "error", f.Error)
	}
	return result
}
