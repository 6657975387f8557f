package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopclip/backend/internal/domain"
)

const userColumns = `id, name, email, password_hash, website, account_number, is_active, settings, created_at, last_login`

// UserRepository stores accounts
type UserRepository struct {
	db *sql.DB
}

// Create inserts user, assigning an ID and creation time when missing.
// Emails are stored lower-cased; a duplicate returns domain.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	settings, err := json.Marshal(user.Settings)
	if err != nil {
		return fmt.Errorf("users: encode settings: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Website, user.AccountNumber,
		boolToInt(user.IsActive), string(settings), formatTime(user.CreatedAt), formatTime(user.LastLogin),
	)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("users: insert: %w", err)
	}
	return nil
}

// GetByID loads a user or returns domain.ErrUserNotFound
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetByEmail loads a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// Count returns the number of accounts ever created
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("users: count: %w", err)
	}
	return n, nil
}

// Update persists the mutable fields of user
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	settings, err := json.Marshal(user.Settings)
	if err != nil {
		return fmt.Errorf("users: encode settings: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, password_hash = ?, website = ?, is_active = ?, settings = ?, last_login = ?
		 WHERE id = ?`,
		user.Name, user.PasswordHash, user.Website, boolToInt(user.IsActive), string(settings),
		formatTime(user.LastLogin), user.ID,
	)
	if err != nil {
		return fmt.Errorf("users: update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                    domain.User
		active               int
		settings             string
		createdAt, lastLogin string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Website, &u.AccountNumber,
		&active, &settings, &createdAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: scan: %w", err)
	}

	u.IsActive = active != 0
	if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
		return nil, fmt.Errorf("users: decode settings: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("users: created_at: %w", err)
	}
	if u.LastLogin, err = parseTime(lastLogin); err != nil {
		return nil, fmt.Errorf("users: last_login: %w", err)
	}
	return &u, nil
}
