package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, password_hash, display_name, bio, role, active,
	last_login_at, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		bio         sql.NullString
		role        string
		active      int
		lastLoginAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&bio,
		&role,
		&active,
		&lastLoginAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Role = domain.Role(role)
	u.Active = active != 0
	if bio.Valid {
		u.Bio = bio.String
	}

	if lastLogin, err := parseNullableTime(lastLoginAt); err != nil {
		return nil, err
	} else if lastLogin != nil {
		u.LastLoginAt = *lastLogin
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// nullLoginTime stores the zero time as NULL.
func nullLoginTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

// CreateUser inserts a new user into the database.
// Returns store.ErrAlreadyExists on duplicate email.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	active := 0
	if u.Active {
		active = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, display_name, bio, role, active,
			last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		nullString(u.Bio),
		string(u.Role),
		active,
		nullLoginTime(u.LastLoginAt),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser persists changes to an existing user.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	active := 0
	if u.Active {
		active = 1
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, password_hash = ?, display_name = ?, bio = ?, role = ?,
			active = ?, last_login_at = ?, updated_at = ?
		WHERE id = ?`,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
		nullString(u.Bio),
		string(u.Role),
		active,
		nullLoginTime(u.LastLoginAt),
		formatTime(u.UpdatedAt),
		u.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
