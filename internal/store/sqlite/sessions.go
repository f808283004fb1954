package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// sessionColumns is the ordered list of columns selected in session queries.
// Must match the scan order in scanSession.
const sessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at,
	ip_address, user_agent`

// scanSession scans a sql.Row (or sql.Rows via its Scan method) into a domain.Session.
func scanSession(scanner interface{ Scan(dest ...any) error }) (*domain.Session, error) {
	var s domain.Session

	var (
		expiresAt  string
		createdAt  string
		lastSeenAt string
		ipAddress  sql.NullString
		userAgent  sql.NullString
	)

	err := scanner.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
		&ipAddress,
		&userAgent,
	)
	if err != nil {
		return nil, err
	}

	// Parse timestamps.
	s.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	s.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}

	// Optional string fields.
	if ipAddress.Valid {
		s.IPAddress = ipAddress.String
	}
	if userAgent.Valid {
		s.UserAgent = userAgent.String
	}

	return &s, nil
}

// CreateSession inserts a new session into the database.
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, refresh_token_hash, expires_at, created_at,
			last_seen_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.UserID,
		sess.RefreshTokenHash,
		formatTime(sess.ExpiresAt),
		formatTime(sess.CreatedAt),
		formatTime(sess.LastSeenAt),
		nullString(sess.IPAddress),
		nullString(sess.UserAgent),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetSession retrieves a session by ID.
// Returns store.ErrNotFound if the session does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token hash.
// Returns store.ErrNotFound if no session matches.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, tokenHash)

	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateSession persists changes to an existing session.
// Used for refresh token rotation and last seen timestamps.
func (s *Store) UpdateSession(ctx context.Context, sess *domain.Session) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = ?, expires_at = ?, last_seen_at = ?, ip_address = ?, user_agent = ?
		WHERE id = ?`,
		sess.RefreshTokenHash,
		formatTime(sess.ExpiresAt),
		formatTime(sess.LastSeenAt),
		nullString(sess.IPAddress),
		nullString(sess.UserAgent),
		sess.ID,
	)
	if err != nil {
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

// DeleteSession removes a session by ID.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
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

// DeleteAllUserSessions removes all sessions for a user.
// Used when a password is reset so stolen refresh tokens die with it.
func (s *Store) DeleteAllUserSessions(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes all sessions past their expiry.
// Returns the number of sessions removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, formatTime(time.Now()))
	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
