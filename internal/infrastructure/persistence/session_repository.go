package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/freightlens/backend/pkg/constants"
)

// Session is a stored login session row. The JWT's JTI is the primary key.
type Session struct {
	ID           string
	UserID       string
	Token        string
	ExpiresAt    time.Time
	IsRevoked    bool
	LastActivity time.Time
}

// SessionRepository handles database operations for login sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Insert creates a new session row.
func (r *SessionRepository) Insert(ctx context.Context, s *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, token, expires_at, is_revoked, last_activity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		constants.TableSession)

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Token, s.ExpiresAt, s.IsRevoked, s.LastActivity)
	return err
}

// Get retrieves a session by its ID. Returns nil without error when missing.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, token, expires_at, is_revoked, last_activity
		FROM %s WHERE id = ? LIMIT 1`,
		constants.TableSession)

	var s Session
	var expiresRaw, lastActivityRaw interface{}

	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.ID, &s.UserID, &s.Token, &expiresRaw, &s.IsRevoked, &lastActivityRaw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.ExpiresAt = parseTime(expiresRaw)
	s.LastActivity = parseTime(lastActivityRaw)
	return &s, nil
}

// Revoke marks a session as revoked.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET is_revoked = 1 WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// Touch updates the last activity timestamp.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string) error {
	query := fmt.Sprintf("UPDATE %s SET last_activity = NOW() WHERE id = ?", constants.TableSession)
	_, err := r.db.ExecContext(ctx, query, sessionID)
	return err
}

// PurgeExpired deletes sessions past their expiry. Returns rows removed.
func (r *SessionRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < NOW()", constants.TableSession)
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
