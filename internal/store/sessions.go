package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is a single authenticated API session. Expiry is computed from
// session.timeout_minutes at creation and extended by Touch.
type Session struct {
	ID         string
	Token      string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// ErrSessionNotFound indicates no session exists for the given token.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired indicates the session exists but its expiry has passed.
var ErrSessionExpired = errors.New("session expired")

// Expired reports whether the session's expiry precedes now.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// CreateSession inserts a new session whose expiry is the configured
// timeout from now.
func (s *Store) CreateSession(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	session := Session{
		ID:         uuid.NewString(),
		Token:      uuid.NewString(),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.sessionTimeout),
	}

	_, err := s.execWithRetry(ctx,
		`INSERT INTO sessions (id, token, created_at, last_seen_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.Token,
		session.CreatedAt.Format(time.RFC3339Nano),
		session.LastSeenAt.Format(time.RFC3339Nano),
		session.ExpiresAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return &session, nil
}

// GetSession returns the session for the token, or ErrSessionNotFound /
// ErrSessionExpired.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, token, created_at, last_seen_at, expires_at FROM sessions WHERE token = ?`, token)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	if session.Expired(time.Now().UTC()) {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// TouchSession marks the session as seen now and slides its expiry
// forward by the configured timeout.
func (s *Store) TouchSession(ctx context.Context, token string) error {
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE sessions SET last_seen_at = ?, expires_at = ? WHERE token = ?`,
		now.Format(time.RFC3339Nano),
		now.Add(s.sessionTimeout).Format(time.RFC3339Nano),
		token,
	)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session rows: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes the session for the token if it exists.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneExpired removes all sessions whose expiry has passed and returns
// how many were removed.
func (s *Store) PruneExpired(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sessions rows: %w", err)
	}
	return affected, nil
}

// Stats summarizes the stored sessions at a point in time.
type Stats struct {
	Total   int
	Active  int
	Expired int
}

// Stats counts stored sessions, split by whether their expiry has passed.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(expires_at < ?), 0) FROM sessions`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	var stats Stats
	if err := row.Scan(&stats.Total, &stats.Expired); err != nil {
		return Stats{}, fmt.Errorf("session stats: %w", err)
	}
	stats.Active = stats.Total - stats.Expired
	return stats, nil
}

// ListSessions returns every stored session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, token, created_at, last_seen_at, expires_at FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, scanErr := scanSession(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan session: %w", scanErr)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		session                          Session
		createdAt, lastSeenAt, expiresAt string
	)
	if err := row.Scan(&session.ID, &session.Token, &createdAt, &lastSeenAt, &expiresAt); err != nil {
		return nil, err
	}
	var err error
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if session.LastSeenAt, err = time.Parse(time.RFC3339Nano, lastSeenAt); err != nil {
		return nil, fmt.Errorf("parse last_seen_at: %w", err)
	}
	if session.ExpiresAt, err = time.Parse(time.RFC3339Nano, expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	return &session, nil
}
