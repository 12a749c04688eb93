package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dhakanet/ispconsole/internal/domain"
)

// Store persists sessions in Postgres.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore creates a session store backed by the given database.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts a new session and returns it. The cookie token is a
// random UUID; the platform tokens are stored verbatim.
func (s *Store) Create(ctx context.Context, username, role, access, refresh string) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		Token:        uuid.NewString(),
		Username:     username,
		Role:         role,
		AccessToken:  access,
		RefreshToken: refresh,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresAt:    now.Add(Duration),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, username, role, access_token, refresh_token, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.Token, sess.Username, sess.Role, sess.AccessToken, sess.RefreshToken,
		sess.CreatedAt, sess.UpdatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, domain.Internal(err, "session.create", "failed to create session")
	}

	if exp, err := AccessExpiry(access); err == nil {
		s.logger.Debug("session created", "username", username, "access_expires", exp)
	}
	return sess, nil
}

// Get loads a session by cookie token. Expired rows are treated as missing.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	sess := &Session{}
	err := s.db.QueryRowContext(ctx, `
		SELECT token, username, role, access_token, refresh_token, created_at, updated_at, expires_at
		FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.Username, &sess.Role, &sess.AccessToken, &sess.RefreshToken,
		&sess.CreatedAt, &sess.UpdatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.Unauthorized("session.get", "session not found")
	}
	if err != nil {
		return nil, domain.Internal(err, "session.get", "failed to load session")
	}
	if sess.Expired() {
		_ = s.Delete(ctx, token)
		return nil, domain.Unauthorized("session.get", "session expired")
	}
	return sess, nil
}

// UpdateTokens replaces the platform token pair after a refresh. An empty
// refresh token means the platform did not rotate it; keep the old one.
func (s *Store) UpdateTokens(ctx context.Context, token, access, refresh string) error {
	var err error
	if refresh == "" {
		_, err = s.db.ExecContext(ctx, `
			UPDATE sessions SET access_token = $2, updated_at = now() WHERE token = $1`,
			token, access)
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE sessions SET access_token = $2, refresh_token = $3, updated_at = now() WHERE token = $1`,
			token, access, refresh)
	}
	if err != nil {
		return domain.Internal(err, "session.update_tokens", "failed to update session tokens")
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return domain.Internal(err, "session.delete", "failed to delete session")
	}
	return nil
}

// DeleteExpired clears lapsed rows. Called periodically by the poller.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, domain.Internal(err, "session.delete_expired", "failed to clear expired sessions")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
