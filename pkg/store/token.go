package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"github.com/floe-dev/floectl/pkg/domain"
)

// ErrNotSignedIn is returned when no usable token is stored
var ErrNotSignedIn = errors.New("not signed in, run floectl login")

// tokenSQL maps the auth_token row
type tokenSQL struct {
	AccessToken  string       `db:"access_token"`
	RefreshToken string       `db:"refresh_token"`
	ExpiresAt    sql.NullTime `db:"expires_at"`
}

// SaveToken stores the sign-in result, replacing any previous token
func (s *Store) SaveToken(ctx context.Context, token domain.Token) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO auth_token (id, access_token, refresh_token, expires_at, updated_at)
			VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				access_token = excluded.access_token,
				refresh_token = excluded.refresh_token,
				expires_at = excluded.expires_at,
				updated_at = CURRENT_TIMESTAMP
		`
		var expires any
		if !token.ExpiresAt.IsZero() {
			expires = token.ExpiresAt
		}
		_, err := s.db.ExecContext(ctx, query, token.AccessToken, token.RefreshToken, expires)
		if err != nil && !isLockError(err) {
			return &criticalError{err: fmt.Errorf("save token: %w", err)}
		}
		return err
	})
}

// Token returns the stored token material, ErrNotSignedIn when absent
func (s *Store) Token(ctx context.Context) (*domain.Token, error) {
	var row tokenSQL
	err := s.db.GetContext(ctx, &row, "SELECT access_token, refresh_token, expires_at FROM auth_token WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	token := &domain.Token{AccessToken: row.AccessToken, RefreshToken: row.RefreshToken}
	if row.ExpiresAt.Valid {
		token.ExpiresAt = row.ExpiresAt.Time
	}
	return token, nil
}

// ClearToken signs the user out locally
func (s *Store) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth_token WHERE id = 1"); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// AccessToken implements api.TokenSource over the stored token. Expired
// or missing tokens come back as ErrNotSignedIn so commands can tell the
// user to sign in again.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return "", err
	}
	if !token.Valid() {
		return "", ErrNotSignedIn
	}
	return token.AccessToken, nil
}
