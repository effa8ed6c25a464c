package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/sessionauth/session"
	"github.com/jackc/pgx/v5"
)

// The refresh slot is the users.refresh_token column. Writes to an identity without a
// user row fail with session.ErrIdentityNotFound.

func (s *Storage) Get(ctx context.Context, identity string) (string, bool, error) {
	const op = "storage.postgres.Get"

	var token *string
	err := s.db.QueryRow(ctx, `SELECT refresh_token FROM users WHERE email = $1`, identity).Scan(&token)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w: %v", op, session.ErrUnavailable, err)
	case token == nil || *token == "":
		return "", false, nil
	}
	return *token, true, nil
}

func (s *Storage) SetRefreshToken(ctx context.Context, identity, token string) error {
	const op = "storage.postgres.SetRefreshToken"

	tag, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = $2, updated_at = now() WHERE email = $1`, identity, token)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, session.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, session.ErrIdentityNotFound)
	}
	return nil
}

func (s *Storage) Matches(ctx context.Context, identity, presented string) (bool, error) {
	if presented == "" {
		return false, nil
	}
	stored, ok, err := s.Get(ctx, identity)
	if err != nil || !ok {
		return false, err
	}
	return session.Equal(stored, presented), nil
}

func (s *Storage) Clear(ctx context.Context, identity string) error {
	const op = "storage.postgres.Clear"

	_, err := s.db.Exec(ctx, `UPDATE users SET refresh_token = NULL, updated_at = now() WHERE email = $1`, identity)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, session.ErrUnavailable, err)
	}
	return nil
}

// Rotate relies on the row lock taken by the conditional UPDATE: of two concurrent
// rotations with the same presented token, the second re-evaluates the WHERE clause
// after the first commits and matches nothing.
// The WHERE comparison runs in the database and is not constant-time.
func (s *Storage) Rotate(ctx context.Context, identity, presented, next string) error {
	const op = "storage.postgres.Rotate"

	if presented == "" {
		return fmt.Errorf("%s: %w", op, session.ErrMismatch)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE users
		SET refresh_token = $3, updated_at = now()
		WHERE email = $1 AND refresh_token = $2
	`, identity, presented, next)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, session.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, session.ErrMismatch)
	}
	return nil
}
