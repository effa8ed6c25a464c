package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/sessionauth"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Create inserts a user without a session.
func (s *Storage) Create(ctx context.Context, user sessionauth.UserRecord) error {
	const op = "storage.postgres.Create"

	query := `
		INSERT INTO users(email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`

	_, err := s.db.Exec(ctx, query, string(user.Email), user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, sessionauth.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// FindByIdentity loads a user with its profile.
func (s *Storage) FindByIdentity(ctx context.Context, id sessionauth.Identity) (sessionauth.UserRecord, error) {
	const op = "storage.postgres.FindByIdentity"

	query := `
		SELECT email, password_hash, first_name, last_name, address, dob, created_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(s.db.QueryRow(ctx, query, string(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, sessionauth.ErrUserNotFound)
		}
		return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile overwrites the profile columns and returns the updated user.
func (s *Storage) UpdateProfile(ctx context.Context, id sessionauth.Identity, p sessionauth.ProfileUpdate) (sessionauth.UserRecord, error) {
	const op = "storage.postgres.UpdateProfile"

	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, address = $4, dob = $5, updated_at = now()
		WHERE email = $1
		RETURNING email, password_hash, first_name, last_name, address, dob, created_at
	`

	user, err := scanUser(s.db.QueryRow(ctx, query, string(id), p.FirstName, p.LastName, p.Address, p.DOB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, sessionauth.ErrUserNotFound)
		}
		return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (sessionauth.UserRecord, error) {
	var (
		u     sessionauth.UserRecord
		email string
	)
	err := row.Scan(&email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Address, &u.DOB, &u.CreatedAt)
	u.Email = sessionauth.Identity(email)
	return u, err
}
