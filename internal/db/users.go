package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, password_hash, full_name, plan,
	resume_yaml, resume_filename, resume_uploaded_at, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Plan,
		&u.ResumeYAML, &u.ResumeFilename, &u.ResumeUploadedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new account. Returns ErrDuplicateEmail when the
// email is already registered.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash, fullName, plan string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, plan)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, passwordHash, fullName, plan,
	)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail looks an account up by email. Returns ErrNotFound when no
// account exists.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID looks an account up by ID. Returns ErrNotFound when no
// account exists.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// SetResume replaces the user's stored resume.
func (db *DB) SetResume(ctx context.Context, userID uuid.UUID, resumeYAML, filename string, uploadedAt time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE users
		 SET resume_yaml = $1, resume_filename = $2, resume_uploaded_at = $3
		 WHERE id = $4`,
		resumeYAML, filename, uploadedAt, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to store resume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
