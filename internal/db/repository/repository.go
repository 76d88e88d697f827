// Package repository holds typed Postgres access for the API service.
// Queries are handwritten SQL executed through pgx; each repository takes
// the narrow DBTX interface so tests can substitute a stub or a
// transaction can stand in for the pool.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the slice of pgxpool.Pool (or pgx.Tx) the repositories use.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// User is a row of the users table.
type User struct {
	ID           uuid.UUID
	Email        *string
	PasswordHash *string
	DisplayName  string
	Role         string
	GoogleID     *string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// CreateUserParams carries the fields of a new account. Nil email/hash
// are allowed for OAuth-only users.
type CreateUserParams struct {
	Email        *string
	PasswordHash *string
	DisplayName  string
	Role         string
	GoogleID     *string
}

// AttemptRecord is one submitted answer headed for the attempts table.
type AttemptRecord struct {
	UserID     uuid.UUID
	RootID     *int64
	WordRootID *int64
	ThemeID    *int64
	IsCorrect  bool
	UserAnswer string
}
