package storages

import (
	"context"
	"errors"
	"time"
)

var (
	ErrIdentifierExists = errors.New("identifier already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmptyIdentifier  = errors.New("identifier is empty")
)

// Storage is the credential store. Passwords go in as plaintext and are
// hashed before they reach the database.
type Storage interface {
	Initialize(ctx context.Context) error
	Register(ctx context.Context, identifier, password string) error
	Verify(ctx context.Context, identifier, password string) (bool, error)
	ListIdentifiers(ctx context.Context) ([]string, error)
	UpdatePassword(ctx context.Context, identifier, newPassword string) error
	Ping(ctx context.Context) error
	Close() error
}

type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
