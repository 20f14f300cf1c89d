package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/migrations"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

func (s *Storage) Initialize(ctx context.Context) error {
	if err := migrations.Up(ctx, s.db.DB, migrations.DialectPostgres); err != nil {
		return err
	}
	logrus.Info("users table ready")
	return nil
}

func (s *Storage) Register(ctx context.Context, identifier, password string) error {
	if identifier == "" {
		return storages.ErrEmptyIdentifier
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		return err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO users (email, password_hash, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())`,
		identifier, hash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			logrus.WithField("email", identifier).Warn("email already registered")
			return storages.ErrIdentifierExists
		}
		logrus.WithField("email", identifier).WithError(err).Error("failed to register user")
		return err
	}

	logrus.WithField("email", identifier).Info("user registered in database")
	return nil
}

func (s *Storage) Verify(ctx context.Context, identifier, password string) (bool, error) {
	var user storages.User
	err := s.db.GetContext(ctx, &user, `
        SELECT id, email, password_hash, created_at, updated_at
        FROM users
        WHERE email = $1`,
		identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("email", identifier).Info("user not found")
			return false, nil
		}
		logrus.WithField("email", identifier).WithError(err).Error("failed to get user")
		return false, err
	}

	return passwords.Compare(user.PasswordHash, password), nil
}

func (s *Storage) ListIdentifiers(ctx context.Context) ([]string, error) {
	var identifiers []string
	if err := s.db.SelectContext(ctx, &identifiers, `SELECT email FROM users`); err != nil {
		logrus.WithError(err).Error("failed to list users")
		return nil, err
	}
	return identifiers, nil
}

func (s *Storage) UpdatePassword(ctx context.Context, identifier, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		logrus.WithError(err).Error("failed to hash password")
		return err
	}

	res, err := s.db.ExecContext(ctx, `
        UPDATE users
        SET password_hash = $1, updated_at = NOW()
        WHERE email = $2`,
		hash, identifier)
	if err != nil {
		logrus.WithField("email", identifier).WithError(err).Error("failed to update password")
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		logrus.WithField("email", identifier).Warn("password update for unknown user")
		return storages.ErrUserNotFound
	}

	logrus.WithField("email", identifier).Info("password updated in database")
	return nil
}
