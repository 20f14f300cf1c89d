package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/migrations"
	"github.com/sirupsen/logrus"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func (s *Storage) Initialize(ctx context.Context) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		if err := migrations.Up(ctx, db, migrations.DialectSQLite); err != nil {
			return err
		}
		logrus.Info("users table ready")
		return nil
	})
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

	return s.withDB(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (email, password_hash) VALUES (?, ?)`,
			identifier, hash)
		if err != nil {
			if isUniqueViolation(err) {
				logrus.WithField("email", identifier).Warn("email already registered")
				return storages.ErrIdentifierExists
			}
			logrus.WithField("email", identifier).WithError(err).Error("failed to register user")
			return err
		}

		logrus.WithField("email", identifier).Info("user registered in database")
		return nil
	})
}

func (s *Storage) Verify(ctx context.Context, identifier, password string) (bool, error) {
	var stored string
	err := s.withDB(ctx, func(db *sql.DB) error {
		return db.QueryRowContext(ctx,
			`SELECT password_hash FROM users WHERE email = ?`,
			identifier).Scan(&stored)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logrus.WithField("email", identifier).Info("user not found")
			return false, nil
		}
		logrus.WithField("email", identifier).WithError(err).Error("failed to get user")
		return false, err
	}

	return passwords.Compare(stored, password), nil
}

func (s *Storage) ListIdentifiers(ctx context.Context) ([]string, error) {
	var identifiers []string
	err := s.withDB(ctx, func(db *sql.DB) error {
		rows, err := db.QueryContext(ctx, `SELECT email FROM users`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var email string
			if err := rows.Scan(&email); err != nil {
				return err
			}
			identifiers = append(identifiers, email)
		}
		return rows.Err()
	})
	if err != nil {
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

	return s.withDB(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
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
	})
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedrv.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}
