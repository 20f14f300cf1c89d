package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Storage keeps no handle between calls: every operation opens the database
// file and closes it before returning.
type Storage struct {
	dsn    string
	hasher passwords.Hasher
}

func NewStorage(cfg config.DBConfig, hasher passwords.Hasher) (*Storage, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite: database path is empty")
	}

	s := &Storage{dsn: cfg.ConnectionString(), hasher: hasher}
	if err := s.Ping(context.Background()); err != nil {
		logrus.WithError(err).Error("failed to ping database")
		return nil, err
	}

	logrus.WithField("path", cfg.Path).Info("sqlite database reachable")
	return s, nil
}

func (s *Storage) withDB(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	return fn(db)
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.withDB(ctx, func(db *sql.DB) error {
		return db.PingContext(ctx)
	})
}

func (s *Storage) Close() error {
	return nil
}
