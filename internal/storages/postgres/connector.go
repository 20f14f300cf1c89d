package postgres

import (
	"context"
	"time"

	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Storage holds a pooled connection for the lifetime of the process.
type Storage struct {
	db     *sqlx.DB
	hasher passwords.Hasher
}

func NewStorage(cfg config.DBConfig, hasher passwords.Hasher) (*Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.ConnectionString())
	if err != nil {
		logrus.WithError(err).Error("failed to open database connection")
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(30 * time.Second)
	db.SetConnMaxLifetime(5 * time.Minute)

	logrus.Info("database connection established")
	return newStorage(db, hasher), nil
}

func newStorage(db *sqlx.DB, hasher passwords.Hasher) *Storage {
	return &Storage{db: db, hasher: hasher}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
