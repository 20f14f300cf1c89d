// Package factory builds the credential store selected by configuration.
package factory

import (
	"fmt"

	"github.com/Krchnk/gw-crypto-dashboard/internal/config"
	"github.com/Krchnk/gw-crypto-dashboard/internal/passwords"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/postgres"
	"github.com/Krchnk/gw-crypto-dashboard/internal/storages/sqlite"
)

func NewStorage(cfg config.Config) (storages.Storage, error) {
	hasher, err := passwords.NewHasher(cfg.HashScheme)
	if err != nil {
		return nil, err
	}

	// a failed constructor must not leak a typed nil into the interface
	switch cfg.DBConfig.Driver {
	case config.DriverSQLite:
		s, err := sqlite.NewStorage(cfg.DBConfig, hasher)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.NewStorage(cfg.DBConfig, hasher)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBConfig.Driver)
	}
}
