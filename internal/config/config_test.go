package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPPort)
	assert.Equal(t, DriverSQLite, cfg.DBConfig.Driver)
	assert.Equal(t, "users.db", cfg.DBConfig.Path)
	assert.Equal(t, "bcrypt", cfg.HashScheme)
	assert.Equal(t, 15*time.Second, cfg.Market.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.Secure)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.env")
	content := "DB_DRIVER=postgres\nDB_NAME=coins\nMARKET_API_TIMEOUT=3s\nCORS_ORIGINS=http://a.example, http://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("DB_NAME", "from-env")
	t.Setenv("SESSION_SECURE", "true")
	t.Cleanup(func() {
		for _, k := range []string{"DB_DRIVER", "MARKET_API_TIMEOUT", "CORS_ORIGINS"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.DBConfig.Driver)
	assert.Equal(t, "from-env", cfg.DBConfig.DBName)
	assert.Equal(t, 3*time.Second, cfg.Market.Timeout)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.Session.Secure)
	assert.Contains(t, cfg.DBConfig.ConnectionString(), "dbname=from-env")
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestLoadConfig_RejectsUnknownHashScheme(t *testing.T) {
	t.Setenv("HASH_SCHEME", "md5")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HASH_SCHEME")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	sqlite := DBConfig{Driver: DriverSQLite, Path: "/tmp/users.db"}
	assert.Equal(t, "file:/tmp/users.db?_pragma=busy_timeout(5000)", sqlite.ConnectionString())

	pg := DBConfig{Driver: DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", DBName: "d"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=d sslmode=disable", pg.ConnectionString())
}

func TestGetDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getDuration("SOME_TIMEOUT", time.Minute))
}
