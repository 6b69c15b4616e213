package database

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// startPostgres boots a throwaway server or skips the test when it cannot
func startPostgres(t *testing.T) Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping embedded postgres in short mode")
	}

	cfg := Config{
		Host:     "127.0.0.1",
		Port:     freePort(t),
		User:     "devdash",
		Password: "devdash",
		Database: "devdash_test",
		Timeout:  10 * time.Second,
	}
	dir := t.TempDir()
	pg := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(uint32(cfg.Port)).
		Username(cfg.User).
		Password(cfg.Password).
		Database(cfg.Database).
		RuntimePath(filepath.Join(dir, "runtime")).
		DataPath(filepath.Join(dir, "data")).
		StartTimeout(45 * time.Second).
		Logger(io.Discard))
	if err := pg.Start(); err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	t.Cleanup(func() { _ = pg.Stop() })
	return cfg
}

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", User: "app", Password: "p@ss word", Database: "dash"}
	u := cfg.URL()

	assert.Contains(t, u, "postgres://app:p%40ss%20word@db:5432/dash")
	assert.Contains(t, u, "sslmode=disable")
	assert.Contains(t, u, "connect_timeout=5")
}

func TestNewDBAndMigrate(t *testing.T) {
	cfg := startPostgres(t)

	db, err := NewDB(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.HealthCheck(ctx))

	require.NoError(t, db.Migrate(ctx, `CREATE TABLE IF NOT EXISTS migrate_check (id INT PRIMARY KEY)`))
	require.NoError(t, db.Migrate(ctx, `CREATE TABLE IF NOT EXISTS migrate_check (id INT PRIMARY KEY)`))

	err = db.Migrate(ctx, `CREATE TABLE broken (`)
	assert.Error(t, err)
}

func TestNewPGXPool(t *testing.T) {
	cfg := startPostgres(t)
	cfg.MaxOpenConns = 4

	pool, err := NewPGXPool(cfg)
	require.NoError(t, err)
	defer pool.Close()

	var one int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
	assert.Equal(t, int32(4), pool.Config().MaxConns)
}

func TestNewDBUnreachable(t *testing.T) {
	_, err := NewDB(Config{Host: "127.0.0.1", Port: freePort(t), User: "x", Database: "x", Timeout: time.Second})
	assert.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "failed to ping database")
}
