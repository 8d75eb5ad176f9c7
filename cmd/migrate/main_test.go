package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"authapp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Storage = config.StorageConfig{
		Driver:     config.StorageDriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "migrate.db"),
	}

	return cfg
}

func TestRun_UpStatusDown(t *testing.T) {
	cfg := newSQLiteConfig(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, "up", &out))
	assert.Contains(t, out.String(), "applied")
	assert.Contains(t, out.String(), "00001_create_users.sql")

	out.Reset()
	require.NoError(t, run(ctx, cfg, "up", &out))
	assert.Contains(t, out.String(), "no pending migrations")

	out.Reset()
	require.NoError(t, run(ctx, cfg, "status", &out))
	assert.Contains(t, out.String(), "applied")
	assert.Contains(t, out.String(), "00001_create_users.sql")

	out.Reset()
	require.NoError(t, run(ctx, cfg, "down", &out))
	assert.Contains(t, out.String(), "rolled back")
	assert.Contains(t, out.String(), "00001_create_users.sql")

	out.Reset()
	require.NoError(t, run(ctx, cfg, "status", &out))
	assert.Contains(t, out.String(), "pending")
}

func TestRun_UnknownSubcommand(t *testing.T) {
	err := run(context.Background(), newSQLiteConfig(t), "sideways", &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown subcommand: sideways")
}

func TestRun_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "mongo"

	err := run(context.Background(), cfg, "up", &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}
