package postgres

import (
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"authapp/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNew_RequiresPostgresConfig(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	_, err := New(Params{
		Lifecycle: lc,
		Config:    &config.Config{},
		Logger:    slog.New(slog.DiscardHandler),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres configuration is required")
}

func TestDiffPoolStats(t *testing.T) {
	prev := sql.DBStats{WaitCount: 3, WaitDuration: 10 * time.Millisecond}

	t.Run("no new waits", func(t *testing.T) {
		_, ok := diffPoolStats(prev, prev)
		assert.False(t, ok)
	})

	t.Run("short waits log at debug", func(t *testing.T) {
		cur := sql.DBStats{WaitCount: 5, WaitDuration: 20 * time.Millisecond, InUse: 4, MaxOpenConnections: 4}

		wait, ok := diffPoolStats(prev, cur)
		require.True(t, ok)
		assert.Equal(t, int64(2), wait.count)
		assert.Equal(t, 10*time.Millisecond, wait.duration)
		assert.Equal(t, slog.LevelDebug, wait.level())
		assert.Len(t, wait.attrs(), 5)
	})

	t.Run("long waits log at warn", func(t *testing.T) {
		cur := sql.DBStats{WaitCount: 4, WaitDuration: 10*time.Millisecond + dbPoolWarnDurationThreshold}

		wait, ok := diffPoolStats(prev, cur)
		require.True(t, ok)
		assert.Equal(t, slog.LevelWarn, wait.level())
	})
}
