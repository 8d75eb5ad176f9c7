package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"authapp/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBufferedLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func sqlAndRows() (string, int64) {
	return `SELECT * FROM "users" WHERE email = 'ada@example.com'`, 1
}

func TestGormSlogLogger_Level(t *testing.T) {
	var buf bytes.Buffer

	l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{})
	assert.Equal(t, logger.Warn, l.(*gormSlogLogger).level)

	debugCfg := &config.Config{}
	debugCfg.Env.Debug = true
	l = newGormSlogLogger(newBufferedLogger(&buf), debugCfg)
	assert.Equal(t, logger.Info, l.(*gormSlogLogger).level)
}

func TestGormSlogLogger_Trace(t *testing.T) {
	t.Run("record not found is ignored", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{})

		l.Trace(context.Background(), time.Now(), sqlAndRows, gorm.ErrRecordNotFound)

		assert.Empty(t, buf.String())
	})

	t.Run("query error is logged", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{})

		l.Trace(context.Background(), time.Now(), sqlAndRows, errors.New("connection reset"))

		assert.Contains(t, buf.String(), "Credential store query failed")
		assert.Contains(t, buf.String(), "connection reset")
	})

	t.Run("slow query is logged", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{})

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlAndRows, nil)

		assert.Contains(t, buf.String(), "Credential store slow query")
	})

	t.Run("fast query is quiet below info", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{})

		l.Trace(context.Background(), time.Now(), sqlAndRows, nil)

		assert.Empty(t, buf.String())
	})

	t.Run("silent mode", func(t *testing.T) {
		var buf bytes.Buffer
		l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{}).LogMode(logger.Silent)

		l.Trace(context.Background(), time.Now(), sqlAndRows, errors.New("boom"))

		assert.Empty(t, buf.String())
	})
}

func TestGormSlogLogger_DropsBoundValues(t *testing.T) {
	var buf bytes.Buffer
	l := newGormSlogLogger(newBufferedLogger(&buf), &config.Config{}).(*gormSlogLogger)

	sql, vars := l.ParamsFilter(context.Background(),
		`INSERT INTO "users" ("email","password") VALUES ($1,$2)`,
		"ada@example.com", "$2a$10$digest",
	)

	assert.Equal(t, `INSERT INTO "users" ("email","password") VALUES ($1,$2)`, sql)
	assert.Nil(t, vars)
}

func TestGormSlogLogger_InfoLevelQueries(t *testing.T) {
	var buf bytes.Buffer
	debugCfg := &config.Config{}
	debugCfg.Env.Debug = true
	l := newGormSlogLogger(newBufferedLogger(&buf), debugCfg)

	l.Trace(context.Background(), time.Now(), sqlAndRows, nil)
	l.Info(context.Background(), "opened %d conns", 2)

	assert.Contains(t, buf.String(), "Credential store query")
	assert.Contains(t, buf.String(), "opened 2 conns")
}
