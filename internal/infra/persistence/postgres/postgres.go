package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"authapp/config"
	"authapp/internal/domain/lifecycle"
	"authapp/internal/errors"
	"authapp/internal/infra/persistence/migrations"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	dbPoolMonitorInterval       = 5 * time.Second
	dbPoolWarnDurationThreshold = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the GORM client for the credential store. The schema is
// migrated when the application starts.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is required")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Every write is a single INSERT guarded by the unique constraint.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	monitorCtx, cancelMonitor := context.WithCancel(context.Background())

	// Add lifecycle management
	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			if err := migrations.Up(ctx, sqlDB, migrations.DialectPostgres); err != nil {
				return errors.Wrap(err, "failed to migrate PostgreSQL")
			}

			go monitorDBPool(monitorCtx, params.Logger, sqlDB, dbPoolMonitorInterval)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelMonitor()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// poolWait summarizes connection waits between two pool snapshots.
type poolWait struct {
	count    int64
	duration time.Duration
	inUse    int
	maxOpen  int
}

func diffPoolStats(prev, cur sql.DBStats) (poolWait, bool) {
	count := cur.WaitCount - prev.WaitCount
	if count <= 0 {
		return poolWait{}, false
	}

	return poolWait{
		count:    count,
		duration: cur.WaitDuration - prev.WaitDuration,
		inUse:    cur.InUse,
		maxOpen:  cur.MaxOpenConnections,
	}, true
}

func (w poolWait) level() slog.Level {
	if w.duration >= dbPoolWarnDurationThreshold {
		return slog.LevelWarn
	}

	return slog.LevelDebug
}

func (w poolWait) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int64("waits", w.count),
		slog.Duration("waited", w.duration),
		slog.Duration("avgWait", w.duration/time.Duration(w.count)),
		slog.Int("inUseConns", w.inUse),
		slog.Int("maxOpenConns", w.maxOpen),
	}
}

// monitorDBPool logs when credential lookups had to queue for a connection.
func monitorDBPool(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB, interval time.Duration) {
	if logger == nil || sqlDB == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			if wait, ok := diffPoolStats(prev, cur); ok {
				logger.LogAttrs(ctx, wait.level(), "Credential store pool wait", wait.attrs()...)
			}
			prev = cur
		}
	}
}
