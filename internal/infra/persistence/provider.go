// Package persistence selects and wires the credential store backend.
package persistence

import (
	"context"
	"log/slog"

	"authapp/config"
	"authapp/internal/domain/lifecycle"
	"authapp/internal/domain/repository"
	"authapp/internal/infra/persistence/postgres"
	"authapp/internal/infra/persistence/sqlite"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// RepositoryParams holds dependencies for the AccountRepository, injected by Fx
type RepositoryParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewAccountRepository creates the AccountRepository for the configured storage driver
func NewAccountRepository(params RepositoryParams) (repository.AccountRepository, error) {
	cfg := params.Config.Storage
	logger := params.Logger

	switch cfg.Driver {
	case config.StorageDriverPostgres:
		logger.Info("Using PostgreSQL credential store")

		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewAccountRepository(db), nil

	case config.StorageDriverSQLite:
		logger.Info("Using SQLite credential store", slog.String("path", cfg.SQLitePath))

		ctx, cancel := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
		defer cancel()

		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open SQLite credential store")
		}

		// Register lifecycle hook to close the store on shutdown
		params.Lc.Append(fx.Hook{
			OnStop: func(_ context.Context) error {
				logger.Info("Closing SQLite credential store")

				return store.Close()
			},
		})

		return store, nil

	default:
		return nil, errors.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewAccountRepository),
)
