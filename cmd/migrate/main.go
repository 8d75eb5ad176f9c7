package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"authapp/config"
	"authapp/internal/infra/persistence/migrations"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	_ "modernc.org/sqlite"
)

// Supported subcommands:
// - up:     Apply all pending migrations
// - down:   Roll back the most recent migration
// - status: List migrations and whether they are applied

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	if err := cmd.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, os.Args[1], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, subcommand string, out io.Writer) error {
	db, dialect, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := migrations.NewProvider(db, dialect)
	if err != nil {
		return err
	}

	switch subcommand {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return errors.Wrap(err, "migrate up")
		}
		for _, result := range results {
			fmt.Fprintf(out, "applied %s (%s)\n", result.Source.Path, result.Duration)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no pending migrations")
		}

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return errors.Wrap(err, "migrate down")
		}
		fmt.Fprintf(out, "rolled back %s (%s)\n", result.Source.Path, result.Duration)

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return errors.Wrap(err, "migrate status")
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, status := range statuses {
			appliedAt := "-"
			if !status.AppliedAt.IsZero() {
				appliedAt = status.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", status.Source.Version, status.State, appliedAt, status.Source.Path)
		}

		return errors.WithStack(tw.Flush())

	default:
		printUsage()

		return errors.Errorf("unknown subcommand: %s", subcommand)
	}

	return nil
}

// openDB opens the configured store without going through the fx graph.
func openDB(cfg *config.Config) (*sql.DB, migrations.Dialect, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		gormDB, err := pgLib.New(cfg.Postgres)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to create PostgreSQL client")
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to get PostgreSQL sql.DB")
		}

		return sqlDB, migrations.DialectPostgres, nil

	case config.StorageDriverSQLite:
		sqlDB, err := sql.Open("sqlite", cfg.Storage.SQLitePath+"?_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, "", errors.Wrap(err, "open sqlite db")
		}

		return sqlDB, migrations.DialectSQLite, nil

	default:
		return nil, "", errors.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate <up|down|status>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "The storage driver and connection come from config/config.yaml and the environment.")
}
