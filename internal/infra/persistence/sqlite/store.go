// Package sqlite implements the credential store on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"authapp/internal/domain/entity"
	domainerrors "authapp/internal/domain/errors"
	"authapp/internal/domain/repository"
	"authapp/internal/errors"
	"authapp/internal/infra/persistence/migrations"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const (
	findByEmailQuery = `
SELECT id, first_name, last_name, email, password, created_at
FROM users
WHERE email = ?1;
`
	insertAccountQuery = `
INSERT INTO users (id, first_name, last_name, email, password, created_at)
VALUES (?1, ?2, ?3, ?4, ?5, ?6);
`
)

var _ repository.AccountRepository = (*Store)(nil)

// Store implements repository.AccountRepository over SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the SQLite file at path and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, errors.Wrap(err, "ping sqlite db")
	}

	if err := migrations.Up(ctx, sqlDB, migrations.DialectSQLite); err != nil {
		_ = sqlDB.Close()

		return nil, errors.Wrap(err, "run migrations")
	}

	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// DB returns the raw database handle.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}

	return s.sqlDB
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}

	return s.sqlDB.Close()
}

// FindByEmail retrieves the account whose email matches exactly.
func (s *Store) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var (
		rawID     string
		account   entity.Account
		createdAt int64
	)

	err := s.sqlDB.QueryRowContext(ctx, findByEmailQuery, email).Scan(
		&rawID,
		&account.FirstName,
		&account.LastName,
		&account.Email,
		&account.PasswordHash,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by email")
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "stored account id is not a uuid")
	}

	account.ID = id
	account.CreatedAt = fromMillis(createdAt)

	return &account, nil
}

// Insert persists a new account. The UNIQUE constraint on email rejects a
// second registration even when both requests passed the lookup.
func (s *Store) Insert(ctx context.Context, account *entity.Account) error {
	if account == nil {
		return errors.New("account is required")
	}

	createdAt := s.now().UTC()
	_, err := s.sqlDB.ExecContext(ctx, insertAccountQuery,
		account.ID.String(),
		account.FirstName,
		account.LastName,
		account.Email,
		account.PasswordHash,
		toMillis(createdAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return repository.ErrAccountAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to insert account")
	}

	account.CreatedAt = fromMillis(toMillis(createdAt))

	return nil
}

func isConstraintError(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
