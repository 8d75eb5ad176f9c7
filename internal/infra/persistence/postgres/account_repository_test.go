package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"authapp/internal/domain/entity"
	domainerrors "authapp/internal/domain/errors"
	"authapp/internal/domain/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockedRepository(t *testing.T) (repository.AccountRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return NewAccountRepository(db), mock
}

var selectByEmail = regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."email" = $1`)

func TestAccountRepository_FindByEmail_Found(t *testing.T) {
	repo, mock := newMockedRepository(t)

	id := uuid.Must(uuid.NewV7())
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password", "created_at"}).
		AddRow(id.String(), "Ada", "Lovelace", "ada@example.com", "$2a$10$digest", createdAt)
	mock.ExpectQuery(selectByEmail).WillReturnRows(rows)

	account, err := repo.FindByEmail(context.Background(), "ada@example.com")

	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, "Ada", account.FirstName)
	assert.Equal(t, "Lovelace", account.LastName)
	assert.Equal(t, "$2a$10$digest", account.PasswordHash)
	assert.True(t, createdAt.Equal(account.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByEmail_NotFound(t *testing.T) {
	repo, mock := newMockedRepository(t)

	mock.ExpectQuery(selectByEmail).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}))

	account, err := repo.FindByEmail(context.Background(), "nobody@example.com")

	assert.Nil(t, account)
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FindByEmail_DatabaseError(t *testing.T) {
	repo, mock := newMockedRepository(t)

	mock.ExpectQuery(selectByEmail).WillReturnError(errors.New("connection reset"))

	account, err := repo.FindByEmail(context.Background(), "ada@example.com")

	assert.Nil(t, account)
	require.Error(t, err)

	var dbErr *domainerrors.DatabaseExecuteError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, "An internal server error occurred", dbErr.Message())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Insert(t *testing.T) {
	account := &entity.Account{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        "ada@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$2a$10$digest",
	}
	insert := regexp.QuoteMeta(`INSERT INTO "users"`)

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockedRepository(t)
		mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 1))

		input := *account
		err := repo.Insert(context.Background(), &input)

		require.NoError(t, err)
		assert.False(t, input.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		repo, mock := newMockedRepository(t)
		mock.ExpectExec(insert).WillReturnError(&pgconn.PgError{
			Code:           "23505",
			ConstraintName: "users_email_key",
		})

		input := *account
		err := repo.Insert(context.Background(), &input)

		assert.ErrorIs(t, err, repository.ErrAccountAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other database error", func(t *testing.T) {
		repo, mock := newMockedRepository(t)
		mock.ExpectExec(insert).WillReturnError(&pgconn.PgError{Code: "08006"})

		input := *account
		err := repo.Insert(context.Background(), &input)

		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrAccountAlreadyExists)

		var dbErr *domainerrors.DatabaseExecuteError
		assert.ErrorAs(t, err, &dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsUniqueConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "wrapped pg unique violation", err: errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert"), want: true},
		{name: "pg not null violation", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintViolation(tt.err))
		})
	}
}
