// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"authapp/internal/domain/entity"
	domainerrors "authapp/internal/domain/errors"
	"authapp/internal/domain/repository"
	"authapp/internal/infra/persistence/model"
	"authapp/internal/infra/persistence/postgres/query"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// accountRepository implements the repository.AccountRepository interface using GORM.
type accountRepository struct {
	q *query.Query
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{
		q: query.Use(db),
	}
}

// FindByEmail retrieves the account whose email matches exactly.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	accountM, err := repo.q.AccountModel.WithContext(ctx).
		Where(repo.q.AccountModel.Email.Eq(email)).
		Take()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find account by email")
	}

	return toAccountDomain(accountM), nil
}

// Insert persists a new account. The unique constraint on email decides
// concurrent registrations for the same address.
func (repo *accountRepository) Insert(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.q.AccountModel.WithContext(ctx).Create(accountM); err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrAccountAlreadyExists
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to insert account")
	}

	account.CreatedAt = accountM.CreatedAt

	return nil
}

func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	return &entity.Account{
		ID:           data.ID,
		Email:        data.Email,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		PasswordHash: data.Password,
		CreatedAt:    data.CreatedAt,
	}
}

func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	return &model.AccountModel{
		ID:        data.ID,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Password:  data.PasswordHash,
		CreatedAt: data.CreatedAt,
	}
}
