package repositories

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"strings"
)

var ErrDuplicateEmail = errors.New("account with this email already exists")

type Accounts struct {
	db *gorm.DB
}

func NewAccountsRepository(db *gorm.DB) *Accounts {
	return &Accounts{db: db}
}

func (repo *Accounts) Create(ctx context.Context, account *entities.Account) error {
	account.Email = normalizeEmail(account.Email)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Account{}).Where("email = ?", account.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		return tx.Create(account).Error
	})

	if errors.Is(err, ErrDuplicateEmail) {
		return err
	}
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
		return ErrDuplicateEmail
	}
	return errors.Wrap(err, "failed to create account")
}

func (repo *Accounts) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	return repo.first(ctx, "email = ?", normalizeEmail(email))
}

func (repo *Accounts) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	return repo.first(ctx, "id = ?", id)
}

func (repo *Accounts) first(ctx context.Context, query string, arg any) (*entities.Account, error) {
	var account entities.Account
	if err := repo.db.WithContext(ctx).First(&account, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get account")
	}
	return &account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
