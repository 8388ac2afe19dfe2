package repositories

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type accountRepository interface {
	Create(ctx context.Context, account *entities.Account) error
	GetByEmail(ctx context.Context, email string) (*entities.Account, error)
	GetByID(ctx context.Context, id string) (*entities.Account, error)
}

// CachedAccounts caches lookups by id, which every authenticated request does.
type CachedAccounts struct {
	accountRepository
	cache *gocache.Cache
}

func NewCachedAccounts(repo accountRepository) *CachedAccounts {
	return &CachedAccounts{accountRepository: repo, cache: gocache.New(10*time.Minute, 20*time.Minute)}
}

func (c CachedAccounts) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	if value, found := c.cache.Get(id); found {
		account := value.(entities.Account)
		return &account, nil
	}

	account, err := c.accountRepository.GetByID(ctx, id)
	if account != nil {
		c.cache.Set(id, *account, gocache.DefaultExpiration)
	}

	return account, err
}
