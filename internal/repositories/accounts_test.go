package repositories

import (
	"context"
	"github.com/maxaizer/jobmatch/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func newTestDbContext(t *testing.T) *DbContext {
	t.Helper()

	dbCtx, err := NewDbContext(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate(true))
	t.Cleanup(func() { _ = dbCtx.Close() })
	return dbCtx
}

func Test_Accounts_CreateAndFind(t *testing.T) {
	repo := NewAccountsRepository(newTestDbContext(t).DB)
	ctx := context.Background()

	err := repo.Create(ctx, &entities.Account{ID: "u1", Email: " Ann@Example.com ", PasswordHash: []byte("hash")})
	require.NoError(t, err)

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "ann@example.com", byID.Email)
}

func Test_Accounts_DuplicateEmailRejected(t *testing.T) {
	repo := NewAccountsRepository(newTestDbContext(t).DB)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entities.Account{ID: "u1", Email: "ann@example.com", PasswordHash: []byte("x")}))

	err := repo.Create(ctx, &entities.Account{ID: "u2", Email: "ANN@example.com", PasswordHash: []byte("y")})

	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func Test_Accounts_MissingReturnsNil(t *testing.T) {
	repo := NewAccountsRepository(newTestDbContext(t).DB)

	account, err := repo.GetByID(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, account)
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) Create(ctx context.Context, account *entities.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccounts) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *mockAccounts) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*entities.Account), args.Error(1)
}

func Test_CachedAccounts_HitsRepositoryOnce(t *testing.T) {
	repo := &mockAccounts{}
	repo.On("GetByID", mock.Anything, "u1").Return(&entities.Account{ID: "u1", Email: "ann@example.com"}, nil).Once()
	cached := NewCachedAccounts(repo)

	first, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	second, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func Test_CachedAccounts_DoesNotCacheMisses(t *testing.T) {
	repo := &mockAccounts{}
	repo.On("GetByID", mock.Anything, "ghost").Return((*entities.Account)(nil), nil)
	cached := NewCachedAccounts(repo)

	_, _ = cached.GetByID(context.Background(), "ghost")
	_, _ = cached.GetByID(context.Background(), "ghost")

	repo.AssertNumberOfCalls(t, "GetByID", 2)
}
