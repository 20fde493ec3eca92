package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/models"
)

func newAdminFixture() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockQueueRepository, *MockPriceTickRepository, *config.Config) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	queue := new(MockQueueRepository)
	ticks := new(MockPriceTickRepository)

	uow.SetRepositories(new(MockAccountRepository), new(MockBidRepository), new(MockAuctionRepository),
		queue, new(MockSystemRepository), ticks)
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)

	cfg := &config.Config{AdminAccounts: []string{"admin"}}
	return factory, uow, queue, ticks, cfg
}

func TestAdminService_EnqueueItem(t *testing.T) {
	ctx := context.Background()
	factory, uow, queue, _, cfg := newAdminFixture()
	svc := NewAdminService(factory, cfg)

	queue.On("Enqueue", mock.Anything, int64(7)).Return(&models.QueueItem{Position: 1, ItemID: 7}, nil)
	uow.On("Commit").Return(nil)

	item, err := svc.EnqueueItem(ctx, "admin", 7)

	require.NoError(t, err)
	assert.Equal(t, int32(1), item.Position)
	queue.AssertExpectations(t)
}

func TestAdminService_EnqueueItem_RejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	factory, _, queue, _, cfg := newAdminFixture()
	svc := NewAdminService(factory, cfg)

	_, err := svc.EnqueueItem(ctx, "mallory", 7)

	assert.ErrorIs(t, err, ErrAuthorizationFailed)
	queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestAdminService_ListQueue(t *testing.T) {
	ctx := context.Background()
	factory, _, queue, _, cfg := newAdminFixture()
	svc := NewAdminService(factory, cfg)

	queue.On("List", mock.Anything).Return([]*models.QueueItem{
		{Position: 1, ItemID: 7},
		{Position: 2, ItemID: 8},
	}, nil)

	items, err := svc.ListQueue(ctx)

	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTickerService_RecordTick(t *testing.T) {
	ctx := context.Background()
	factory, uow, _, ticks, cfg := newAdminFixture()

	svc := NewTickerService(factory, cfg).(*tickerService)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ticks.On("Record", mock.Anything, mock.MatchedBy(func(tick *models.PriceTick) bool {
		return tick.USDPrice == 65000 && tick.TickTime.Equal(now)
	})).Return(nil)
	uow.On("Commit").Return(nil)

	tick, err := svc.RecordTick(ctx, "admin", 65000)

	require.NoError(t, err)
	assert.Equal(t, int64(65000), tick.USDPrice)
	ticks.AssertExpectations(t)
}

func TestTickerService_RecordTick_RejectsNonAdmin(t *testing.T) {
	ctx := context.Background()
	factory, _, _, ticks, cfg := newAdminFixture()
	svc := NewTickerService(factory, cfg)

	_, err := svc.RecordTick(ctx, "mallory", 65000)

	assert.ErrorIs(t, err, ErrAuthorizationFailed)
	ticks.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRegistryService_StoreIdentity_NewAccount(t *testing.T) {
	ctx := context.Background()
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	accounts := new(MockAccountRepository)
	system := new(MockSystemRepository)

	uow.SetRepositories(accounts, new(MockBidRepository), new(MockAuctionRepository),
		new(MockQueueRepository), system, new(MockPriceTickRepository))
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)

	accounts.On("GetByID", mock.Anything, "alice").Return(nil, nil)
	accounts.On("Create", mock.Anything, "alice", "did:example:123").
		Return(&models.Account{AccountID: "alice", Principal: "did:example:123"}, nil)
	system.On("IncrementUserCount", mock.Anything).Return(nil)

	svc := NewRegistryService(factory)
	account, err := svc.StoreIdentity(ctx, "alice", "did:example:123")

	require.NoError(t, err)
	assert.Equal(t, "did:example:123", account.Principal)
}

func TestRegistryService_StoreIdentity_UpdatesExisting(t *testing.T) {
	ctx := context.Background()
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	accounts := new(MockAccountRepository)
	system := new(MockSystemRepository)

	uow.SetRepositories(accounts, new(MockBidRepository), new(MockAuctionRepository),
		new(MockQueueRepository), system, new(MockPriceTickRepository))
	factory.On("Create").Return(uow)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Rollback").Return(nil)
	uow.On("Commit").Return(nil)

	accounts.On("GetByID", mock.Anything, "alice").
		Return(&models.Account{AccountID: "alice", Principal: "old"}, nil)
	accounts.On("SetPrincipal", mock.Anything, "alice", "new").Return(nil)

	svc := NewRegistryService(factory)
	account, err := svc.StoreIdentity(ctx, "alice", "new")

	require.NoError(t, err)
	assert.Equal(t, "new", account.Principal)
	system.AssertNotCalled(t, "IncrementUserCount", mock.Anything)
}
