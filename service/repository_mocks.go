package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, accountID, principal string) (*models.Account, error) {
	args := m.Called(ctx, accountID, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) SetPrincipal(ctx context.Context, accountID, principal string) error {
	args := m.Called(ctx, accountID, principal)
	return args.Error(0)
}

func (m *MockAccountRepository) AddCredit(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DeductAvailable(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockAccountRepository) DebitBalance(ctx context.Context, accountID string, amount int64) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

// MockBidRepository is a mock implementation of BidRepository
type MockBidRepository struct {
	mock.Mock
}

func (m *MockBidRepository) GetTop(ctx context.Context) (*models.Bid, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockBidRepository) GetByAccount(ctx context.Context, accountID string) (*models.Bid, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *MockBidRepository) List(ctx context.Context) ([]*models.Bid, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bid), args.Error(1)
}

func (m *MockBidRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBidRepository) Upsert(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	return args.Error(0)
}

func (m *MockBidRepository) DeleteLowest(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBidRepository) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuctionRepository is a mock implementation of AuctionRepository
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) GetLatest(ctx context.Context) (*models.AuctionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionRecord), args.Error(1)
}

func (m *MockAuctionRepository) GetByItem(ctx context.Context, itemID int64) (*models.AuctionRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuctionRecord), args.Error(1)
}

func (m *MockAuctionRepository) Create(ctx context.Context, record *models.AuctionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuctionRepository) SetWinner(ctx context.Context, sequenceNumber int32, winnerID string, amount int64, settledAt time.Time) error {
	args := m.Called(ctx, sequenceNumber, winnerID, amount, settledAt)
	return args.Error(0)
}

// MockQueueRepository is a mock implementation of QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) HeadAndNext(ctx context.Context) (*models.QueueItem, *models.QueueItem, error) {
	args := m.Called(ctx)
	var head, next *models.QueueItem
	if args.Get(0) != nil {
		head = args.Get(0).(*models.QueueItem)
	}
	if args.Get(1) != nil {
		next = args.Get(1).(*models.QueueItem)
	}
	return head, next, args.Error(2)
}

func (m *MockQueueRepository) List(ctx context.Context) ([]*models.QueueItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueItem), args.Error(1)
}

func (m *MockQueueRepository) Enqueue(ctx context.Context, itemID int64) (*models.QueueItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueItem), args.Error(1)
}

func (m *MockQueueRepository) Remove(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

// MockSystemRepository is a mock implementation of SystemRepository
type MockSystemRepository struct {
	mock.Mock
}

func (m *MockSystemRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SystemConfig), args.Error(1)
}

func (m *MockSystemRepository) EnsureInitialized(ctx context.Context, epoch time.Time) error {
	args := m.Called(ctx, epoch)
	return args.Error(0)
}

func (m *MockSystemRepository) IncrementUserCount(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSystemRepository) AddLoyaltyPoints(ctx context.Context, points int64) error {
	args := m.Called(ctx, points)
	return args.Error(0)
}

// MockPriceTickRepository is a mock implementation of PriceTickRepository
type MockPriceTickRepository struct {
	mock.Mock
}

func (m *MockPriceTickRepository) Record(ctx context.Context, tick *models.PriceTick) error {
	args := m.Called(ctx, tick)
	return args.Error(0)
}

func (m *MockPriceTickRepository) GetLatest(ctx context.Context) (*models.PriceTick, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PriceTick), args.Error(1)
}

// MockTokenLedger is a mock implementation of TokenLedger
type MockTokenLedger struct {
	mock.Mock
}

func (m *MockTokenLedger) Transfer(ctx context.Context, toAccountID string, amount int64, memo string) error {
	args := m.Called(ctx, toAccountID, amount, memo)
	return args.Error(0)
}

// MockItemCustodian is a mock implementation of ItemCustodian
type MockItemCustodian struct {
	mock.Mock
}

func (m *MockItemCustodian) Transfer(ctx context.Context, toAccountID string, itemIDs []int64, memo string) error {
	args := m.Called(ctx, toAccountID, itemIDs, memo)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// nopEventPublisher swallows events for tests that do not assert on them
type nopEventPublisher struct{}

func (nopEventPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are injected with SetRepositories rather than stubbed call by call.
type MockUnitOfWork struct {
	mock.Mock

	accountRepo   AccountRepository
	bidRepo       BidRepository
	auctionRepo   AuctionRepository
	queueRepo     QueueRepository
	systemRepo    SystemRepository
	priceTickRepo PriceTickRepository
	eventBus      EventPublisher
}

// SetRepositories wires the repositories this unit of work hands out.
// Any nil entry panics if the code under test asks for it.
func (m *MockUnitOfWork) SetRepositories(
	accountRepo AccountRepository,
	bidRepo BidRepository,
	auctionRepo AuctionRepository,
	queueRepo QueueRepository,
	systemRepo SystemRepository,
	priceTickRepo PriceTickRepository,
) {
	m.accountRepo = accountRepo
	m.bidRepo = bidRepo
	m.auctionRepo = auctionRepo
	m.queueRepo = queueRepo
	m.systemRepo = systemRepo
	m.priceTickRepo = priceTickRepo
	m.eventBus = nopEventPublisher{}
}

// SetEventBus overrides the default no-op publisher
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	if m.accountRepo == nil {
		panic("account repository not set on mock unit of work")
	}
	return m.accountRepo
}

func (m *MockUnitOfWork) BidRepository() BidRepository {
	if m.bidRepo == nil {
		panic("bid repository not set on mock unit of work")
	}
	return m.bidRepo
}

func (m *MockUnitOfWork) AuctionRepository() AuctionRepository {
	if m.auctionRepo == nil {
		panic("auction repository not set on mock unit of work")
	}
	return m.auctionRepo
}

func (m *MockUnitOfWork) QueueRepository() QueueRepository {
	if m.queueRepo == nil {
		panic("queue repository not set on mock unit of work")
	}
	return m.queueRepo
}

func (m *MockUnitOfWork) SystemRepository() SystemRepository {
	if m.systemRepo == nil {
		panic("system repository not set on mock unit of work")
	}
	return m.systemRepo
}

func (m *MockUnitOfWork) PriceTickRepository() PriceTickRepository {
	if m.priceTickRepo == nil {
		panic("price tick repository not set on mock unit of work")
	}
	return m.priceTickRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return nopEventPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
