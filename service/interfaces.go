package service

import (
	"context"
	"time"

	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// AccountRepository defines the interface for account and credit data access
type AccountRepository interface {
	// GetByID retrieves an account with its available credit, or nil if unknown
	GetByID(ctx context.Context, accountID string) (*models.Account, error)

	// Create registers a new account
	Create(ctx context.Context, accountID, principal string) (*models.Account, error)

	// SetPrincipal updates an account's external identity principal and
	// refreshes its timestamp
	SetPrincipal(ctx context.Context, accountID, principal string) error

	// AddCredit increments an account's credit balance
	AddCredit(ctx context.Context, accountID string, amount int64) error

	// DeductAvailable debits an account, failing unless the amount is
	// covered by available credit (credit minus any locked top bid)
	DeductAvailable(ctx context.Context, accountID string, amount int64) error

	// DebitBalance debits an account against its raw balance; used at
	// settlement where the locked amount itself is being consumed
	DebitBalance(ctx context.Context, accountID string, amount int64) error
}

// BidRepository defines the interface for the live bid book
type BidRepository interface {
	// GetTop returns the highest-amount live bid, or nil if the book is empty
	GetTop(ctx context.Context) (*models.Bid, error)

	// GetByAccount returns the account's live bid, or nil
	GetByAccount(ctx context.Context, accountID string) (*models.Bid, error)

	// List returns all live bids ordered by amount descending
	List(ctx context.Context) ([]*models.Bid, error)

	// Count returns the number of live bids
	Count(ctx context.Context) (int, error)

	// Upsert inserts the bid or replaces the account's existing one
	Upsert(ctx context.Context, bid *models.Bid) error

	// DeleteLowest evicts the lowest-ranked live bid
	DeleteLowest(ctx context.Context) error

	// Clear removes all live bids as a unit
	Clear(ctx context.Context) error
}

// AuctionRepository defines the interface for the append-only auction trail
type AuctionRepository interface {
	// GetLatest returns the record with the highest sequence number, or nil
	GetLatest(ctx context.Context) (*models.AuctionRecord, error)

	// GetByItem returns the record for the given item, or nil
	GetByItem(ctx context.Context, itemID int64) (*models.AuctionRecord, error)

	// Create appends a new auction record
	Create(ctx context.Context, record *models.AuctionRecord) error

	// SetWinner records the settlement outcome on an existing record
	SetWinner(ctx context.Context, sequenceNumber int32, winnerID string, amount int64, settledAt time.Time) error
}

// QueueRepository defines the interface for the pending item queue
type QueueRepository interface {
	// HeadAndNext returns the first two queue entries; either may be nil
	HeadAndNext(ctx context.Context) (head, next *models.QueueItem, err error)

	// List returns all queue entries in FIFO order
	List(ctx context.Context) ([]*models.QueueItem, error)

	// Enqueue appends an item to the queue tail
	Enqueue(ctx context.Context, itemID int64) (*models.QueueItem, error)

	// Remove deletes the entry for a settled item
	Remove(ctx context.Context, itemID int64) error
}

// SystemRepository defines the interface for the system singleton row
type SystemRepository interface {
	// Get returns the system row, or nil if the system was never initialized
	Get(ctx context.Context) (*models.SystemConfig, error)

	// EnsureInitialized creates the system row if it does not exist
	EnsureInitialized(ctx context.Context, epoch time.Time) error

	// IncrementUserCount bumps the registered-user counter
	IncrementUserCount(ctx context.Context) error

	// AddLoyaltyPoints bumps the loyalty-point counter
	AddLoyaltyPoints(ctx context.Context, points int64) error
}

// PriceTickRepository defines the interface for BTC price tick storage
type PriceTickRepository interface {
	// Record stores one price observation
	Record(ctx context.Context, tick *models.PriceTick) error

	// GetLatest returns the most recent tick, or nil
	GetLatest(ctx context.Context) (*models.PriceTick, error)
}

// TokenLedger is the external funds-transfer collaborator. Transfer is
// issued only after all local invariants for the action have been
// validated; an error aborts the surrounding transaction.
type TokenLedger interface {
	Transfer(ctx context.Context, toAccountID string, amount int64, memo string) error
}

// ItemCustodian is the external item-custody collaborator. Exactly one
// call is issued per settlement.
type ItemCustodian interface {
	Transfer(ctx context.Context, toAccountID string, itemIDs []int64, memo string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// CreditService defines the credit ledger operations
type CreditService interface {
	// Deposit credits an account, auto-registering it on first deposit
	Deposit(ctx context.Context, accountID string, amount int64, memo string) (*models.Account, error)

	// Withdraw debits available credit and issues a funds transfer
	Withdraw(ctx context.Context, accountID string, amount int64) (*models.Account, error)

	// AvailableCredit returns the account's credit net of any locked top bid
	AvailableCredit(ctx context.Context, accountID string) (int64, error)
}

// AuctionService defines the bid/claim lifecycle operations
type AuctionService interface {
	// PlaceBid validates and records a bid, opening or rolling over the
	// auction window as required
	PlaceBid(ctx context.Context, accountID string, itemID int64, amount int64) (*models.Bid, error)

	// Claim settles the latest auction for the caller once bidding has ended
	Claim(ctx context.Context, accountID string) (*models.AuctionRecord, error)

	// CurrentAuction returns the latest auction record with its live bids
	CurrentAuction(ctx context.Context) (*models.AuctionRecord, []*models.Bid, error)
}

// RegistryService defines account identity operations
type RegistryService interface {
	// StoreIdentity registers or refreshes an account's identity principal
	StoreIdentity(ctx context.Context, accountID, principal string) (*models.Account, error)
}

// TickerService defines admin price-tick operations
type TickerService interface {
	// RecordTick stores a BTC price tick on behalf of an admin account
	RecordTick(ctx context.Context, actorID string, usdPrice int64) (*models.PriceTick, error)
}

// AdminService defines admin queue operations
type AdminService interface {
	// EnqueueItem appends an item to the auction queue
	EnqueueItem(ctx context.Context, actorID string, itemID int64) (*models.QueueItem, error)

	// ListQueue returns the pending item queue
	ListQueue(ctx context.Context) ([]*models.QueueItem, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	BidRepository() BidRepository
	AuctionRepository() AuctionRepository
	QueueRepository() QueueRepository
	SystemRepository() SystemRepository
	PriceTickRepository() PriceTickRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a new, unstarted UnitOfWork
	Create() UnitOfWork
}
