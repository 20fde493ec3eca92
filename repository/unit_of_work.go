package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/service"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	accountRepo      service.AccountRepository
	bidRepo          service.BidRepository
	auctionRepo      service.AuctionRepository
	queueRepo        service.QueueRepository
	systemRepo       service.SystemRepository
	priceTickRepo    service.PriceTickRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories bound to the transaction
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.bidRepo = newBidRepositoryWithTx(tx)
	u.auctionRepo = newAuctionRepositoryWithTx(tx)
	u.queueRepo = newQueueRepositoryWithTx(tx)
	u.systemRepo = newSystemRepositoryWithTx(tx)
	u.priceTickRepo = newPriceTickRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// BidRepository returns the bid repository for this unit of work
func (u *unitOfWork) BidRepository() service.BidRepository {
	if u.bidRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bidRepo
}

// AuctionRepository returns the auction repository for this unit of work
func (u *unitOfWork) AuctionRepository() service.AuctionRepository {
	if u.auctionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.auctionRepo
}

// QueueRepository returns the queue repository for this unit of work
func (u *unitOfWork) QueueRepository() service.QueueRepository {
	if u.queueRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.queueRepo
}

// SystemRepository returns the system repository for this unit of work
func (u *unitOfWork) SystemRepository() service.SystemRepository {
	if u.systemRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.systemRepo
}

// PriceTickRepository returns the price tick repository for this unit of work
func (u *unitOfWork) PriceTickRepository() service.PriceTickRepository {
	if u.priceTickRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.priceTickRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
