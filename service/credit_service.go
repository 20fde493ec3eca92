package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/models"
)

type creditService struct {
	uowFactory UnitOfWorkFactory
	ledger     TokenLedger
	cfg        *config.Config
}

// NewCreditService creates a new credit service
func NewCreditService(uowFactory UnitOfWorkFactory, ledger TokenLedger, cfg *config.Config) CreditService {
	return &creditService{
		uowFactory: uowFactory,
		ledger:     ledger,
		cfg:        cfg,
	}
}

// Deposit credits an account. A first deposit registers the account and
// counts toward the system user and loyalty totals.
func (s *creditService) Deposit(ctx context.Context, accountID string, amount int64, memo string) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	system, err := uow.SystemRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}
	if system == nil {
		return nil, fmt.Errorf("deposit rejected: %w", ErrSystemNotOpen)
	}

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if account == nil {
		account, err = uow.AccountRepository().Create(ctx, accountID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to register account: %w", err)
		}
		if err := uow.SystemRepository().IncrementUserCount(ctx); err != nil {
			return nil, fmt.Errorf("failed to increment user count: %w", err)
		}

		uow.EventBus().Publish(events.AccountRegisteredEvent{
			AccountID: accountID,
		})

		log.WithField("accountID", accountID).Info("Registered new account")
	}

	if err := uow.AccountRepository().AddCredit(ctx, accountID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit account: %w", err)
	}

	// Deposits accrue loyalty points one for one
	if err := uow.SystemRepository().AddLoyaltyPoints(ctx, amount); err != nil {
		return nil, fmt.Errorf("failed to add loyalty points: %w", err)
	}

	updated, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	uow.EventBus().Publish(events.DepositReceivedEvent{
		AccountID: accountID,
		Amount:    amount,
		NewCredit: updated.Credit,
		Memo:      memo,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return updated, nil
}

// Withdraw debits available credit and issues the outbound funds
// transfer. The transfer runs inside the transaction so a ledger
// failure leaves the balance untouched.
func (s *creditService) Withdraw(ctx context.Context, accountID string, amount int64) (*models.Account, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdrawal amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("withdrawal rejected: %w", ErrNotRegistered)
	}
	if account.AvailableCredit < amount {
		return nil, fmt.Errorf("withdrawal rejected: %w: have %d available, need %d", ErrInsufficientCredit, account.AvailableCredit, amount)
	}

	if err := uow.AccountRepository().DeductAvailable(ctx, accountID, amount); err != nil {
		return nil, err
	}

	memo := fmt.Sprintf("withdrawal %s", uuid.NewString())
	if err := s.ledger.Transfer(ctx, accountID, amount, memo); err != nil {
		return nil, fmt.Errorf("funds transfer failed: %w", err)
	}

	updated, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	uow.EventBus().Publish(events.CreditWithdrawnEvent{
		AccountID: accountID,
		Amount:    amount,
		NewCredit: updated.Credit,
		Memo:      memo,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"amount":    amount,
	}).Info("Processed withdrawal")

	return updated, nil
}

// AvailableCredit returns the account's credit net of any locked top bid
func (s *creditService) AvailableCredit(ctx context.Context, accountID string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, fmt.Errorf("%w: account %s", ErrNotRegistered, accountID)
	}

	return account.AvailableCredit, nil
}
