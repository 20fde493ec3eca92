package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// availableCreditExpr computes credit minus the amount locked by the
// account's own standing top bid. An account whose bid is not the book
// top has nothing locked.
const availableCreditExpr = `
	a.credit - COALESCE(
		(SELECT b.amount
		 FROM bids b
		 WHERE b.account_id = a.account_id
		   AND b.amount = (SELECT MAX(b2.amount) FROM bids b2)),
		0
	)`

// GetByID retrieves an account by its ID, with available credit computed
func (r *AccountRepository) GetByID(ctx context.Context, accountID string) (*models.Account, error) {
	query := `
		SELECT
			a.account_id,
			a.principal,
			a.credit,
			a.registered_at,
			a.updated_at,
			` + availableCreditExpr + ` AS available_credit
		FROM accounts a
		WHERE a.account_id = $1
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&account.AccountID,
		&account.Principal,
		&account.Credit,
		&account.RegisteredAt,
		&account.UpdatedAt,
		&account.AvailableCredit,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}

	return &account, nil
}

// Create registers a new account with a zero credit balance
func (r *AccountRepository) Create(ctx context.Context, accountID, principal string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (account_id, principal)
		VALUES ($1, $2)
		RETURNING account_id, principal, credit, registered_at, updated_at
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, accountID, principal).Scan(
		&account.AccountID,
		&account.Principal,
		&account.Credit,
		&account.RegisteredAt,
		&account.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", accountID, err)
	}

	// A new account has no live bids, so nothing is locked
	account.AvailableCredit = account.Credit

	return &account, nil
}

// SetPrincipal updates an account's identity principal and refreshes its timestamp
func (r *AccountRepository) SetPrincipal(ctx context.Context, accountID, principal string) error {
	query := `
		UPDATE accounts
		SET principal = $1, updated_at = NOW()
		WHERE account_id = $2
	`

	result, err := r.q.Exec(ctx, query, principal, accountID)
	if err != nil {
		return fmt.Errorf("failed to set principal for account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}

	return nil
}

// AddCredit increments an account's credit balance atomically
func (r *AccountRepository) AddCredit(ctx context.Context, accountID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET credit = credit + $1, updated_at = NOW()
		WHERE account_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to add credit for account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s not found", accountID)
	}

	return nil
}

// DeductAvailable debits an account, guarded by the available-credit
// predicate so a standing top bid can never be unfunded by a withdrawal
func (r *AccountRepository) DeductAvailable(ctx context.Context, accountID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts a
		SET credit = credit - $1, updated_at = NOW()
		WHERE a.account_id = $2
		  AND ` + availableCreditExpr + ` >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to deduct credit for account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		account, err := r.GetByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to check account: %w", err)
		}
		if account == nil {
			return fmt.Errorf("account %s not found", accountID)
		}
		return fmt.Errorf("insufficient credit: have %d available, need %d", account.AvailableCredit, amount)
	}

	return nil
}

// DebitBalance debits an account against its raw balance. Used at
// settlement, where the locked top-bid amount itself is being spent.
func (r *AccountRepository) DebitBalance(ctx context.Context, accountID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE accounts
		SET credit = credit - $1, updated_at = NOW()
		WHERE account_id = $2
		  AND credit >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, accountID)
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("insufficient credit to debit %d from account %s", amount, accountID)
	}

	return nil
}
