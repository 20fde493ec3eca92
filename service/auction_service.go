package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// maxLiveBids bounds the bid book
const maxLiveBids = 3

type auctionService struct {
	uowFactory UnitOfWorkFactory
	custodian  ItemCustodian
	cfg        *config.Config
	now        func() time.Time
}

// NewAuctionService creates a new auction service
func NewAuctionService(uowFactory UnitOfWorkFactory, custodian ItemCustodian, cfg *config.Config) AuctionService {
	return &auctionService{
		uowFactory: uowFactory,
		custodian:  custodian,
		cfg:        cfg,
		now:        time.Now,
	}
}

// PlaceBid validates and records a bid. Depending on the state of the
// latest auction record it may open a new auction window for the queue
// head, or settle the expired head auction and roll over to the next
// queued item before admitting the bid.
func (s *auctionService) PlaceBid(ctx context.Context, accountID string, itemID int64, amount int64) (*models.Bid, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bid amount must be positive")
	}

	// Time is sampled once per action
	now := s.now().UTC()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The system must be initialized and open for business
	system, err := uow.SystemRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}
	if system == nil || !system.OpenAt(now) {
		return nil, fmt.Errorf("bid rejected: %w", ErrSystemNotOpen)
	}

	// The bidder must be registered with enough available credit
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("bid rejected: %w", ErrNotRegistered)
	}
	if account.AvailableCredit < amount {
		return nil, fmt.Errorf("bid rejected: %w: have %d available, need %d", ErrInsufficientCredit, account.AvailableCredit, amount)
	}

	// Only the queue head, or its successor, may be bid on
	head, next, err := uow.QueueRepository().HeadAndNext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read item queue: %w", err)
	}
	if head == nil {
		return nil, fmt.Errorf("bid rejected: %w", ErrItemNotOffered)
	}
	if itemID != head.ItemID && (next == nil || itemID != next.ItemID) {
		return nil, fmt.Errorf("bid rejected for item %d: %w", itemID, ErrBiddingNotOpen)
	}

	latest, err := uow.AuctionRepository().GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest auction record: %w", err)
	}

	var bid *models.Bid

	switch {
	case latest != nil && latest.ItemID == itemID:
		// An auction record exists for the requested item
		if latest.BiddingOpenAt(now) {
			bid, err = s.placeInBook(ctx, uow, accountID, itemID, amount, now)
			break
		}

		// A head item whose window expired without a sale is offered
		// again in the current window. An unclaimed winning bid still
		// stands and blocks the re-offer.
		if itemID != head.ItemID || latest.IsSettled() || !now.After(latest.EndAt) {
			return nil, fmt.Errorf("bid rejected for item %d: %w", itemID, ErrBiddingClosed)
		}
		top, terr := uow.BidRepository().GetTop(ctx)
		if terr != nil {
			return nil, fmt.Errorf("failed to get top bid: %w", terr)
		}
		if top != nil {
			return nil, fmt.Errorf("bid rejected for item %d: %w", itemID, ErrBiddingClosed)
		}
		if _, err := s.openAuction(ctx, uow, latest, itemID, now); err != nil {
			return nil, err
		}
		bid, err = s.placeInBook(ctx, uow, accountID, itemID, amount, now)

	case itemID == head.ItemID:
		// No record for the head item yet; open its auction window
		if _, err := s.openAuction(ctx, uow, latest, itemID, now); err != nil {
			return nil, err
		}
		bid, err = s.placeInBook(ctx, uow, accountID, itemID, amount, now)

	default:
		// Bid on the second queued item: only valid once the head item's
		// full window, including the sealed phase, has expired
		headRecord, err := uow.AuctionRepository().GetByItem(ctx, head.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to get auction record for item %d: %w", head.ItemID, err)
		}
		if headRecord == nil {
			return nil, fmt.Errorf("bid rejected for item %d: %w", itemID, ErrBiddingNotOpen)
		}
		if headRecord.ActiveAt(now) {
			return nil, fmt.Errorf("bid rejected for item %d: %w", itemID, ErrRolloverTooEarly)
		}

		if err := s.settle(ctx, uow, headRecord, now); err != nil {
			return nil, err
		}
		if _, err := s.openAuction(ctx, uow, headRecord, itemID, now); err != nil {
			return nil, err
		}
		bid, err = s.placeInBook(ctx, uow, accountID, itemID, amount, now)
		if err != nil {
			return nil, err
		}
	}

	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bid, nil
}

// Claim settles the latest auction in favor of the caller. It is only
// permitted once bidding has ended, and only for the holder of the top bid.
func (s *auctionService) Claim(ctx context.Context, accountID string) (*models.AuctionRecord, error) {
	now := s.now().UTC()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	latest, err := uow.AuctionRepository().GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest auction record: %w", err)
	}
	if latest == nil {
		return nil, fmt.Errorf("claim rejected: %w", ErrNoWinningBid)
	}
	if !now.After(latest.BiddingEndAt) {
		return nil, fmt.Errorf("claim rejected: %w", ErrBiddingNotOpen)
	}

	top, err := uow.BidRepository().GetTop(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top bid: %w", err)
	}
	if top == nil || top.AccountID != accountID {
		return nil, fmt.Errorf("claim rejected: %w", ErrNoWinningBid)
	}

	if err := s.settle(ctx, uow, latest, now); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	settled := *latest
	settled.WinnerAccountID = &top.AccountID
	settled.WinningAmount = &top.Amount
	settled.SettledAt = &now
	return &settled, nil
}

// CurrentAuction returns the latest auction record with its live bids
func (s *auctionService) CurrentAuction(ctx context.Context) (*models.AuctionRecord, []*models.Bid, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	latest, err := uow.AuctionRepository().GetLatest(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get latest auction record: %w", err)
	}

	bids, err := uow.BidRepository().List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list bids: %w", err)
	}

	return latest, bids, nil
}

// openAuction computes the window covering "now" and appends a new
// auction record for the item. The sequence number continues from the
// latest record read via the descending scan.
func (s *auctionService) openAuction(ctx context.Context, uow UnitOfWork, latest *models.AuctionRecord, itemID int64, now time.Time) (*models.AuctionRecord, error) {
	system, err := uow.SystemRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}
	if system == nil {
		return nil, fmt.Errorf("cannot open auction: %w", ErrSystemNotOpen)
	}

	window, err := ComputeWindow(system.Epoch, s.cfg.AuctionLength, s.cfg.BiddingLength, now)
	if err != nil {
		return nil, fmt.Errorf("cannot open auction for item %d: %w", itemID, err)
	}

	var sequence int32 = 1
	if latest != nil {
		sequence = latest.SequenceNumber + 1
	}

	record := &models.AuctionRecord{
		SequenceNumber: sequence,
		ItemID:         itemID,
		StartAt:        window.Start,
		BiddingEndAt:   window.BiddingEnd,
		EndAt:          window.End,
	}

	if err := uow.AuctionRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create auction record: %w", err)
	}

	uow.EventBus().Publish(events.AuctionOpenedEvent{
		SequenceNumber: record.SequenceNumber,
		ItemID:         record.ItemID,
		StartAt:        record.StartAt,
		BiddingEndAt:   record.BiddingEndAt,
		EndAt:          record.EndAt,
	})

	log.WithFields(log.Fields{
		"sequence": record.SequenceNumber,
		"itemID":   record.ItemID,
		"start":    record.StartAt,
		"end":      record.EndAt,
	}).Info("Opened auction")

	return record, nil
}

// placeInBook enforces the minimum-increment and bounded-book rules and
// records the bid. The caller has already verified available credit.
func (s *auctionService) placeInBook(ctx context.Context, uow UnitOfWork, accountID string, itemID int64, amount int64, now time.Time) (*models.Bid, error) {
	top, err := uow.BidRepository().GetTop(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get top bid: %w", err)
	}

	minNext := s.cfg.MinOpeningBid
	if top != nil {
		minNext = top.Amount + s.cfg.StepIncrement
	}
	if amount < minNext {
		return nil, fmt.Errorf("bid rejected: %w: minimum acceptable bid is %d", ErrBidTooLow, minNext)
	}

	existing, err := uow.BidRepository().GetByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing bid: %w", err)
	}

	// A new bidder may displace the lowest-ranked bid when the book is
	// full; a returning bidder replaces their own bid in place
	if existing == nil {
		count, err := uow.BidRepository().Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count bids: %w", err)
		}
		if count >= maxLiveBids {
			if err := uow.BidRepository().DeleteLowest(ctx); err != nil {
				return nil, fmt.Errorf("failed to evict lowest bid: %w", err)
			}
		}
	}

	bid := &models.Bid{
		AccountID: accountID,
		ItemID:    itemID,
		Amount:    amount,
		PlacedAt:  now,
	}

	if err := uow.BidRepository().Upsert(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	uow.EventBus().Publish(events.BidPlacedEvent{
		AccountID: accountID,
		ItemID:    itemID,
		Amount:    amount,
		Replaced:  existing != nil,
	})

	return bid, nil
}

// settle closes the auction for the record's item: the item is
// transferred to the top bidder, the winner's credit is debited, the
// outcome is written to the record, the book is cleared and the item
// leaves the queue. Runs within the caller's transaction so either all
// of it persists or none of it does.
func (s *auctionService) settle(ctx context.Context, uow UnitOfWork, record *models.AuctionRecord, now time.Time) error {
	top, err := uow.BidRepository().GetTop(ctx)
	if err != nil {
		return fmt.Errorf("failed to get top bid: %w", err)
	}
	if top == nil {
		return fmt.Errorf("cannot settle auction %d: %w", record.SequenceNumber, ErrNoWinningBid)
	}

	memo := fmt.Sprintf("auction %d settlement %s", record.SequenceNumber, uuid.NewString())
	if err := s.custodian.Transfer(ctx, top.AccountID, []int64{record.ItemID}, memo); err != nil {
		return fmt.Errorf("item transfer failed for auction %d: %w", record.SequenceNumber, err)
	}

	// The locked top-bid amount itself is being spent, so the debit runs
	// against the raw balance
	if err := uow.AccountRepository().DebitBalance(ctx, top.AccountID, top.Amount); err != nil {
		return fmt.Errorf("settlement debit failed: %w: %v", ErrInsufficientCredit, err)
	}

	if err := uow.AuctionRepository().SetWinner(ctx, record.SequenceNumber, top.AccountID, top.Amount, now); err != nil {
		return fmt.Errorf("failed to record auction winner: %w", err)
	}

	if err := uow.BidRepository().Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear bid book: %w", err)
	}

	if err := uow.QueueRepository().Remove(ctx, record.ItemID); err != nil {
		return fmt.Errorf("failed to dequeue settled item: %w", err)
	}

	uow.EventBus().Publish(events.AuctionSettledEvent{
		SequenceNumber: record.SequenceNumber,
		ItemID:         record.ItemID,
		WinnerID:       top.AccountID,
		WinningAmount:  top.Amount,
	})

	log.WithFields(log.Fields{
		"sequence": record.SequenceNumber,
		"itemID":   record.ItemID,
		"winner":   top.AccountID,
		"amount":   top.Amount,
	}).Info("Settled auction")

	return nil
}
