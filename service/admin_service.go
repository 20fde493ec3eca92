package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/models"
)

type adminService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewAdminService creates a new admin service
func NewAdminService(uowFactory UnitOfWorkFactory, cfg *config.Config) AdminService {
	return &adminService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// EnqueueItem appends an item to the auction queue. Only admin accounts
// may call it.
func (s *adminService) EnqueueItem(ctx context.Context, actorID string, itemID int64) (*models.QueueItem, error) {
	if !s.cfg.IsAdmin(actorID) {
		return nil, fmt.Errorf("enqueue rejected for %s: %w", actorID, ErrAuthorizationFailed)
	}
	if itemID <= 0 {
		return nil, fmt.Errorf("item id must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	item, err := uow.QueueRepository().Enqueue(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue item: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"itemID":   itemID,
		"position": item.Position,
		"actor":    actorID,
	}).Info("Enqueued auction item")

	return item, nil
}

// ListQueue returns the pending item queue in FIFO order
func (s *adminService) ListQueue(ctx context.Context) ([]*models.QueueItem, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	items, err := uow.QueueRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	return items, nil
}

type tickerService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	now        func() time.Time
}

// NewTickerService creates a new ticker service
func NewTickerService(uowFactory UnitOfWorkFactory, cfg *config.Config) TickerService {
	return &tickerService{
		uowFactory: uowFactory,
		cfg:        cfg,
		now:        time.Now,
	}
}

// RecordTick stores a BTC price observation on behalf of an admin account
func (s *tickerService) RecordTick(ctx context.Context, actorID string, usdPrice int64) (*models.PriceTick, error) {
	if !s.cfg.IsAdmin(actorID) {
		return nil, fmt.Errorf("tick rejected for %s: %w", actorID, ErrAuthorizationFailed)
	}
	if usdPrice <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tick := &models.PriceTick{
		TickTime: s.now().UTC(),
		USDPrice: usdPrice,
	}

	if err := uow.PriceTickRepository().Record(ctx, tick); err != nil {
		return nil, fmt.Errorf("failed to record price tick: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tick, nil
}
