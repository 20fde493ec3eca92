package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/FreeosDAO/cronacle-backend/config"
	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/events"
	"github.com/FreeosDAO/cronacle-backend/gateway"
	"github.com/FreeosDAO/cronacle-backend/repository"
	"github.com/FreeosDAO/cronacle-backend/server"
	"github.com/FreeosDAO/cronacle-backend/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize event bus with audit log subscribers
	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// The system singleton row anchors the auction epoch
	systemRepo := repository.NewSystemRepository(db)
	if err := systemRepo.EnsureInitialized(ctx, cfg.Epoch); err != nil {
		return fmt.Errorf("failed to initialize system state: %w", err)
	}

	ledger := gateway.NewLedgerClient(cfg.LedgerURL)
	custodian := gateway.NewCustodyClient(cfg.CustodyURL)

	svc := server.Services{
		Credits:  service.NewCreditService(uowFactory, ledger, cfg),
		Auctions: service.NewAuctionService(uowFactory, custodian, cfg),
		Registry: service.NewRegistryService(uowFactory),
		Admin:    service.NewAdminService(uowFactory, cfg),
		Ticker:   service.NewTickerService(uowFactory, cfg),
	}

	router := server.SetupRouter(svc, cfg)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Infof("Serving in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	log.Info("Shutdown completed")
	return nil
}

// subscribeAuditLog attaches structured-log subscribers for the domain
// events so every committed action leaves an audit trail.
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeAccountRegistered, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.AccountRegisteredEvent); ok {
			log.WithFields(log.Fields{
				"accountID": ev.AccountID,
				"principal": ev.Principal,
			}).Info("Account registered")
		}
	})

	bus.Subscribe(events.EventTypeDepositReceived, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.DepositReceivedEvent); ok {
			log.WithFields(log.Fields{
				"accountID": ev.AccountID,
				"amount":    ev.Amount,
				"newCredit": ev.NewCredit,
			}).Info("Deposit received")
		}
	})

	bus.Subscribe(events.EventTypeCreditWithdrawn, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.CreditWithdrawnEvent); ok {
			log.WithFields(log.Fields{
				"accountID": ev.AccountID,
				"amount":    ev.Amount,
				"newCredit": ev.NewCredit,
			}).Info("Credit withdrawn")
		}
	})

	bus.Subscribe(events.EventTypeBidPlaced, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.BidPlacedEvent); ok {
			log.WithFields(log.Fields{
				"accountID": ev.AccountID,
				"itemID":    ev.ItemID,
				"amount":    ev.Amount,
				"replaced":  ev.Replaced,
			}).Info("Bid placed")
		}
	})

	bus.Subscribe(events.EventTypeAuctionSettled, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.AuctionSettledEvent); ok {
			log.WithFields(log.Fields{
				"sequence": ev.SequenceNumber,
				"itemID":   ev.ItemID,
				"winner":   ev.WinnerID,
				"amount":   ev.WinningAmount,
			}).Info("Auction settled")
		}
	})
}
