package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountRegistered EventType = "account_registered"
	EventTypeDepositReceived   EventType = "deposit_received"
	EventTypeCreditWithdrawn   EventType = "credit_withdrawn"
	EventTypeBidPlaced         EventType = "bid_placed"
	EventTypeAuctionOpened     EventType = "auction_opened"
	EventTypeAuctionSettled    EventType = "auction_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountRegisteredEvent represents a new account registration
type AccountRegisteredEvent struct {
	AccountID string
	Principal string
}

func (e AccountRegisteredEvent) Type() EventType {
	return EventTypeAccountRegistered
}

// DepositReceivedEvent represents a credit deposit that was accepted
type DepositReceivedEvent struct {
	AccountID string
	Amount    int64
	NewCredit int64
	Memo      string
}

func (e DepositReceivedEvent) Type() EventType {
	return EventTypeDepositReceived
}

// CreditWithdrawnEvent represents a completed withdrawal
type CreditWithdrawnEvent struct {
	AccountID string
	Amount    int64
	NewCredit int64
	Memo      string
}

func (e CreditWithdrawnEvent) Type() EventType {
	return EventTypeCreditWithdrawn
}

// BidPlacedEvent represents a bid admitted to the book
type BidPlacedEvent struct {
	AccountID string
	ItemID    int64
	Amount    int64
	Replaced  bool // true when the bidder raised their own standing bid
}

func (e BidPlacedEvent) Type() EventType {
	return EventTypeBidPlaced
}

// AuctionOpenedEvent represents a new auction window being recorded
type AuctionOpenedEvent struct {
	SequenceNumber int32
	ItemID         int64
	StartAt        time.Time
	BiddingEndAt   time.Time
	EndAt          time.Time
}

func (e AuctionOpenedEvent) Type() EventType {
	return EventTypeAuctionOpened
}

// AuctionSettledEvent represents a settled auction
type AuctionSettledEvent struct {
	SequenceNumber int32
	ItemID         int64
	WinnerID       string
	WinningAmount  int64
}

func (e AuctionSettledEvent) Type() EventType {
	return EventTypeAuctionSettled
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the action
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Emit on a background context; event processing is independent of
	// the transaction lifecycle
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
