package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeUserRegistered      EventType = "user_registered"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID     int64
	OldBalance float64
	NewBalance float64
	Source     string // "watchAd", "spinResult", "commission", "withdraw"
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserRegisteredEvent represents a new user registration
type UserRegisteredEvent struct {
	UserID int64
	RefBy  *int64
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// WithdrawalRequestedEvent represents a filed payout request
type WithdrawalRequestedEvent struct {
	UserID    int64
	Amount    float64
	BinanceID string
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
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
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so no workflow blocks on a subscriber.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// LogSubscriber attaches a structured-log handler for every event type, so
// each balance mutation leaves a trace.
func LogSubscriber(b *Bus) {
	b.Subscribe(EventTypeBalanceChange, func(_ context.Context, e Event) {
		ev := e.(BalanceChangeEvent)
		log.WithFields(log.Fields{
			"user_id":     ev.UserID,
			"old_balance": ev.OldBalance,
			"new_balance": ev.NewBalance,
			"source":      ev.Source,
		}).Info("balance changed")
	})
	b.Subscribe(EventTypeUserRegistered, func(_ context.Context, e Event) {
		ev := e.(UserRegisteredEvent)
		fields := log.Fields{"user_id": ev.UserID}
		if ev.RefBy != nil {
			fields["ref_by"] = *ev.RefBy
		}
		log.WithFields(fields).Info("user registered")
	})
	b.Subscribe(EventTypeWithdrawalRequested, func(_ context.Context, e Event) {
		ev := e.(WithdrawalRequestedEvent)
		log.WithFields(log.Fields{
			"user_id": ev.UserID,
			"amount":  ev.Amount,
		}).Info("withdrawal requested")
	})
}
