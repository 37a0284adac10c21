package repository

import (
	"context"
	"errors"

	"github.com/ArpitPareek/ME-QKART-BACKEND/internal/domain"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
)

// RemoveResult carries the store's acknowledgment of a targeted item pull.
type RemoveResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// CartRepository defines cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Cart, error)
	Create(ctx context.Context, cart *domain.Cart) error
	Save(ctx context.Context, cart *domain.Cart) error
	RemoveItem(ctx context.Context, email, itemID string) (*RemoveResult, error)
}

// ProductRepository is read-only; products are owned by the catalog subsystem.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
}

// UserRepository reads users owned by the identity subsystem.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CheckoutRepository commits the result of a successful checkout: the debited
// user, the drained cart and the outbox event, all in one transaction.
type CheckoutRepository interface {
	CompleteCheckout(ctx context.Context, user *domain.User, cart *domain.Cart, event *domain.CheckoutEvent) error
}

// OutboxRepository is consumed by the poller that publishes checkout events.
type OutboxRepository interface {
	UnprocessedEvents(ctx context.Context, limit int) ([]*domain.CheckoutEvent, error)
	MarkEventAsProcessed(ctx context.Context, id string) error
}
