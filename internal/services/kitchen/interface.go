package kitchen

import (
	"context"

	"kitchen-ops/internal/models"
)

// OrderStore loads and persists kitchen orders
type OrderStore interface {
	// GetByID returns the order with the given primary key, or nil
	GetByID(ctx context.Context, id int) (*models.Order, error)

	// GetByNumber returns the first order matching the reference against the
	// order number or its formatted variant, or nil
	GetByNumber(ctx context.Context, ref string) (*models.Order, error)

	// Save persists the full item list and the order status in one versioned
	// update. Returns database.ErrVersionConflict when the order changed
	// since it was read.
	Save(ctx context.Context, order *models.Order, changedBy, note string) error

	// GetStatusHistory returns the order's status log, oldest first
	GetStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusHistory, error)
}

// RecipeResolver maps an item name to its recipe; nil means nothing to deduct
type RecipeResolver interface {
	Resolve(ctx context.Context, itemName string) (*models.Recipe, error)
}

// Ledger debits ingredient stock, clamping at zero
type Ledger interface {
	Deduct(ctx context.Context, ingredientName string, quantity float64, unit string) error
}

// ReadyGuard rejects double-submitted operator actions. Acquire returns
// false when the same action key was already taken within the guard window.
// Release frees a key after a failed action so the manual retry is accepted.
type ReadyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// EventPublisher pushes order snapshots and notifications to subscribers
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event interface{}) error
	PublishNotification(ctx context.Context, msg interface{}) error
}
