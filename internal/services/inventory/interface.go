package inventory

import (
	"context"

	"kitchen-ops/internal/models"
)

// Store is the persistence port for inventory records
type Store interface {
	// GetByName returns the first inventory record matching the exact name,
	// or nil when the ingredient is not tracked.
	GetByName(ctx context.Context, name string) (*models.InventoryRecord, error)

	// UpdateQuantity persists a new quantity for the record, conditional on
	// the version read alongside it. Returns database.ErrVersionConflict
	// when a concurrent deduction won the race.
	UpdateQuantity(ctx context.Context, id int, quantity float64, version int) error
}

// StockCache mirrors deductions into a fast store for display purposes.
// Mirror failures are logged, never fatal.
type StockCache interface {
	DecrementStock(ctx context.Context, ingredientName string, amount float64) error
}
