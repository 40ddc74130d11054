package inventory

import (
	"context"
	"fmt"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/units"
)

// Ledger performs atomic read-modify-write deductions against ingredient
// stock. Quantities are compared in base units; stock never goes below zero.
type Ledger struct {
	store            Store
	cache            StockCache
	persistBaseUnits bool
	logger           *logger.Logger
}

// NewLedger creates a new inventory ledger. cache may be nil when no stock
// mirror is configured.
//
// persistBaseUnits preserves the historical write behavior: the clamped
// result is stored as its base-unit value even when the record's unit is
// kg or l. Set false to convert back into the record's native unit.
func NewLedger(store Store, cache StockCache, persistBaseUnits bool, log *logger.Logger) *Ledger {
	return &Ledger{
		store:            store,
		cache:            cache,
		persistBaseUnits: persistBaseUnits,
		logger:           log,
	}
}

// Deduct debits an ingredient's stock by the given quantity, clamping at
// zero. Empty names, zero and negative quantities, and untracked ingredients
// are soft no-ops: an unmapped ingredient is expected, not an error.
func (l *Ledger) Deduct(ctx context.Context, ingredientName string, quantity float64, unit string) error {
	if ingredientName == "" || quantity == 0 {
		return nil
	}

	requested := units.ToBase(quantity, unit)
	if requested < 0 {
		l.logger.Debug("deduction_skipped", "Negative deduction requested, skipping", "", map[string]interface{}{
			"ingredient": ingredientName,
			"quantity":   quantity,
			"unit":       unit,
		})
		return nil
	}

	record, err := l.store.GetByName(ctx, ingredientName)
	if err != nil {
		return fmt.Errorf("failed to load inventory record: %w", err)
	}
	if record == nil {
		l.logger.Debug("ingredient_untracked", "No inventory record for ingredient, skipping", "", map[string]interface{}{
			"ingredient": ingredientName,
		})
		return nil
	}

	currentBase := units.ToBase(record.Quantity, record.Unit)
	newBase := currentBase - requested
	if newBase < 0 {
		newBase = 0
	}

	persisted := newBase
	if !l.persistBaseUnits {
		persisted = units.FromBase(newBase, record.Unit)
	}

	if err := l.store.UpdateQuantity(ctx, record.ID, persisted, record.Version); err != nil {
		return fmt.Errorf("failed to persist deduction for %s: %w", ingredientName, err)
	}

	l.logger.Debug("inventory_deducted", "Deducted ingredient stock", "", map[string]interface{}{
		"ingredient":     record.Name,
		"requested_base": requested,
		"remaining":      persisted,
	})

	if l.cache != nil {
		if err := l.cache.DecrementStock(ctx, record.Name, requested); err != nil {
			l.logger.Error("stock_mirror_failed", "Failed to mirror deduction to stock cache", "", err, map[string]interface{}{
				"ingredient": record.Name,
			})
		}
	}

	return nil
}
