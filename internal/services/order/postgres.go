package order

import (
	"context"
	"fmt"
	"time"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/models"
)

// Repository persists new orders
type Repository struct {
	db *database.DB
}

// NewRepository creates a new order repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// NextSequence returns the next order sequence number for the given day
func (r *Repository) NextSequence(ctx context.Context, date time.Time) (int, error) {
	pattern := fmt.Sprintf("ORD_%s_%%", date.Format("20060102"))

	var seq int
	err := r.db.QueryRow(ctx, database.GetNextOrderSequenceSQL, pattern).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// InsertOrder persists the order and its items in one transaction, filling
// in the generated identifiers and timestamps
func (r *Repository) InsertOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		order.Number,
		order.NumberFormatted,
		order.TableNumber,
		order.Pax,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err = tx.QueryRow(ctx, database.InsertOrderItemSQL,
			order.ID,
			item.Name,
			item.Quantity,
			item.Status,
			item.Supplemental,
			item.Position,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL,
		order.ID, order.Status, "order-service", "Order created at checkout")
	if err != nil {
		return fmt.Errorf("failed to insert status log: %w", err)
	}

	return tx.Commit(ctx)
}

// Ping tests the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
