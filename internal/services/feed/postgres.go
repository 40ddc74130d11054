package feed

import (
	"context"
	"fmt"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/models"
)

// PostgresLister loads the current kitchen-relevant orders for backfill
type PostgresLister struct {
	db *database.DB
}

// NewPostgresLister creates a new backfill lister
func NewPostgresLister(db *database.DB) *PostgresLister {
	return &PostgresLister{db: db}
}

// ListKitchenOrders returns orders awaiting payment or in the kitchen,
// oldest first, with their item lists
func (l *PostgresLister) ListKitchenOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := l.db.Query(ctx, database.ListKitchenOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query kitchen orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.Number,
			&order.NumberFormatted,
			&order.TableNumber,
			&order.Pax,
			&order.Status,
			&order.Version,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	for i := range orders {
		if err := l.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (l *PostgresLister) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := l.db.Query(ctx, database.GetOrderItemsSQL, order.ID)
	if err != nil {
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Name,
			&item.Quantity,
			&item.Status,
			&item.InventoryDeducted,
			&item.Supplemental,
			&item.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order item row: %w", err)
		}

		if item.Supplemental {
			order.NewItems = append(order.NewItems, item)
		} else {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}
