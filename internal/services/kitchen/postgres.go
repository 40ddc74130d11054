package kitchen

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/models"
)

// PostgresStore persists kitchen orders
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new order store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetByID returns the order with the given primary key, or nil
func (s *PostgresStore) GetByID(ctx context.Context, id int) (*models.Order, error) {
	return s.getOrder(ctx, database.GetOrderByIDSQL, id)
}

// GetByNumber returns the first order matching the reference against the
// number or formatted-number fields, or nil
func (s *PostgresStore) GetByNumber(ctx context.Context, ref string) (*models.Order, error) {
	return s.getOrder(ctx, database.GetOrderByNumberSQL, ref)
}

func (s *PostgresStore) getOrder(ctx context.Context, sql string, arg interface{}) (*models.Order, error) {
	var order models.Order

	err := s.db.QueryRow(ctx, sql, arg).Scan(
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
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := s.loadItems(ctx, &order); err != nil {
		return nil, err
	}

	return &order, nil
}

// loadItems fills the order's primary and supplemental item lists
func (s *PostgresStore) loadItems(ctx context.Context, order *models.Order) error {
	rows, err := s.db.Query(ctx, database.GetOrderItemsSQL, order.ID)
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

// Save persists the full item list and the order status in a single
// transaction. The order row update is conditional on the version read with
// the order; a concurrent mutation surfaces as ErrVersionConflict.
func (s *PostgresStore) Save(ctx context.Context, order *models.Order, changedBy, note string) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range order.AllItems() {
		_, err := tx.Exec(ctx, database.UpdateOrderItemSQL, item.Status, item.InventoryDeducted, item.ID)
		if err != nil {
			return fmt.Errorf("failed to update order item %d: %w", item.ID, err)
		}
	}

	tag, err := tx.Exec(ctx, database.UpdateOrderVersionedSQL, order.Status, order.CompletedAt, order.ID, order.Version)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return database.ErrVersionConflict
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, order.ID, order.Status, changedBy, note)
	if err != nil {
		return fmt.Errorf("failed to insert status log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	order.Version++
	return nil
}

// GetStatusHistory returns the order's status log, oldest first
func (s *PostgresStore) GetStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusHistory, error) {
	rows, err := s.db.Query(ctx, database.GetOrderStatusHistorySQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusHistory
	for rows.Next() {
		var entry models.OrderStatusHistory
		if err := rows.Scan(&entry.Status, &entry.ChangedBy, &entry.ChangedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan status log row: %w", err)
		}
		history = append(history, entry)
	}

	return history, rows.Err()
}
