package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/models"
)

// PostgresStore persists inventory records
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new inventory store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetByName returns the first inventory record matching the exact name.
// Duplicate names are tolerated; the lowest id wins.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord

	err := s.db.QueryRow(ctx, database.GetInventoryByNameSQL, name).Scan(
		&record.ID,
		&record.Name,
		&record.Quantity,
		&record.Unit,
		&record.Version,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query inventory record: %w", err)
	}

	return &record, nil
}

// UpdateQuantity persists a new quantity conditional on the record version
func (s *PostgresStore) UpdateQuantity(ctx context.Context, id int, quantity float64, version int) error {
	tag, err := s.db.Pool.Exec(ctx, database.UpdateInventoryVersionedSQL, quantity, id, version)
	if err != nil {
		return fmt.Errorf("failed to update inventory record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return database.ErrVersionConflict
	}

	return nil
}
