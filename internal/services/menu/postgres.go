package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/models"
)

// PostgresStore loads recipes from the menu tables
type PostgresStore struct {
	db *database.DB
}

// NewPostgresStore creates a new menu store
func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetByName returns the first menu item matching the exact name along with
// its ordered ingredient requirements, or nil when no entry exists.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (*models.Recipe, error) {
	var recipe models.Recipe

	err := s.db.QueryRow(ctx, database.GetMenuItemByNameSQL, name).Scan(&recipe.ID, &recipe.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}

	rows, err := s.db.Query(ctx, database.GetMenuIngredientsSQL, recipe.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing models.IngredientRequirement
		if err := rows.Scan(&ing.Name, &ing.QuantityPerUnit, &ing.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient row: %w", err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingredient rows: %w", err)
	}

	return &recipe, nil
}
