package menu

import (
	"context"

	"kitchen-ops/internal/models"
)

// RecipeStore loads recipes from the menu catalog
type RecipeStore interface {
	// GetByName returns the first catalog entry matching the exact name,
	// or nil when no entry exists.
	GetByName(ctx context.Context, name string) (*models.Recipe, error)
}
