package menu

import (
	"context"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
)

// Resolver maps a sold menu item to its ingredient consumption profile
type Resolver struct {
	store  RecipeStore
	logger *logger.Logger
}

// NewResolver creates a new recipe resolver
func NewResolver(store RecipeStore, log *logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: log,
	}
}

// Resolve looks up the recipe for an item name. Absence is not an error:
// ad hoc modifiers and unmapped items are expected, and mean there is
// nothing to deduct.
func (r *Resolver) Resolve(ctx context.Context, itemName string) (*models.Recipe, error) {
	if itemName == "" {
		return nil, nil
	}

	recipe, err := r.store.GetByName(ctx, itemName)
	if err != nil {
		return nil, err
	}

	if recipe == nil {
		r.logger.Debug("recipe_not_found", "No recipe for item, nothing to deduct", "", map[string]interface{}{
			"item_name": itemName,
		})
		return nil, nil
	}

	return recipe, nil
}
