package models

// IngredientRequirement is one ingredient consumed per unit of a menu item
type IngredientRequirement struct {
	Name            string  `json:"name" db:"ingredient_name"`
	QuantityPerUnit float64 `json:"quantity" db:"quantity_per_unit"`
	Unit            string  `json:"unit" db:"unit"`
}

// Recipe is the ingredient consumption profile of a menu item. Read-only from
// the kitchen's perspective; owned by catalog management.
type Recipe struct {
	ID          int                     `json:"id,omitempty" db:"id"`
	Name        string                  `json:"name" db:"name"`
	Ingredients []IngredientRequirement `json:"ingredients"`
}
