package models

import "time"

// InventoryRecord is the tracked stock quantity of one ingredient.
// Quantity never goes below zero; deductions clamp instead.
type InventoryRecord struct {
	ID        int       `json:"id,omitempty" db:"id"`
	Name      string    `json:"name" db:"name"`
	Quantity  float64   `json:"quantity" db:"quantity"`
	Unit      string    `json:"unit" db:"unit"`
	Version   int       `json:"version" db:"version"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
