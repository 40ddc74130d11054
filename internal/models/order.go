package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending-payment"
	StatusInKitchen      OrderStatus = "in-the-kitchen"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

// ItemStatus represents the preparation status of a single line item
type ItemStatus string

const (
	ItemStatusPending ItemStatus = "pending"
	ItemStatusReady   ItemStatus = "ready"
)

// OrderItem represents one line item within an order
type OrderItem struct {
	ID                int        `json:"id,omitempty" db:"id"`
	OrderID           int        `json:"order_id,omitempty" db:"order_id"`
	Name              string     `json:"name" db:"name"`
	Quantity          int        `json:"quantity" db:"quantity"`
	Status            ItemStatus `json:"status" db:"status"`
	InventoryDeducted bool       `json:"inventory_deducted" db:"inventory_deducted"`
	Supplemental      bool       `json:"supplemental,omitempty" db:"supplemental"`
	Position          int        `json:"position,omitempty" db:"position"`
}

// IsPending reports whether the item is still eligible for a ready transition.
// Legacy documents carried an empty status or "in-the-kitchen" on items; both
// count as pending.
func (i *OrderItem) IsPending() bool {
	switch string(i.Status) {
	case "", string(ItemStatusPending), "in-the-kitchen":
		return true
	}
	return false
}

// Order represents a customer order tracked through the kitchen
type Order struct {
	ID              int         `json:"id,omitempty" db:"id"`
	Number          string      `json:"order_number" db:"number"`
	NumberFormatted string      `json:"order_number_formatted,omitempty" db:"number_formatted"`
	TableNumber     *int        `json:"table_number,omitempty" db:"table_number"`
	Pax             *int        `json:"pax,omitempty" db:"pax"`
	Status          OrderStatus `json:"status" db:"status"`
	Version         int         `json:"version" db:"version"`
	Items           []OrderItem `json:"items"`
	NewItems        []OrderItem `json:"new_items,omitempty"`
	CreatedAt       time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at,omitempty" db:"updated_at"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// NextPending returns the first item eligible for a ready transition: primary
// items are scanned in order before any supplemental (newly added) items.
// Returns nil when every item is already ready.
func (o *Order) NextPending() *OrderItem {
	for i := range o.Items {
		if o.Items[i].IsPending() {
			return &o.Items[i]
		}
	}
	for i := range o.NewItems {
		if o.NewItems[i].IsPending() {
			return &o.NewItems[i]
		}
	}
	return nil
}

// AllReady reports whether every line item, including supplemental items, has
// reached ready status.
func (o *Order) AllReady() bool {
	for i := range o.Items {
		if o.Items[i].Status != ItemStatusReady {
			return false
		}
	}
	for i := range o.NewItems {
		if o.NewItems[i].Status != ItemStatusReady {
			return false
		}
	}
	return true
}

// AllItems returns primary and supplemental items as a single slice of
// pointers, in scan order. Mutations through the pointers land on the order.
func (o *Order) AllItems() []*OrderItem {
	items := make([]*OrderItem, 0, len(o.Items)+len(o.NewItems))
	for i := range o.Items {
		items = append(items, &o.Items[i])
	}
	for i := range o.NewItems {
		items = append(items, &o.NewItems[i])
	}
	return items
}

// OrderStatusHistory represents an entry in the order status log
type OrderStatusHistory struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy *string     `json:"changed_by,omitempty" db:"changed_by"`
	ChangedAt time.Time   `json:"timestamp" db:"changed_at"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	TableNumber *int                     `json:"table_number,omitempty"`
	Pax         *int                     `json:"pax,omitempty"`
	Items       []CreateOrderItemRequest `json:"items"`
}

// CreateOrderItemRequest represents one requested line item
type CreateOrderItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

// Validate validates the create order request
func (req *CreateOrderRequest) Validate() error {
	if req.TableNumber != nil && (*req.TableNumber < 1 || *req.TableNumber > 100) {
		return fmt.Errorf("table_number must be between 1 and 100")
	}
	if req.Pax != nil && (*req.Pax < 1 || *req.Pax > 50) {
		return fmt.Errorf("pax must be between 1 and 50")
	}
	return validateItems(req.Items)
}

// validateItems validates the order items
func validateItems(items []CreateOrderItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("items array cannot be empty")
	}
	if len(items) > 20 {
		return fmt.Errorf("items array cannot contain more than 20 items")
	}

	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if len(item.Name) == 0 {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if len(item.Name) > 50 {
			return fmt.Errorf("%s.name must not exceed 50 characters", prefix)
		}
		if item.Quantity < 1 || item.Quantity > 10 {
			return fmt.Errorf("%s.quantity must be between 1 and 10", prefix)
		}
	}

	return nil
}

// GenerateOrderNumber generates a unique order number in format ORD_YYYYMMDD_NNN
func GenerateOrderNumber(date time.Time, sequence int) string {
	dateStr := date.Format("20060102")
	return fmt.Sprintf("ORD_%s_%03d", dateStr, sequence)
}

// FormatOrderNumber renders the short display form shown on kitchen cards
func FormatOrderNumber(sequence int) string {
	return fmt.Sprintf("#%03d", sequence)
}
