package models

import "time"

// Order event types carried on the orders fanout exchange
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
)

// OrderEventMessage is the full-snapshot change notification delivered to
// subscribers of the order collection. Every mutation republishes the whole
// order document.
type OrderEventMessage struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	Order     Order     `json:"order"`
}

// NewOrderEvent builds a snapshot message for the given order
func NewOrderEvent(event string, order *Order) *OrderEventMessage {
	return &OrderEventMessage{
		Event:     event,
		Timestamp: time.Now().UTC(),
		Order:     *order,
	}
}

// ItemReadyMessage is the notification published when an operator marks an
// item ready, for status tickers and audit consumers.
type ItemReadyMessage struct {
	OrderNumber    string    `json:"order_number"`
	ItemName       string    `json:"item_name"`
	OrderCompleted bool      `json:"order_completed"`
	ChangedBy      string    `json:"changed_by"`
	Timestamp      time.Time `json:"timestamp"`
}
