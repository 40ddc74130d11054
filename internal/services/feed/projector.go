package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/messaging"
	"kitchen-ops/internal/models"
)

// OrderLister backfills the projector's cache on startup
type OrderLister interface {
	ListKitchenOrders(ctx context.Context) ([]models.Order, error)
}

// Card is one rendered kitchen display entry
type Card struct {
	OrderNumber   string     `json:"order_number"`
	DisplayNumber string     `json:"display_number,omitempty"`
	TableNumber   *int       `json:"table_number,omitempty"`
	Pax           *int       `json:"pax,omitempty"`
	Status        string     `json:"status"`
	PlacedAt      time.Time  `json:"placed_at"`
	Items         []CardItem `json:"items"`
}

// CardItem is one line on a kitchen card
type CardItem struct {
	Name         string            `json:"name"`
	Quantity     int               `json:"quantity"`
	Status       models.ItemStatus `json:"status"`
	Supplemental bool              `json:"supplemental,omitempty"`
}

// Projector maintains a live view of the order collection from snapshot
// events and renders it as a FIFO queue of kitchen cards. It is an
// explicitly constructed instance with its own cache; there is no shared
// module state.
type Projector struct {
	mu     sync.RWMutex
	orders map[string]models.Order
	lister OrderLister
	logger *logger.Logger
}

// NewProjector creates a new feed projector. lister may be nil when no
// startup backfill is wanted.
func NewProjector(lister OrderLister, log *logger.Logger) *Projector {
	return &Projector{
		orders: make(map[string]models.Order),
		lister: lister,
		logger: log,
	}
}

// Backfill seeds the cache from the order store so a restarted feed does
// not start empty while waiting for events.
func (p *Projector) Backfill(ctx context.Context) error {
	if p.lister == nil {
		return nil
	}

	orders, err := p.lister.ListKitchenOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to backfill feed: %w", err)
	}

	p.mu.Lock()
	for _, order := range orders {
		p.orders[order.Number] = order
	}
	p.mu.Unlock()

	p.logger.Info("feed_backfilled", fmt.Sprintf("Backfilled %d orders", len(orders)), "", nil)
	return nil
}

// HandleEvent is the messaging handler for order snapshot messages. A
// kitchen-relevant snapshot replaces the cached document wholesale; a
// terminal one evicts it, so the cache only ever holds orders that can
// appear on the board.
func (p *Projector) HandleEvent(ctx context.Context, body []byte) error {
	var event models.OrderEventMessage
	if err := messaging.ParseMessage(body, &event); err != nil {
		p.logger.Error("message_parsing_failed", "Failed to parse order event", "", err, nil)
		return fmt.Errorf("failed to parse order event: %w", err)
	}

	p.mu.Lock()
	if kitchenRelevant(event.Order.Status) {
		p.orders[event.Order.Number] = event.Order
	} else {
		delete(p.orders, event.Order.Number)
	}
	p.mu.Unlock()

	p.logger.Debug("feed_updated", "Applied order snapshot", "", map[string]interface{}{
		"event":        event.Event,
		"order_number": event.Order.Number,
		"status":       event.Order.Status,
	})

	return nil
}

// Snapshot returns a copy of the cached order collection
func (p *Projector) Snapshot() []models.Order {
	p.mu.RLock()
	defer p.mu.RUnlock()

	orders := make([]models.Order, 0, len(p.orders))
	for _, order := range p.orders {
		orders = append(orders, order)
	}
	return orders
}

// Cards renders the current snapshot
func (p *Projector) Cards() []Card {
	return Render(p.Snapshot())
}

// Render projects an order snapshot onto kitchen cards: only orders awaiting
// payment or in the kitchen are shown, oldest first, so the visual queue
// reflects FIFO order. Pure function; the input is not mutated.
func Render(orders []models.Order) []Card {
	cards := make([]Card, 0, len(orders))

	for _, order := range orders {
		if !kitchenRelevant(order.Status) {
			continue
		}

		card := Card{
			OrderNumber:   order.Number,
			DisplayNumber: order.NumberFormatted,
			TableNumber:   order.TableNumber,
			Pax:           order.Pax,
			Status:        string(order.Status),
			PlacedAt:      order.CreatedAt,
			Items:         make([]CardItem, 0, len(order.Items)+len(order.NewItems)),
		}
		for _, item := range order.Items {
			card.Items = append(card.Items, CardItem{
				Name:     item.Name,
				Quantity: item.Quantity,
				Status:   item.Status,
			})
		}
		for _, item := range order.NewItems {
			card.Items = append(card.Items, CardItem{
				Name:         item.Name,
				Quantity:     item.Quantity,
				Status:       item.Status,
				Supplemental: true,
			})
		}

		cards = append(cards, card)
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].PlacedAt.Equal(cards[j].PlacedAt) {
			return cards[i].OrderNumber < cards[j].OrderNumber
		}
		return cards[i].PlacedAt.Before(cards[j].PlacedAt)
	})

	return cards
}

// kitchenRelevant applies the feed filtering policy. Cancelled orders are
// excluded under both historical spellings; anything not explicitly
// kitchen-facing stays off the board.
func kitchenRelevant(status models.OrderStatus) bool {
	switch strings.ToLower(string(status)) {
	case string(models.StatusPendingPayment), string(models.StatusInKitchen):
		return true
	case "cancelled", "canceled":
		return false
	}
	return false
}
