package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
)

func orderAt(number string, status models.OrderStatus, createdAt time.Time) models.Order {
	return models.Order{
		Number:    number,
		Status:    status,
		CreatedAt: createdAt,
		Items: []models.OrderItem{
			{Name: "Burger", Quantity: 1, Status: models.ItemStatusPending},
		},
	}
}

func TestRender_FiltersKitchenStatuses(t *testing.T) {
	now := time.Now()
	orders := []models.Order{
		orderAt("ORD_1", models.StatusPendingPayment, now),
		orderAt("ORD_2", models.StatusInKitchen, now),
		orderAt("ORD_3", models.StatusCompleted, now),
		orderAt("ORD_4", models.StatusCancelled, now),
		orderAt("ORD_5", "canceled", now),
		orderAt("ORD_6", "refunded", now),
	}

	cards := Render(orders)

	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	for _, card := range cards {
		if card.OrderNumber != "ORD_1" && card.OrderNumber != "ORD_2" {
			t.Errorf("unexpected card %s", card.OrderNumber)
		}
	}
}

func TestRender_CaseInsensitiveStatuses(t *testing.T) {
	now := time.Now()
	orders := []models.Order{
		orderAt("ORD_1", "Pending-Payment", now),
		orderAt("ORD_2", "IN-THE-KITCHEN", now),
		orderAt("ORD_3", "CANCELLED", now),
	}

	cards := Render(orders)

	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
}

func TestRender_SortsOldestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		orderAt("ORD_3", models.StatusInKitchen, base.Add(2*time.Minute)),
		orderAt("ORD_1", models.StatusInKitchen, base),
		orderAt("ORD_2", models.StatusInKitchen, base.Add(time.Minute)),
	}

	cards := Render(orders)

	want := []string{"ORD_1", "ORD_2", "ORD_3"}
	for i, number := range want {
		if cards[i].OrderNumber != number {
			t.Errorf("position %d: expected %s, got %s", i, number, cards[i].OrderNumber)
		}
	}
}

func TestRender_IncludesSupplementalItems(t *testing.T) {
	order := orderAt("ORD_1", models.StatusInKitchen, time.Now())
	order.NewItems = []models.OrderItem{
		{Name: "Extra Fries", Quantity: 1, Status: models.ItemStatusPending, Supplemental: true},
	}

	cards := Render([]models.Order{order})

	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if len(cards[0].Items) != 2 {
		t.Fatalf("expected 2 card items, got %d", len(cards[0].Items))
	}
	last := cards[0].Items[1]
	if last.Name != "Extra Fries" || !last.Supplemental {
		t.Errorf("expected supplemental Extra Fries last, got %+v", last)
	}
}

func TestHandleEvent_ReplacesCachedSnapshot(t *testing.T) {
	projector := NewProjector(nil, logger.New("test"))

	order := orderAt("ORD_1", models.StatusInKitchen, time.Now())
	body, _ := json.Marshal(models.NewOrderEvent(models.EventOrderCreated, &order))
	if err := projector.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if cards := projector.Cards(); len(cards) != 1 {
		t.Fatalf("expected 1 card after create, got %d", len(cards))
	}

	// The completion snapshot evicts the document entirely, not just off
	// the rendered board.
	order.Status = models.StatusCompleted
	body, _ = json.Marshal(models.NewOrderEvent(models.EventOrderUpdated, &order))
	if err := projector.HandleEvent(context.Background(), body); err != nil {
		t.Fatalf("HandleEvent returned error: %v", err)
	}

	if cards := projector.Cards(); len(cards) != 0 {
		t.Fatalf("expected empty board after completion, got %d cards", len(cards))
	}
	if snap := projector.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected completed order evicted from cache, got %d entries", len(snap))
	}
}

func TestHandleEvent_RejectsMalformedPayload(t *testing.T) {
	projector := NewProjector(nil, logger.New("test"))

	if err := projector.HandleEvent(context.Background(), []byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
