package kitchen

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
)

func TestRouteOrders_MarkReady(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{pendingItem(1, "Burger", 1)},
	}
	store := newFakeOrderStore(order)
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})
	mux := NewHandler(svc, logger.New("test")).SetupRoutes()

	req := httptest.NewRequest(http.MethodPost, "/orders/1/ready", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result ReadyResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.ItemName != "Burger" || !result.Updated {
		t.Errorf("expected Burger updated, got %+v", result)
	}
}

func TestRouteOrders_DuplicateReturnsConflict(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{pendingItem(1, "Burger", 1)},
	}
	store := newFakeOrderStore(order)
	guard := &fakeGuard{seen: map[string]bool{"1:1": true}}
	svc := NewService(store, &fakeResolver{}, &fakeLedger{stock: map[string]float64{}}, guard, nil, logger.New("test"))
	mux := NewHandler(svc, logger.New("test")).SetupRoutes()

	req := httptest.NewRequest(http.MethodPost, "/orders/1/ready", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouteOrders_UnknownOrder(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), nil, &fakeLedger{stock: map[string]float64{}})
	mux := NewHandler(svc, logger.New("test")).SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/orders/99", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
