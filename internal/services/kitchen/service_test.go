package kitchen

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"kitchen-ops/internal/database"
	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
	"kitchen-ops/internal/services/inventory"
)

// fakeOrderStore is an in-memory order store
type fakeOrderStore struct {
	orders  map[int]*models.Order
	saveErr error
	saves   int
}

func newFakeOrderStore(orders ...*models.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[int]*models.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) GetByID(ctx context.Context, id int) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return order, nil
}

func (s *fakeOrderStore) GetByNumber(ctx context.Context, ref string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.Number == ref || order.NumberFormatted == ref {
			return order, nil
		}
	}
	return nil, nil
}

func (s *fakeOrderStore) Save(ctx context.Context, order *models.Order, changedBy, note string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	order.Version++
	return nil
}

func (s *fakeOrderStore) GetStatusHistory(ctx context.Context, orderID int) ([]models.OrderStatusHistory, error) {
	return nil, nil
}

// fakeResolver maps item names to recipes
type fakeResolver struct {
	recipes map[string]*models.Recipe
}

func (r *fakeResolver) Resolve(ctx context.Context, itemName string) (*models.Recipe, error) {
	return r.recipes[itemName], nil
}

// fakeLedger records deduction calls against an in-memory stock map
type fakeLedger struct {
	stock map[string]float64
	calls int
}

func (l *fakeLedger) Deduct(ctx context.Context, name string, quantity float64, unit string) error {
	l.calls++
	remaining := l.stock[name] - quantity
	if remaining < 0 {
		remaining = 0
	}
	l.stock[name] = remaining
	return nil
}

// fakeInventoryStore backs a real inventory.Ledger in scenario tests
type fakeInventoryStore struct {
	records map[string]*models.InventoryRecord
}

func (s *fakeInventoryStore) GetByName(ctx context.Context, name string) (*models.InventoryRecord, error) {
	record, ok := s.records[name]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *fakeInventoryStore) UpdateQuantity(ctx context.Context, id int, quantity float64, version int) error {
	for _, record := range s.records {
		if record.ID == id {
			record.Quantity = quantity
			record.Version++
			return nil
		}
	}
	return errors.New("record not found")
}

// fakeGuard rejects keys it currently holds
type fakeGuard struct {
	seen     map[string]bool
	released int
}

func (g *fakeGuard) Acquire(ctx context.Context, key string) (bool, error) {
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

func (g *fakeGuard) Release(ctx context.Context, key string) error {
	delete(g.seen, key)
	g.released++
	return nil
}

func newTestService(store OrderStore, recipes map[string]*models.Recipe, ledger Ledger) *Service {
	return NewService(store, &fakeResolver{recipes: recipes}, ledger, nil, nil, logger.New("test"))
}

func pendingItem(id int, name string, quantity int) models.OrderItem {
	return models.OrderItem{ID: id, Name: name, Quantity: quantity, Status: models.ItemStatusPending}
}

func readyItem(id int, name string, deducted bool) models.OrderItem {
	return models.OrderItem{ID: id, Name: name, Quantity: 1, Status: models.ItemStatusReady, InventoryDeducted: deducted}
}

func TestMarkNextItemReady_SelectsFirstPending(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items: []models.OrderItem{
			readyItem(1, "Soup", true),
			pendingItem(2, "Burger", 1),
			pendingItem(3, "Fries", 1),
		},
	}
	store := newFakeOrderStore(order)
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})

	result, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1")
	if err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if result.ItemName != "Burger" {
		t.Errorf("expected Burger selected, got %s", result.ItemName)
	}
	if order.Items[1].Status != models.ItemStatusReady {
		t.Errorf("expected second item ready, got %s", order.Items[1].Status)
	}
	if order.Items[2].Status != models.ItemStatusPending {
		t.Errorf("expected third item untouched, got %s", order.Items[2].Status)
	}
	if result.OrderCompleted {
		t.Errorf("order must not complete with a pending item remaining")
	}
	if order.Status != models.StatusInKitchen {
		t.Errorf("expected order status unchanged, got %s", order.Status)
	}
}

func TestMarkNextItemReady_CompletesWhenLastItemReady(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items: []models.OrderItem{
			readyItem(1, "Soup", true),
			pendingItem(2, "Burger", 1),
		},
	}
	store := newFakeOrderStore(order)
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})

	result, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1")
	if err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if !result.OrderCompleted {
		t.Errorf("expected order completed")
	}
	if order.Status != models.StatusCompleted {
		t.Errorf("expected status completed, got %s", order.Status)
	}
	if order.CompletedAt == nil {
		t.Errorf("expected completion timestamp to be stamped")
	}
}

func TestMarkNextItemReady_BurgerScenario(t *testing.T) {
	// One Burger qty 2; the recipe needs 150g of bun per unit; 1000g in stock.
	order := &models.Order{
		ID:     7,
		Number: "ORD_20250101_007",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{pendingItem(1, "Burger", 2)},
	}
	store := newFakeOrderStore(order)

	invStore := &fakeInventoryStore{records: map[string]*models.InventoryRecord{
		"bun": {ID: 1, Name: "bun", Quantity: 1000, Unit: "g"},
	}}
	ledger := inventory.NewLedger(invStore, nil, true, logger.New("test"))

	recipes := map[string]*models.Recipe{
		"Burger": {Name: "Burger", Ingredients: []models.IngredientRequirement{
			{Name: "bun", QuantityPerUnit: 150, Unit: "g"},
		}},
	}
	svc := newTestService(store, recipes, ledger)

	result, err := svc.MarkNextItemReady(context.Background(), "7", "chef", "req-1")
	if err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if got := invStore.records["bun"].Quantity; got != 700 {
		t.Errorf("expected bun stock 700, got %v", got)
	}
	if !order.Items[0].InventoryDeducted {
		t.Errorf("expected inventory_deducted flag set")
	}
	if !result.OrderCompleted {
		t.Errorf("single-item order must complete once its item is ready")
	}
}

func TestMarkNextItemReady_NoRecipeStillFlagsItem(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{pendingItem(1, "Chef Special", 1)},
	}
	store := newFakeOrderStore(order)
	ledger := &fakeLedger{stock: map[string]float64{}}
	svc := newTestService(store, nil, ledger)

	if _, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1"); err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if order.Items[0].Status != models.ItemStatusReady {
		t.Errorf("expected item ready despite missing recipe")
	}
	if !order.Items[0].InventoryDeducted {
		t.Errorf("expected inventory_deducted flag set despite missing recipe")
	}
	if ledger.calls != 0 {
		t.Errorf("expected no ledger calls, got %d", ledger.calls)
	}
}

func TestMarkNextItemReady_IdempotentWhenAllDeducted(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusCompleted,
		Items: []models.OrderItem{
			readyItem(1, "Burger", true),
			readyItem(2, "Fries", true),
		},
	}
	store := newFakeOrderStore(order)
	ledger := &fakeLedger{stock: map[string]float64{"bun": 500}}
	svc := newTestService(store, map[string]*models.Recipe{
		"Burger": {Name: "Burger", Ingredients: []models.IngredientRequirement{
			{Name: "bun", QuantityPerUnit: 150, Unit: "g"},
		}},
	}, ledger)

	// Invoke twice; neither pass may touch inventory.
	for i := 0; i < 2; i++ {
		result, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-"+strconv.Itoa(i))
		if err != nil {
			t.Fatalf("MarkNextItemReady returned error: %v", err)
		}
		if result.Updated {
			t.Errorf("expected nothing to update")
		}
		if result.Message != "no pending items" {
			t.Errorf("expected no-pending-items message, got %q", result.Message)
		}
	}

	if ledger.calls != 0 {
		t.Errorf("expected no ledger calls, got %d", ledger.calls)
	}
	if got := ledger.stock["bun"]; got != 500 {
		t.Errorf("expected stock unchanged at 500, got %v", got)
	}
	if store.saves != 0 {
		t.Errorf("expected no persistence on no-op, got %d saves", store.saves)
	}
}

func TestMarkNextItemReady_SupplementalItemsAfterPrimary(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{readyItem(1, "Burger", true)},
		NewItems: []models.OrderItem{
			{ID: 2, Name: "Extra Fries", Quantity: 1, Status: models.ItemStatusPending, Supplemental: true},
		},
	}
	store := newFakeOrderStore(order)
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})

	result, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1")
	if err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if result.ItemName != "Extra Fries" {
		t.Errorf("expected supplemental item selected, got %s", result.ItemName)
	}
	if !result.OrderCompleted {
		t.Errorf("expected order completed once supplemental items are ready")
	}
}

func TestMarkNextItemReady_RecoversUndeductedReadyItem(t *testing.T) {
	// A previous invocation crashed after marking Soup ready but before the
	// deduction pass; the next action recovers it.
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items: []models.OrderItem{
			readyItem(1, "Soup", false),
			pendingItem(2, "Burger", 1),
		},
	}
	store := newFakeOrderStore(order)
	ledger := &fakeLedger{stock: map[string]float64{"stock": 1000, "bun": 1000}}
	svc := newTestService(store, map[string]*models.Recipe{
		"Soup": {Name: "Soup", Ingredients: []models.IngredientRequirement{
			{Name: "stock", QuantityPerUnit: 250, Unit: "ml"},
		}},
		"Burger": {Name: "Burger", Ingredients: []models.IngredientRequirement{
			{Name: "bun", QuantityPerUnit: 150, Unit: "g"},
		}},
	}, ledger)

	if _, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1"); err != nil {
		t.Fatalf("MarkNextItemReady returned error: %v", err)
	}

	if got := ledger.stock["stock"]; got != 750 {
		t.Errorf("expected straggler Soup deducted, stock = %v", got)
	}
	if got := ledger.stock["bun"]; got != 850 {
		t.Errorf("expected Burger deducted, bun = %v", got)
	}
	if !order.Items[0].InventoryDeducted || !order.Items[1].InventoryDeducted {
		t.Errorf("expected both items flagged as deducted")
	}
}

func TestMarkNextItemReady_FallbackLookupByNumber(t *testing.T) {
	order := &models.Order{
		ID:              42,
		Number:          "ORD_20250101_042",
		NumberFormatted: "#042",
		Status:          models.StatusInKitchen,
		Items:           []models.OrderItem{pendingItem(1, "Burger", 1)},
	}
	store := newFakeOrderStore(order)
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})

	// Non-numeric reference goes straight to the number lookup.
	if _, err := svc.MarkNextItemReady(context.Background(), "ORD_20250101_042", "chef", "req-1"); err != nil {
		t.Fatalf("lookup by number failed: %v", err)
	}

	// A numeric reference that misses the primary key falls back too.
	order.Items[0].Status = models.ItemStatusPending
	order.Items[0].InventoryDeducted = false
	order2 := &models.Order{
		ID:              7,
		Number:          "1",
		NumberFormatted: "#001",
		Status:          models.StatusInKitchen,
		Items:           []models.OrderItem{pendingItem(1, "Fries", 1)},
	}
	store2 := newFakeOrderStore(order2)
	svc2 := newTestService(store2, nil, &fakeLedger{stock: map[string]float64{}})
	if _, err := svc2.MarkNextItemReady(context.Background(), "1", "chef", "req-2"); err != nil {
		t.Fatalf("fallback lookup failed: %v", err)
	}
}

func TestMarkNextItemReady_OrderNotFound(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), nil, &fakeLedger{stock: map[string]float64{}})

	_, err := svc.MarkNextItemReady(context.Background(), "99", "chef", "req-1")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestMarkNextItemReady_EmptyReference(t *testing.T) {
	svc := newTestService(newFakeOrderStore(), nil, &fakeLedger{stock: map[string]float64{}})

	_, err := svc.MarkNextItemReady(context.Background(), "", "chef", "req-1")
	if !errors.Is(err, ErrInvalidOrderRef) {
		t.Errorf("expected ErrInvalidOrderRef, got %v", err)
	}
}

func TestMarkNextItemReady_DuplicateSubmission(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items: []models.OrderItem{
			pendingItem(1, "Burger", 1),
			pendingItem(2, "Fries", 1),
		},
	}
	store := newFakeOrderStore(order)
	// The first click already holds the guard key for item 1.
	guard := &fakeGuard{seen: map[string]bool{"1:1": true}}
	svc := NewService(store, &fakeResolver{}, &fakeLedger{stock: map[string]float64{}}, guard, nil, logger.New("test"))

	_, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1")
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got %v", err)
	}
	if store.saves != 0 {
		t.Errorf("expected no persistence on rejected duplicate, got %d saves", store.saves)
	}
}

func TestMarkNextItemReady_RetryAfterFailedSaveSucceeds(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items: []models.OrderItem{
			pendingItem(1, "Burger", 1),
			pendingItem(2, "Fries", 1),
		},
	}
	store := newFakeOrderStore(order)
	store.saveErr = database.ErrVersionConflict // first action never persists
	guard := &fakeGuard{}
	svc := NewService(store, &fakeResolver{}, &fakeLedger{stock: map[string]float64{}}, guard, nil, logger.New("test"))

	if _, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1"); !errors.Is(err, database.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if guard.released != 1 {
		t.Fatalf("expected guard released after failed save, got %d releases", guard.released)
	}

	// Nothing was persisted, so the operator's retry re-reads the same
	// pending item and must go through.
	store.saveErr = nil
	order.Items[0].Status = models.ItemStatusPending
	order.Items[0].InventoryDeducted = false

	result, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-2")
	if err != nil {
		t.Fatalf("retry after failed save returned error: %v", err)
	}
	if !result.Updated || result.ItemName != "Burger" {
		t.Errorf("expected retry to update Burger, got %+v", result)
	}
	if store.saves != 1 {
		t.Errorf("expected one successful save, got %d", store.saves)
	}
}

func TestMarkNextItemReady_VersionConflictSurfaces(t *testing.T) {
	order := &models.Order{
		ID:     1,
		Number: "ORD_20250101_001",
		Status: models.StatusInKitchen,
		Items:  []models.OrderItem{pendingItem(1, "Burger", 1)},
	}
	store := newFakeOrderStore(order)
	store.saveErr = database.ErrVersionConflict
	svc := newTestService(store, nil, &fakeLedger{stock: map[string]float64{}})

	_, err := svc.MarkNextItemReady(context.Background(), "1", "chef", "req-1")
	if !errors.Is(err, database.ErrVersionConflict) {
		t.Errorf("expected version conflict to surface, got %v", err)
	}
}
