package kitchen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
)

var (
	ErrInvalidOrderRef  = errors.New("order reference is required")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ReadyResult reports the outcome of an "order ready" action for UI feedback
type ReadyResult struct {
	OrderNumber    string `json:"order_number"`
	ItemName       string `json:"item_name,omitempty"`
	Updated        bool   `json:"updated"`
	OrderCompleted bool   `json:"order_completed"`
	Message        string `json:"message,omitempty"`
}

// Service is the deduction orchestrator: it advances item preparation state,
// debits recipe ingredients from the inventory ledger exactly once per item,
// and completes orders when every item is ready.
type Service struct {
	orders    OrderStore
	recipes   RecipeResolver
	ledger    Ledger
	guard     ReadyGuard
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new kitchen service. guard and publisher may be nil.
func NewService(orders OrderStore, recipes RecipeResolver, ledger Ledger, guard ReadyGuard, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		orders:    orders,
		recipes:   recipes,
		ledger:    ledger,
		guard:     guard,
		publisher: publisher,
		logger:    log,
	}
}

// MarkNextItemReady handles one "order ready" operator action: the first
// pending item transitions to ready, every ready-but-undeducted item has its
// recipe debited from the ledger, and the order completes when nothing is
// left pending. Re-invocation skips already-deducted items, so the action is
// idempotent per item.
func (s *Service) MarkNextItemReady(ctx context.Context, orderRef, changedBy, requestID string) (*ReadyResult, error) {
	if orderRef == "" {
		return nil, ErrInvalidOrderRef
	}

	order, err := s.loadOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	item := order.NextPending()
	if item == nil {
		s.logger.Debug("no_pending_items", "All items already ready, nothing to update", requestID, map[string]interface{}{
			"order_number": order.Number,
		})
		return &ReadyResult{
			OrderNumber: order.Number,
			Updated:     false,
			Message:     "no pending items",
		}, nil
	}

	var guardKey string
	if s.guard != nil {
		key := fmt.Sprintf("%d:%d", order.ID, item.ID)
		ok, err := s.guard.Acquire(ctx, key)
		if err != nil {
			s.logger.Error("guard_check_failed", "Idempotency guard unavailable, continuing", requestID, err, nil)
		} else if !ok {
			return nil, ErrDuplicateRequest
		} else {
			guardKey = key
		}
	}

	item.Status = models.ItemStatusReady

	// Deduction pass: every ready item not yet debited, not just the one
	// selected above. A previous invocation that failed after marking ready
	// is recovered here.
	for _, it := range order.AllItems() {
		if it.Status != models.ItemStatusReady || it.InventoryDeducted {
			continue
		}
		if err := s.deductItem(ctx, it, requestID); err != nil {
			s.releaseGuard(ctx, guardKey, requestID)
			return nil, err
		}
		it.InventoryDeducted = true
	}

	completed := order.AllReady()
	note := fmt.Sprintf("Item %s marked ready", item.Name)
	if completed {
		order.Status = models.StatusCompleted
		now := time.Now().UTC()
		order.CompletedAt = &now
		note = "All items ready, order completed"
	}

	if err := s.orders.Save(ctx, order, changedBy, note); err != nil {
		s.releaseGuard(ctx, guardKey, requestID)
		return nil, err
	}

	s.publishUpdates(ctx, order, item.Name, changedBy, completed, requestID)

	s.logger.Info("item_marked_ready", fmt.Sprintf("Marked %s ready on order %s", item.Name, order.Number), requestID, map[string]interface{}{
		"order_number":    order.Number,
		"item_name":       item.Name,
		"order_completed": completed,
	})

	return &ReadyResult{
		OrderNumber:    order.Number,
		ItemName:       item.Name,
		Updated:        true,
		OrderCompleted: completed,
	}, nil
}

// GetOrder returns the order document for the operator surface
func (s *Service) GetOrder(ctx context.Context, orderRef string) (*models.Order, error) {
	if orderRef == "" {
		return nil, ErrInvalidOrderRef
	}

	order, err := s.loadOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderHistory returns the order's status log, oldest first
func (s *Service) GetOrderHistory(ctx context.Context, orderRef string) ([]models.OrderStatusHistory, error) {
	order, err := s.GetOrder(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	return s.orders.GetStatusHistory(ctx, order.ID)
}

// loadOrder resolves an order reference: numeric references are tried as the
// primary key first, then any reference falls back to the order-number
// fields. The fallback is a recovery path for inconsistent identifiers.
func (s *Service) loadOrder(ctx context.Context, ref string) (*models.Order, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}
	return s.orders.GetByNumber(ctx, ref)
}

// releaseGuard frees the action key after a failed attempt so the manual
// retry goes through instead of waiting out the guard TTL
func (s *Service) releaseGuard(ctx context.Context, key, requestID string) {
	if s.guard == nil || key == "" {
		return
	}
	if err := s.guard.Release(ctx, key); err != nil {
		s.logger.Error("guard_release_failed", "Failed to release action guard", requestID, err, nil)
	}
}

// deductItem debits the item's recipe from the ledger. A missing recipe
// means nothing to deduct; the caller still flags the item as deducted.
func (s *Service) deductItem(ctx context.Context, item *models.OrderItem, requestID string) error {
	recipe, err := s.recipes.Resolve(ctx, item.Name)
	if err != nil {
		return fmt.Errorf("failed to resolve recipe for %s: %w", item.Name, err)
	}
	if recipe == nil {
		return nil
	}

	for _, ing := range recipe.Ingredients {
		amount := ing.QuantityPerUnit * float64(item.Quantity)
		if err := s.ledger.Deduct(ctx, ing.Name, amount, ing.Unit); err != nil {
			return fmt.Errorf("failed to deduct %s for item %s: %w", ing.Name, item.Name, err)
		}
	}

	return nil
}

// publishUpdates pushes the new order snapshot and a ready notification.
// Both are best-effort; the persisted state is authoritative.
func (s *Service) publishUpdates(ctx context.Context, order *models.Order, itemName, changedBy string, completed bool, requestID string) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishOrderEvent(ctx, models.NewOrderEvent(models.EventOrderUpdated, order)); err != nil {
		s.logger.Error("snapshot_publish_failed", "Failed to publish order snapshot", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}

	notification := &models.ItemReadyMessage{
		OrderNumber:    order.Number,
		ItemName:       itemName,
		OrderCompleted: completed,
		ChangedBy:      changedBy,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.publisher.PublishNotification(ctx, notification); err != nil {
		s.logger.Error("notification_publish_failed", "Failed to publish ready notification", requestID, err, map[string]interface{}{
			"order_number": order.Number,
		})
	}
}
