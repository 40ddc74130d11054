package order

import (
	"context"
	"fmt"
	"time"

	"kitchen-ops/internal/logger"
	"kitchen-ops/internal/models"
)

// Publisher pushes order snapshots to subscribers
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event interface{}) error
}

// Service handles order intake: the checkout surface that produces the
// order documents the kitchen consumes.
type Service struct {
	repo      *Repository
	publisher Publisher
	logger    *logger.Logger
}

// NewService creates a new order service. publisher may be nil.
func NewService(repo *Repository, publisher Publisher, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// CreateOrder validates and persists a new order, then publishes its first
// snapshot to the orders fanout
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest, requestID string) (*models.CreateOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seq, err := s.repo.NextSequence(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate order number: %w", err)
	}

	order := &models.Order{
		Number:          models.GenerateOrderNumber(now, seq),
		NumberFormatted: models.FormatOrderNumber(seq),
		TableNumber:     req.TableNumber,
		Pax:             req.Pax,
		Status:          models.StatusPendingPayment,
	}
	for i, item := range req.Items {
		order.Items = append(order.Items, models.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Status:   models.ItemStatusPending,
			Position: i,
		})
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Created order %s", order.Number), requestID, map[string]interface{}{
		"order_number": order.Number,
		"item_count":   len(order.Items),
	})

	if s.publisher != nil {
		if err := s.publisher.PublishOrderEvent(ctx, models.NewOrderEvent(models.EventOrderCreated, order)); err != nil {
			s.logger.Error("snapshot_publish_failed", "Failed to publish order snapshot", requestID, err, map[string]interface{}{
				"order_number": order.Number,
			})
		}
	}

	return &models.CreateOrderResponse{
		OrderNumber: order.Number,
		Status:      string(order.Status),
	}, nil
}

// HealthCheck checks the health of dependencies
func (s *Service) HealthCheck(ctx context.Context) bool {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("health_check_failed", "Database ping failed", "", err, nil)
		return false
	}
	return true
}
