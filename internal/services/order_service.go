package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/pkg/messaging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// orderTransitions lists the statuses each status may move to.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered},
}

func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validOrderStatus(status string) bool {
	switch status {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusShipped,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	}
	return false
}

type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

type OrderQuery struct {
	Status string
	Query  string
	Sort   string
	Limit  int
	Offset int
}

type OrderList struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *OrderService) ListOrders(ctx context.Context, q OrderQuery) (*OrderList, error) {
	if q.Status != "" && !validOrderStatus(q.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}
	limit, offset := clampPage(q.Limit, q.Offset)
	orders, total, err := s.orderRepo.List(ctx, repositories.OrderFilter{
		Status: q.Status,
		Query:  strings.TrimSpace(q.Query),
		Sort:   q.Sort,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &OrderList{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func parseOrderID(id string) (uuid.UUID, error) {
	oid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrOrderNotFound
	}
	return oid, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseOrderID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order along the status machine and records when the
// new status was reached.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if !validOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, order.Status, status)
	}

	now := s.now()
	previous := order.Status
	order.Status = status
	order.UpdatedAt = now
	if order.StatusLog == nil {
		order.StatusLog = models.JSONB{}
	}
	order.StatusLog[status] = now.UTC().Format(time.RFC3339)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", previous),
		zap.String("to", status))
	publishOrderEvent(ctx, s.publisher, s.logger, messaging.EventOrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	oid, err := parseOrderID(id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}
