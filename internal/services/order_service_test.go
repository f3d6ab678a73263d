package services

import (
	"context"
	"testing"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"
	"pos-storefront-backend/pkg/messaging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.OrderStatusPending, models.OrderStatusConfirmed, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusConfirmed, models.OrderStatusShipped, true},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusShipped, false},
		{models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed, false},
		{models.OrderStatusPending, models.OrderStatusPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func newOrderFixture() (*OrderService, *stubOrderRepo, *recordingPublisher, *models.Order) {
	repo := newStubOrderRepo()
	publisher := &recordingPublisher{}
	order := &models.Order{ID: uuid.New(), OrderNumber: "ORD-1", Status: models.OrderStatusPending}
	repo.orders[order.ID] = order
	svc := NewOrderService(repo, publisher, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, publisher, order
}

func TestUpdateStatusWalksMachine(t *testing.T) {
	svc, repo, publisher, order := newOrderFixture()
	ctx := context.Background()

	updated, err := svc.UpdateStatus(ctx, order.ID.String(), models.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, "2026-05-01T12:00:00Z", updated.StatusLog[models.OrderStatusConfirmed])
	assert.Equal(t, models.OrderStatusConfirmed, repo.orders[order.ID].Status)

	_, err = svc.UpdateStatus(ctx, order.ID.String(), models.OrderStatusShipped)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID.String(), models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	assert.Equal(t, []string{messaging.EventOrderStatusChanged, messaging.EventOrderStatusChanged}, publisher.types())
}

func TestUpdateStatusErrors(t *testing.T) {
	svc, _, _, order := newOrderFixture()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, order.ID.String(), "lost")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, uuid.NewString(), models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.UpdateStatus(ctx, "not-a-uuid", models.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrdersClampsPaging(t *testing.T) {
	svc, repo, _, _ := newOrderFixture()
	var seen repositories.OrderFilter
	repo.listFn = func(filter repositories.OrderFilter) ([]models.Order, int64, error) {
		seen = filter
		return nil, 0, nil
	}

	list, err := svc.ListOrders(context.Background(), OrderQuery{Status: models.OrderStatusPending, Query: "  0550 ", Sort: "total_desc", Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.NotNil(t, list.Orders)
	assert.Equal(t, 100, seen.Limit)
	assert.Equal(t, 0, seen.Offset)
	assert.Equal(t, "0550", seen.Query)
	assert.Equal(t, "total_desc", seen.Sort)

	_, err = svc.ListOrders(context.Background(), OrderQuery{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteOrder(t *testing.T) {
	svc, repo, _, order := newOrderFixture()

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID.String()))
	assert.Empty(t, repo.orders)
	assert.ErrorIs(t, svc.DeleteOrder(context.Background(), order.ID.String()), ErrOrderNotFound)
}
