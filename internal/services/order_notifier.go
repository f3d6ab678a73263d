package services

import (
	"context"
	"encoding/json"
	"fmt"

	"pos-storefront-backend/pkg/messaging"

	"go.uber.org/zap"
)

// SMSSender is satisfied by pkg/sms.SMSService.
type SMSSender interface {
	Enabled() bool
	SendMessage(ctx context.Context, phone, message string) error
}

// OrderNotifier texts the store contact phone about every new order.
type OrderNotifier struct {
	settings SettingsProvider
	sms      SMSSender
	logger   *zap.Logger
}

func NewOrderNotifier(settings SettingsProvider, sms SMSSender, logger *zap.Logger) *OrderNotifier {
	return &OrderNotifier{settings: settings, sms: sms, logger: logger}
}

// HandleOrderEvent is the order_events consumer handler. Malformed payloads
// are logged and skipped so the consumer keeps moving.
func (n *OrderNotifier) HandleOrderEvent(ctx context.Context, payload []byte) error {
	var event messaging.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		n.logger.Warn("skipping malformed order event", zap.Error(err))
		return nil
	}
	if event.Type != messaging.EventOrderPlaced {
		return nil
	}
	if !n.sms.Enabled() {
		return nil
	}

	settings, err := n.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if settings.ContactPhone == "" {
		n.logger.Debug("no contact phone configured, order notification skipped",
			zap.String("order_number", event.OrderNumber))
		return nil
	}

	message := fmt.Sprintf("طلب جديد %s: %s %s - %s (%s)",
		event.OrderNumber, event.Total, event.Currency, event.Customer, event.Phone)
	if err := n.sms.SendMessage(ctx, settings.ContactPhone, message); err != nil {
		return fmt.Errorf("sending order notification: %w", err)
	}

	n.logger.Info("order notification sent", zap.String("order_number", event.OrderNumber))
	return nil
}
