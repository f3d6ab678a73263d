package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TopicCatalogEvents = "catalog_events"
	TopicOrderEvents   = "order_events"
)

type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

type KafkaConsumer struct {
	brokers []string
	groupID string
	logger  *zap.Logger
	mu      sync.Mutex
	readers map[string]*kafka.Reader
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func NewKafkaConsumer(brokers []string, groupID string, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		brokers: brokers,
		groupID: groupID,
		logger:  logger,
		readers: make(map[string]*kafka.Reader),
	}
}

func (kp *KafkaProducer) writer(topic string) *kafka.Writer {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kp.brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	kp.writers[topic] = writer
	return writer
}

// Publish JSON-encodes value and writes it to topic under key.
func (kp *KafkaProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	}
	return kp.writer(topic).WriteMessages(ctx, message)
}

func (kp *KafkaProducer) Close() {
	kp.mu.Lock()
	defer kp.mu.Unlock()
	for _, writer := range kp.writers {
		writer.Close()
	}
}

func (kc *KafkaConsumer) reader(topic string) *kafka.Reader {
	kc.mu.Lock()
	defer kc.mu.Unlock()

	if reader, exists := kc.readers[topic]; exists {
		return reader
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kc.brokers,
		Topic:    topic,
		GroupID:  kc.groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	kc.readers[topic] = reader
	return reader
}

// Consume reads topic until ctx is cancelled, passing each message value to handler.
// Handler errors are logged and the message is committed regardless.
func (kc *KafkaConsumer) Consume(ctx context.Context, topic string, handler func(context.Context, []byte) error) {
	reader := kc.reader(topic)

	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			kc.logger.Error("kafka read failed", zap.String("topic", topic), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if err := handler(ctx, message.Value); err != nil {
			kc.logger.Error("kafka handler failed",
				zap.String("topic", topic),
				zap.Int64("offset", message.Offset),
				zap.Error(err))
		}
	}
}

func (kc *KafkaConsumer) Close() {
	kc.mu.Lock()
	defer kc.mu.Unlock()
	for _, reader := range kc.readers {
		reader.Close()
	}
}

// Event types for async processing
type CatalogEvent struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	SKU       string `json:"sku,omitempty"`
	Stock     int    `json:"stock"`
}

type OrderEvent struct {
	Type        string `json:"type"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       string `json:"total"`
	Currency    string `json:"currency"`
	Customer    string `json:"customer"`
	Phone       string `json:"phone"`
}

const (
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
	EventOrderPlaced        = "order_placed"
	EventOrderStatusChanged = "order_status_changed"
)
