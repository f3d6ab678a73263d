package services

import (
	"context"
	"errors"
	"time"
)

// Cache is the subset of pkg/cache.RedisCache the services rely on.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher is satisfied by pkg/messaging.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrProductNotFound         = errors.New("product not found")
	ErrProductUnavailable      = errors.New("product is not available")
	ErrOutOfStock              = errors.New("product is out of stock")
	ErrCategoryNotFound        = errors.New("category not found")
	ErrCategoryInUse           = errors.New("category still has products")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrNoMessagingNumber       = errors.New("store messaging number is not configured")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidRefreshToken     = errors.New("invalid refresh token")
)

const (
	LangArabic  = "ar"
	LangEnglish = "en"
)

func normalizeLang(lang string) string {
	if lang == LangEnglish {
		return LangEnglish
	}
	return LangArabic
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
