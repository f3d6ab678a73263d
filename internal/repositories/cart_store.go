package repositories

import (
	"context"
	"errors"
	"time"

	"pos-storefront-backend/internal/cart"
	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/pkg/cache"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func cartStoreError(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, cache.ErrCacheMiss) {
		return cart.ErrNotFound
	}
	return err
}

// RawCache is implemented by cache.RedisCache and cache.MemoryCache.
type RawCache interface {
	GetRaw(ctx context.Context, key string) ([]byte, error)
	SetRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error
}

// Redis cart store - one key per session, optional expiry
type redisCartStore struct {
	cache RawCache
	ttl   time.Duration
}

// NewRedisCartStore stores encoded carts in Redis. A zero ttl never expires them.
func NewRedisCartStore(c RawCache, ttl time.Duration) cart.Store {
	return &redisCartStore{cache: c, ttl: ttl}
}

func (s *redisCartStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.cache.GetRaw(ctx, key)
	if err != nil {
		return nil, cartStoreError(err)
	}
	return data, nil
}

func (s *redisCartStore) Save(ctx context.Context, key string, data []byte) error {
	return s.cache.SetRaw(ctx, key, data, s.ttl)
}

// PostgreSQL cart store - cart_snapshots table, upsert on key
type cartSnapshotStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCartSnapshotStore(db *gorm.DB) cart.Store {
	return &cartSnapshotStore{db: db, now: time.Now}
}

func (s *cartSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var snapshot models.CartSnapshot
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&snapshot).Error
	if err != nil {
		return nil, cartStoreError(translateGormError(err))
	}
	return snapshot.Payload, nil
}

func (s *cartSnapshotStore) Save(ctx context.Context, key string, data []byte) error {
	snapshot := models.CartSnapshot{Key: key, Payload: data, UpdatedAt: s.now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}
