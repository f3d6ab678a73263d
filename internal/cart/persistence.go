package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	// Namespace prefixes every persisted cart key.
	Namespace = "cart"
	// SchemaVersion is the layout written by Encode.
	SchemaVersion = 1
)

// ErrNotFound is returned by a Store when nothing is stored under the key.
var ErrNotFound = errors.New("cart: not found")

var (
	errMalformed          = errors.New("cart: malformed persisted state")
	errUnsupportedVersion = errors.New("cart: unsupported schema version")
)

// Store is a durable key-value slot for encoded carts. Save overwrites the
// previous value in full.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Key returns the storage key of the cart belonging to sessionID.
func Key(sessionID string) string {
	return Namespace + ":" + sessionID
}

type persistedCart struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// Encode serializes items in the current schema. Totals are never stored.
func Encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(persistedCart{Version: SchemaVersion, Items: items})
}

// Decode parses data written by Encode or by the unversioned layout, which was a
// bare JSON array of line items and is migrated in place.
func Decode(data []byte) ([]LineItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errMalformed)
	}

	var items []LineItem
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
	case '{':
		var doc persistedCart
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformed, err)
		}
		if doc.Version != SchemaVersion {
			return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, doc.Version)
		}
		items = doc.Items
	default:
		return nil, fmt.Errorf("%w: unexpected payload", errMalformed)
	}

	if err := validateItems(items); err != nil {
		return nil, err
	}
	return items, nil
}

func validateItems(items []LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := item.Product.validate(); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity %d for %s", errMalformed, item.Quantity, item.Product.ID)
		}
		if _, dup := seen[item.Product.ID]; dup {
			return fmt.Errorf("%w: duplicate product %s", errMalformed, item.Product.ID)
		}
		seen[item.Product.ID] = struct{}{}
	}
	return nil
}

// Persister wraps a Store with the cart codec. It never mutates a cart itself.
type Persister struct {
	store  Store
	logger *zap.Logger
}

func NewPersister(store Store, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{store: store, logger: logger}
}

func (p *Persister) Save(ctx context.Context, key string, items []LineItem) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	return p.store.Save(ctx, key, data)
}

// Load returns the items stored under key. Any failure is logged and yields an
// empty collection.
func (p *Persister) Load(ctx context.Context, key string) []LineItem {
	data, err := p.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.logger.Warn("cart load failed, starting empty", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	items, err := Decode(data)
	if err != nil {
		p.logger.Warn("discarding persisted cart", zap.String("key", key), zap.Error(err))
		return nil
	}
	return items
}
