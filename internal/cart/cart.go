// Package cart holds the session cart: an ordered collection of line items with
// derived totals, persisted through a Store after every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrInvalidQuantity is returned by AddItem when the quantity is below one.
	ErrInvalidQuantity = errors.New("cart: invalid quantity")
	// ErrInvalidProduct is returned by AddItem for a snapshot with no id or negative price/stock.
	ErrInvalidProduct = errors.New("cart: invalid product")
)

// Product is the product snapshot a line item is priced from. It is captured when
// the item is added and never refreshed afterwards.
type Product struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	NameEn   string          `json:"name_en,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"image_url,omitempty"`
}

// Title returns the display title for lang, falling back to the Arabic name.
func (p Product) Title(lang string) string {
	if lang == "en" && p.NameEn != "" {
		return p.NameEn
	}
	if p.Name == "" {
		return p.NameEn
	}
	return p.Name
}

func (p Product) validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing product id", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for %s", ErrInvalidProduct, p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: negative stock for %s", ErrInvalidProduct, p.ID)
	}
	return nil
}

type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total is the unit price frozen at add-time multiplied by the quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Snapshot is a copy of the collection together with its derived totals.
type Snapshot struct {
	Items      []LineItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Cart is safe for concurrent use. All mutations are serialized and each one
// recomputes the totals and saves the full collection before returning.
//
// The cart does not enforce the product stock ceiling. Callers clamp requested
// quantities against Product.Stock before calling AddItem or UpdateQuantity.
type Cart struct {
	mu         sync.RWMutex
	key        string
	items      []LineItem
	totalItems int
	totalPrice decimal.Decimal
	persister  *Persister
	logger     *zap.Logger
	now        func() time.Time
	touched    time.Time
}

type Option func(*Cart)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cart) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cart) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty cart bound to key. A nil persister keeps the cart in memory only.
func New(key string, persister *Persister, opts ...Option) *Cart {
	c := &Cart{
		key:        key,
		persister:  persister,
		logger:     zap.NewNop(),
		now:        time.Now,
		totalPrice: decimal.Zero,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.touched = c.now()
	return c
}

// Load builds a cart for key and hydrates it once from the persister.
// Missing or malformed persisted data yields an empty cart.
func Load(ctx context.Context, key string, persister *Persister, opts ...Option) *Cart {
	c := New(key, persister, opts...)
	if persister == nil {
		return c
	}
	c.items = persister.Load(ctx, key)
	c.recompute()
	return c
}

// AddItem adds quantity units of product. An existing line item for the same
// product id has its quantity increased and keeps its original snapshot;
// otherwise a new line item is appended. An increase that would overflow the
// line quantity is rejected with ErrInvalidQuantity and nothing changes.
func (c *Cart) AddItem(ctx context.Context, product Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if err := product.validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ID); i >= 0 {
		if quantity > math.MaxInt-c.items[i].Quantity {
			return fmt.Errorf("%w: %d more of %s overflows the line quantity", ErrInvalidQuantity, quantity, product.ID)
		}
		c.items[i].Quantity += quantity
	} else {
		c.items = append(c.items, LineItem{Product: product, Quantity: quantity})
	}
	c.commit(ctx)
	return nil
}

// RemoveItem deletes the line item for productID. Absent ids are ignored.
func (c *Cart) RemoveItem(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(productID)
	c.commit(ctx)
}

// UpdateQuantity replaces the quantity of productID. A quantity of zero or less
// removes the line item. Absent ids are ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.remove(productID)
	} else if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
	c.commit(ctx)
}

// Subtract takes the quantities of items, typically an earlier Snapshot, out of
// the cart. Lines that drop to zero or below are removed; units added since the
// snapshot stay.
func (c *Cart) Subtract(ctx context.Context, items []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, taken := range items {
		i := c.indexOf(taken.Product.ID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity <= taken.Quantity {
			c.remove(taken.Product.ID)
		} else {
			c.items[i].Quantity -= taken.Quantity
		}
	}
	c.commit(ctx)
}

func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.commit(ctx)
}

func (c *Cart) IsInCart(productID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(productID) >= 0
}

// ItemQuantity returns the quantity held for productID, or zero.
func (c *Cart) ItemQuantity(productID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i].Quantity
	}
	return 0
}

// Item returns the line item for productID.
func (c *Cart) Item(productID string) (LineItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

func (c *Cart) Items() []LineItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyItems()
}

func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalItems
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalPrice
}

func (c *Cart) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Items:      c.copyItems(),
		TotalItems: c.totalItems,
		TotalPrice: c.totalPrice,
	}
}

func (c *Cart) Key() string {
	return c.key
}

// LastTouched reports when the cart was last handed out by a Registry or mutated.
func (c *Cart) LastTouched() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.touched
}

func (c *Cart) touch() {
	c.mu.Lock()
	c.touched = c.now()
	c.mu.Unlock()
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

func (c *Cart) copyItems() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// commit must be called with the write lock held.
func (c *Cart) commit(ctx context.Context) {
	c.recompute()
	c.touched = c.now()
	if c.persister == nil {
		return
	}
	if err := c.persister.Save(ctx, c.key, c.items); err != nil {
		c.logger.Error("cart save failed", zap.String("key", c.key), zap.Error(err))
	}
}

func (c *Cart) recompute() {
	items, price := Totals(c.items)
	c.totalItems = items
	c.totalPrice = price
}

// Totals derives the item count and price of items from scratch.
func Totals(items []LineItem) (int, decimal.Decimal) {
	count := 0
	price := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		price = price.Add(item.Total())
	}
	return count, price
}
