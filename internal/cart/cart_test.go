package cart

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, price int64) Product {
	return Product{ID: id, Name: "منتج " + id, NameEn: "Product " + id, Price: decimal.NewFromInt(price), Stock: 50}
}

func newTestCart(store Store) *Cart {
	return New(Key("session-1"), NewPersister(store, nil))
}

func assertConsistent(t *testing.T, c *Cart) {
	t.Helper()
	count, price := Totals(c.Items())
	assert.Equal(t, count, c.TotalItems())
	assert.True(t, price.Equal(c.TotalPrice()), "expected total %s, got %s", price, c.TotalPrice())
}

func TestAddSameProductTwiceMergesQuantity(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	require.NoError(t, c.AddItem(ctx, product("P1", 100), 2))
	require.NoError(t, c.AddItem(ctx, product("P1", 100), 3))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, c.TotalItems())
	assert.True(t, decimal.NewFromInt(500).Equal(c.TotalPrice()))
}

func TestRemoveItemLeavesOthers(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	require.NoError(t, c.AddItem(ctx, product("P1", 100), 1))
	require.NoError(t, c.AddItem(ctx, product("P2", 50), 2))
	c.RemoveItem(ctx, "P1")

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "P2", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 2, c.TotalItems())
	assert.True(t, decimal.NewFromInt(100).Equal(c.TotalPrice()))
}

func TestUpdateQuantityToZeroRemoves(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	require.NoError(t, c.AddItem(ctx, product("P1", 100), 3))
	c.UpdateQuantity(ctx, "P1", 0)

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestUpdateQuantityNonPositiveMatchesRemove(t *testing.T) {
	ctx := context.Background()
	for _, qty := range []int{0, -1} {
		updated := newTestCart(NewMemoryStore())
		removed := newTestCart(NewMemoryStore())
		for _, c := range []*Cart{updated, removed} {
			require.NoError(t, c.AddItem(ctx, product("P1", 10), 2))
			require.NoError(t, c.AddItem(ctx, product("P2", 20), 1))
		}

		updated.UpdateQuantity(ctx, "P1", qty)
		removed.RemoveItem(ctx, "P1")

		assert.Equal(t, removed.Items(), updated.Items(), "quantity %d", qty)
		assert.False(t, updated.IsInCart("P1"))
	}
}

func TestUpdateQuantityReplaces(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	require.NoError(t, c.AddItem(ctx, product("P1", 25), 1))
	c.UpdateQuantity(ctx, "P1", 4)
	c.UpdateQuantity(ctx, "missing", 7)

	assert.Equal(t, 4, c.ItemQuantity("P1"))
	assert.Equal(t, 0, c.ItemQuantity("missing"))
	assert.Len(t, c.Items(), 1)
	assertConsistent(t, c)
}

func TestRemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	require.NoError(t, c.AddItem(ctx, product("P1", 5), 1))

	c.RemoveItem(ctx, "nope")

	assert.Len(t, c.Items(), 1)
}

func TestClearEmptiesAndPersistsEmptyArray(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newTestCart(store)
	require.NoError(t, c.AddItem(ctx, product("P1", 100), 1))
	require.NoError(t, c.AddItem(ctx, product("P2", 40), 3))

	c.Clear(ctx)

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())

	raw, err := store.Load(ctx, c.Key())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[]}`, string(raw))
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	assert.ErrorIs(t, c.AddItem(ctx, product("P1", 10), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(ctx, product("P1", 10), -3), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(ctx, product(" ", 10), 1), ErrInvalidProduct)
	assert.ErrorIs(t, c.AddItem(ctx, product("P1", -1), 1), ErrInvalidProduct)

	assert.Empty(t, c.Items())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	for _, id := range []string{"C", "A", "B"} {
		require.NoError(t, c.AddItem(ctx, product(id, 1), 1))
	}
	require.NoError(t, c.AddItem(ctx, product("A", 1), 2))

	var ids []string
	for _, item := range c.Items() {
		ids = append(ids, item.Product.ID)
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids)
}

func TestPriceFrozenAtAddTime(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	require.NoError(t, c.AddItem(ctx, product("P1", 100), 1))
	require.NoError(t, c.AddItem(ctx, product("P1", 80), 1))

	item, ok := c.Item("P1")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(100).Equal(item.Product.Price))
	assert.True(t, decimal.NewFromInt(200).Equal(c.TotalPrice()))
}

func TestSequenceKeepsUniquenessAndTotals(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	ops := []func(){
		func() { _ = c.AddItem(ctx, product("A", 3), 2) },
		func() { _ = c.AddItem(ctx, product("B", 7), 1) },
		func() { _ = c.AddItem(ctx, product("A", 3), 4) },
		func() { c.UpdateQuantity(ctx, "B", 9) },
		func() { _ = c.AddItem(ctx, product("C", 11), 1) },
		func() { c.RemoveItem(ctx, "A") },
		func() { _ = c.AddItem(ctx, product("A", 3), 1) },
		func() { c.UpdateQuantity(ctx, "C", -2) },
	}

	for _, op := range ops {
		op()
		seen := map[string]bool{}
		for _, item := range c.Items() {
			assert.False(t, seen[item.Product.ID], "duplicate %s", item.Product.ID)
			assert.GreaterOrEqual(t, item.Quantity, 1)
			seen[item.Product.ID] = true
		}
		assertConsistent(t, c)
	}

	assert.Equal(t, 10, c.TotalItems())
	assert.True(t, decimal.NewFromInt(66).Equal(c.TotalPrice()))
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	require.NoError(t, c.AddItem(ctx, product("P1", 10), 1))

	snap := c.Snapshot()
	snap.Items[0].Quantity = 99

	assert.Equal(t, 1, c.ItemQuantity("P1"))
}

func TestProductTitle(t *testing.T) {
	p := Product{ID: "x", Name: "طابعة", NameEn: "Printer"}
	assert.Equal(t, "طابعة", p.Title("ar"))
	assert.Equal(t, "Printer", p.Title("en"))
	assert.Equal(t, "Printer", Product{NameEn: "Printer"}.Title("ar"))
}

func TestAddItemRejectsQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newTestCart(store)

	require.NoError(t, c.AddItem(ctx, product("P1", 1), math.MaxInt))
	assert.ErrorIs(t, c.AddItem(ctx, product("P1", 1), 1), ErrInvalidQuantity)

	assert.Equal(t, math.MaxInt, c.ItemQuantity("P1"))
	assert.Equal(t, math.MaxInt, c.TotalItems())
	assert.True(t, c.TotalPrice().IsPositive())
	assertConsistent(t, c)

	reloaded := Load(ctx, c.Key(), NewPersister(store, nil))
	assert.Equal(t, math.MaxInt, reloaded.ItemQuantity("P1"))
}

func TestConcurrentMutationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	ids := []string{"P1", "P2", "P3", "P4"}

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := ids[(w+i)%len(ids)]
				switch i % 5 {
				case 3:
					c.UpdateQuantity(ctx, id, i%4)
				case 4:
					if w%4 == 0 {
						c.RemoveItem(ctx, id)
					} else {
						_ = c.Snapshot()
					}
				default:
					assert.NoError(t, c.AddItem(ctx, product(id, int64(w+1)), 1))
				}
			}
		}(w)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, item := range c.Items() {
		assert.False(t, seen[item.Product.ID], "duplicate line for %s", item.Product.ID)
		seen[item.Product.ID] = true
		assert.GreaterOrEqual(t, item.Quantity, 1)
	}
	assertConsistent(t, c)
}

func TestConcurrentAddsOfOneProductMerge(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.AddItem(ctx, product("P1", 3), 1))
		}()
	}
	wg.Wait()

	require.Len(t, c.Items(), 1)
	assert.Equal(t, 200, c.ItemQuantity("P1"))
	assert.Equal(t, "600", c.TotalPrice().String())
	assertConsistent(t, c)
}

func TestSubtractKeepsUnitsAddedAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	c := newTestCart(store)
	require.NoError(t, c.AddItem(ctx, product("P1", 10), 2))
	require.NoError(t, c.AddItem(ctx, product("P2", 5), 1))
	taken := c.Snapshot().Items

	require.NoError(t, c.AddItem(ctx, product("P1", 10), 3))
	require.NoError(t, c.AddItem(ctx, product("P3", 7), 1))
	c.UpdateQuantity(ctx, "P2", 0)

	c.Subtract(ctx, taken)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "P1", items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "P3", items[1].Product.ID)
	assertConsistent(t, c)

	reloaded := Load(ctx, c.Key(), NewPersister(store, nil))
	assert.Equal(t, 3, reloaded.ItemQuantity("P1"))
	assert.Equal(t, 1, reloaded.ItemQuantity("P3"))
}

func TestSubtractWholeSnapshotEmptiesCart(t *testing.T) {
	ctx := context.Background()
	c := newTestCart(NewMemoryStore())
	require.NoError(t, c.AddItem(ctx, product("P1", 10), 2))
	require.NoError(t, c.AddItem(ctx, product("P2", 5), 4))

	c.Subtract(ctx, c.Snapshot().Items)

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, c.TotalItems())
	assert.True(t, c.TotalPrice().IsZero())
}
