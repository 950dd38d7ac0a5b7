package storefront

import (
	"context"
	"io"
	"testing"

	"github.com/autocare/autocare-backend/pkg/logger"
	"github.com/autocare/autocare-backend/pkg/snapshot"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "storefront-test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

func newTestCart(t *testing.T, store snapshot.Store) *Cart {
	t.Helper()
	cart, err := NewCart(CartParams{Store: store, Logger: testLogger()})
	if err != nil {
		t.Fatalf("new cart: %v", err)
	}
	return cart
}

func item(productID string, price float64, qty, stock int) LineItem {
	return LineItem{
		ProductID: productID,
		Slug:      productID,
		Name:      "part " + productID,
		Price:     decimal.NewFromFloat(price),
		Quantity:  qty,
		StockQty:  stock,
	}
}

func TestAddItemSumsThenClampsAcrossCalls(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	// 4 + 4 + 4 = 12 requested against stock 10.
	for i := 0; i < 3; i++ {
		cart.AddItem(ctx, item("p1", 100, 4, 10))
	}

	items := cart.Items()
	if len(items) != 1 {
		t.Fatalf("expected a single line item, got %d", len(items))
	}
	if items[0].Quantity != 10 {
		t.Fatalf("expected quantity clamped to stock 10, got %d", items[0].Quantity)
	}
}

func TestAddItemZeroStockIsIgnored(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	cart.AddItem(ctx, item("p1", 100, 1, 0))
	if len(cart.Items()) != 0 {
		t.Fatal("out-of-stock product must not enter the cart")
	}
}

func TestAddItemClampsInitialQuantityToAtLeastOne(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	cart.AddItem(ctx, item("p1", 100, 0, 5))
	items := cart.Items()
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %+v", items)
	}
}

func TestUpdateQuantityClampsToRange(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())
	cart.AddItem(ctx, item("p1", 100, 3, 5))

	cases := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: 1},
		{requested: -7, want: 1},
		{requested: 4, want: 4},
		{requested: 99, want: 5},
	}
	for _, tc := range cases {
		cart.UpdateQuantity(ctx, "p1", tc.requested)
		if got := cart.Items()[0].Quantity; got != tc.want {
			t.Fatalf("update to %d: expected %d, got %d", tc.requested, tc.want, got)
		}
	}
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())
	cart.AddItem(ctx, item("p1", 100, 1, 5))

	cart.UpdateQuantity(ctx, "missing", 3)
	items := cart.Items()
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("unexpected cart after unknown update: %+v", items)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())
	cart.AddItem(ctx, item("p1", 100, 1, 5))

	cart.RemoveItem(ctx, "p1")
	cart.RemoveItem(ctx, "p1")
	if len(cart.Items()) != 0 {
		t.Fatal("expected empty cart after removal")
	}
}

func TestDerivedTotalsAndShippingBoundary(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	// Subtotal 999.99 sits below the free-shipping threshold.
	cart.AddItem(ctx, item("p1", 999.99, 1, 5))
	if got := cart.ShippingFee(); !got.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected fee 60 at subtotal 999.99, got %s", got)
	}
	if got := cart.Total(); !got.Equal(decimal.NewFromFloat(1059.99)) {
		t.Fatalf("expected total 1059.99, got %s", got)
	}

	// Exactly 1000 crosses it.
	cart.ReplaceItems(ctx, []LineItem{item("p2", 1000, 1, 5)})
	if got := cart.ShippingFee(); !got.IsZero() {
		t.Fatalf("expected fee 0 at subtotal 1000, got %s", got)
	}
	if got := cart.Total(); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected total 1000, got %s", got)
	}

	if got, want := cart.Total(), cart.Subtotal().Add(cart.ShippingFee()); !got.Equal(want) {
		t.Fatalf("total %s != subtotal+fee %s", got, want)
	}
}

func TestTotalsCrossThresholdAfterSecondAdd(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	cart.AddItem(ctx, item("p1", 500, 1, 10))
	if got := cart.Total(); !got.Equal(decimal.NewFromInt(560)) {
		t.Fatalf("expected total 560 with one unit, got %s", got)
	}

	cart.AddItem(ctx, item("p1", 500, 1, 10))
	if got := cart.Total(); !got.Equal(decimal.NewFromInt(1060)) {
		t.Fatalf("expected total 1060 after second unit, got %s", got)
	}
}

func TestCartRoundTripThroughSnapshot(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	first := newTestCart(t, store)
	first.AddItem(ctx, item("p1", 250, 2, 9))
	first.AddItem(ctx, item("p2", 80, 1, 3))

	second := newTestCart(t, store)
	if err := second.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	items := second.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items after hydrate, got %d", len(items))
	}
	if items[0].ProductID != "p1" || items[0].Quantity != 2 || items[1].ProductID != "p2" {
		t.Fatalf("order or quantities lost in round trip: %+v", items)
	}
}

func TestHydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	seed := newTestCart(t, store)
	seed.AddItem(ctx, item("p1", 100, 2, 5))

	cart := newTestCart(t, store)
	for i := 0; i < 3; i++ {
		if err := cart.Hydrate(ctx); err != nil {
			t.Fatalf("hydrate %d: %v", i, err)
		}
	}
	items := cart.Items()
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("repeated hydrate duplicated state: %+v", items)
	}
}

func TestHydrateWithoutSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Fatal("expected empty cart when no snapshot exists")
	}
}

func TestHydrateCorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	store.SeedRaw(CartSnapshotKey, []byte("%%% definitely not json"))

	cart := newTestCart(t, store)
	if err := cart.Hydrate(ctx); err != nil {
		t.Fatalf("corrupt snapshot must not fail hydrate: %v", err)
	}
	if len(cart.Items()) != 0 {
		t.Fatal("expected empty cart after corrupt snapshot")
	}
}

func TestClearErasesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()
	cart := newTestCart(t, store)
	cart.AddItem(ctx, item("p1", 100, 1, 5))

	cart.Clear(ctx)
	if len(cart.Items()) != 0 {
		t.Fatal("expected empty cart after clear")
	}

	var snap cartSnapshot
	found, err := store.Load(ctx, CartSnapshotKey, &snap)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if found {
		t.Fatal("expected persisted snapshot erased by clear")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	ctx := context.Background()
	cart := newTestCart(t, snapshot.NewMemoryStore())

	var calls int
	var last []LineItem
	unsubscribe := cart.Subscribe(func(items []LineItem) {
		calls++
		last = items
	})

	cart.AddItem(ctx, item("p1", 100, 2, 5))
	if calls != 1 || len(last) != 1 || last[0].Quantity != 2 {
		t.Fatalf("expected one notification with current items, calls=%d last=%+v", calls, last)
	}

	unsubscribe()
	cart.RemoveItem(ctx, "p1")
	if calls != 1 {
		t.Fatalf("expected no notification after unsubscribe, calls=%d", calls)
	}
}
