package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/autocare/autocare-backend/pkg/logger"
	"github.com/autocare/autocare-backend/pkg/money"
	"github.com/autocare/autocare-backend/pkg/snapshot"
	"github.com/shopspring/decimal"
)

// Cart owns the list of line items and their quantity invariants. Every
// mutation is applied in memory first and then mirrored to the snapshot
// store. Invalid input (unknown product, zero stock) is absorbed as a no-op
// rather than reported: the UI pre-validates, this manager is the final
// guard.
type Cart struct {
	mu       sync.Mutex
	items    []LineItem
	hydrated bool

	store    snapshot.Store
	key      string
	schedule money.Schedule
	logg     *logger.Logger

	nextSubID int
	subs      map[int]func([]LineItem)
}

// CartParams configures a cart manager.
type CartParams struct {
	Store    snapshot.Store
	Key      string
	Schedule money.Schedule
	Logger   *logger.Logger
}

// NewCart builds an empty cart manager. Call Hydrate to restore persisted
// state before first use.
func NewCart(params CartParams) (*Cart, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	key := params.Key
	if key == "" {
		key = CartSnapshotKey
	}
	schedule := params.Schedule
	if schedule.FlatFee.IsZero() && schedule.FreeThreshold.IsZero() {
		schedule = money.DefaultSchedule
	}
	return &Cart{
		store:    params.Store,
		key:      key,
		schedule: schedule,
		logg:     params.Logger,
		subs:     map[int]func([]LineItem){},
	}, nil
}

// Hydrate loads the persisted snapshot once at startup. Absent or unreadable
// snapshots leave the cart empty. Repeated calls are no-ops so remounting
// cannot duplicate items.
func (c *Cart) Hydrate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hydrated {
		return nil
	}
	var snap cartSnapshot
	found, err := c.store.Load(ctx, c.key, &snap)
	if err != nil {
		return fmt.Errorf("loading cart snapshot: %w", err)
	}
	c.hydrated = true
	if found {
		c.items = snap.Items
	}
	c.notifyLocked()
	return nil
}

// AddItem inserts the candidate or, when the product is already present, sums
// the quantities. The result is always clamped to [1, stockQty]. Items with
// zero stock cannot enter the cart. Clamping is silent.
func (c *Cart) AddItem(ctx context.Context, candidate LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if candidate.StockQty <= 0 {
		c.logg.Debug(ctx, fmt.Sprintf("cart: ignoring out-of-stock product %s", candidate.ProductID))
		return
	}

	if idx := c.indexOfLocked(candidate.ProductID); idx >= 0 {
		requested := c.items[idx].Quantity + candidate.Quantity
		clamped := clampQuantity(requested, candidate.StockQty)
		if clamped != requested {
			c.logg.Debug(ctx, fmt.Sprintf("cart: clamped %s quantity %d -> %d", candidate.ProductID, requested, clamped))
		}
		c.items[idx].Quantity = clamped
		c.items[idx].StockQty = candidate.StockQty
	} else {
		candidate.Quantity = clampQuantity(candidate.Quantity, candidate.StockQty)
		c.items = append(c.items, candidate)
	}

	c.persistLocked(ctx)
	c.notifyLocked()
}

// UpdateQuantity sets the quantity for an existing line item, clamped to
// [1, stockQty]. Requests at or below zero pin the quantity to 1; removal is
// only ever explicit. Unknown products are a no-op.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, requested int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOfLocked(productID)
	if idx < 0 {
		return
	}
	c.items[idx].Quantity = clampQuantity(requested, c.items[idx].StockQty)

	c.persistLocked(ctx)
	c.notifyLocked()
}

// RemoveItem deletes the line item if present and persists regardless.
func (c *Cart) RemoveItem(ctx context.Context, productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOfLocked(productID); idx >= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
	}

	c.persistLocked(ctx)
	c.notifyLocked()
}

// Clear empties the cart and erases the persisted snapshot. Used after a
// successful order placement.
func (c *Cart) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	if err := c.store.Clear(ctx, c.key); err != nil {
		c.logg.Warn(ctx, fmt.Sprintf("cart: clearing snapshot failed: %v", err))
	}
	c.notifyLocked()
}

// ReplaceItems sets the cart to exactly these items and persists. Used by the
// merge coordinator and by server-driven refreshes.
func (c *Cart) ReplaceItems(ctx context.Context, items []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]LineItem(nil), items...)

	c.persistLocked(ctx)
	c.notifyLocked()
}

// Items returns a copy of the current line items in display order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LineItem(nil), c.items...)
}

// Subtotal recomputes the sum of line totals. Derived values are never
// cached.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subtotalLocked()
}

// ShippingFee recomputes the fee from the current subtotal.
func (c *Cart) ShippingFee() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schedule.Fee(c.subtotalLocked())
}

// Total is subtotal plus shipping fee.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	subtotal := c.subtotalLocked()
	return subtotal.Add(c.schedule.Fee(subtotal))
}

// Subscribe registers a listener invoked with a copy of the items after every
// change. The returned function removes the listener.
func (c *Cart) Subscribe(fn func([]LineItem)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Cart) subtotalLocked() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(money.LineTotal(item.Price, item.Quantity))
	}
	return subtotal
}

func (c *Cart) indexOfLocked(productID string) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) persistLocked(ctx context.Context) {
	if err := c.store.Save(ctx, c.key, cartSnapshot{Items: c.items}); err != nil {
		c.logg.Warn(ctx, fmt.Sprintf("cart: persisting snapshot failed: %v", err))
	}
}

func (c *Cart) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}
	items := append([]LineItem(nil), c.items...)
	for _, fn := range c.subs {
		fn(items)
	}
}

func clampQuantity(requested, stock int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > stock {
		requested = stock
	}
	return requested
}
