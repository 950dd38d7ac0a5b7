package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/autocare/autocare-backend/internal/storefront"
	"github.com/autocare/autocare-backend/pkg/db/models"
	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/autocare/autocare-backend/pkg/money"
	"github.com/autocare/autocare-backend/pkg/snapshot"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service owns the account-side cart stored under the user's snapshot key. It
// applies the same quantity invariants as the in-browser cart manager, with
// product data refreshed from the catalog on every write.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	MergeGuest(ctx context.Context, userID uuid.UUID, guest []storefront.LineItem) (*CartDTO, error)
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	store    snapshot.Store
	products productLoader
	schedule money.Schedule

	mu    sync.Mutex
	users map[uuid.UUID]*sync.Mutex
}

// ServiceParams bundles the cart service dependencies.
type ServiceParams struct {
	Store    snapshot.Store
	Products productLoader
	Schedule money.Schedule
}

// NewService builds the account cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	schedule := params.Schedule
	if schedule.FlatFee.IsZero() && schedule.FreeThreshold.IsZero() {
		schedule = money.DefaultSchedule
	}
	return &service{
		store:    params.Store,
		products: params.Products,
		schedule: schedule,
		users:    map[uuid.UUID]*sync.Mutex{},
	}, nil
}

// UserCartKey is the snapshot key for one account's cart.
func UserCartKey(userID uuid.UUID) string {
	return "cart:user:" + userID.String()
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(items), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	candidate, err := s.lineItemFromCatalog(ctx, productID, input.Quantity)
	if err != nil {
		return nil, err
	}

	unlock := s.lockUser(userID)
	defer unlock()

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Same sum-then-clamp rule as the client cart: quantities accumulate and
	// the stock ceiling wins.
	items = storefront.MergeGuestItems(items, []storefront.LineItem{*candidate})

	if err := s.saveItems(ctx, userID, items); err != nil {
		return nil, err
	}
	return s.toDTO(items), nil
}

func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, productID string, quantity int) (*CartDTO, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		found = true
		if quantity < 1 {
			quantity = 1
		}
		if quantity > items[i].StockQty {
			quantity = items[i].StockQty
		}
		items[i].Quantity = quantity
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}

	if err := s.saveItems(ctx, userID, items); err != nil {
		return nil, err
	}
	return s.toDTO(items), nil
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, productID string) (*CartDTO, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if err := s.saveItems(ctx, userID, kept); err != nil {
		return nil, err
	}
	return s.toDTO(kept), nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.Clear(ctx, UserCartKey(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// MergeGuest reconciles a guest cart into the account cart at sign-in.
// Guest items are refreshed against the catalog first so stale client stock
// cannot inflate quantities. A catalog miss or a sold-out product drops that
// guest line; everything else merges with the standard sum-then-clamp rule.
func (s *service) MergeGuest(ctx context.Context, userID uuid.UUID, guest []storefront.LineItem) (*CartDTO, error) {
	refreshed := make([]storefront.LineItem, 0, len(guest))
	for _, item := range guest {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			continue
		}
		fresh, err := s.lineItemFromCatalog(ctx, productID, item.Quantity)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil &&
				(typed.Code() == pkgerrors.CodeNotFound || typed.Code() == pkgerrors.CodeConflict) {
				continue
			}
			return nil, err
		}
		refreshed = append(refreshed, *fresh)
	}

	unlock := s.lockUser(userID)
	defer unlock()

	items, err := s.loadItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := storefront.MergeGuestItems(items, refreshed)
	if err := s.saveItems(ctx, userID, merged); err != nil {
		return nil, err
	}
	return s.toDTO(merged), nil
}

func (s *service) lineItemFromCatalog(ctx context.Context, productID uuid.UUID, quantity int) (*storefront.LineItem, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	if product.Stock <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product out of stock")
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > product.Stock {
		quantity = product.Stock
	}
	return &storefront.LineItem{
		ProductID: product.ID.String(),
		Slug:      product.Slug,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.PrimaryImageURL(),
		Quantity:  quantity,
		StockQty:  product.Stock,
	}, nil
}

func (s *service) loadItems(ctx context.Context, userID uuid.UUID) ([]storefront.LineItem, error) {
	var snap cartSnapshot
	found, err := s.store.Load(ctx, UserCartKey(userID), &snap)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if !found {
		return nil, nil
	}
	return snap.Items, nil
}

func (s *service) saveItems(ctx context.Context, userID uuid.UUID, items []storefront.LineItem) error {
	if err := s.store.Save(ctx, UserCartKey(userID), cartSnapshot{Items: items}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return nil
}

func (s *service) toDTO(items []storefront.LineItem) *CartDTO {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(money.LineTotal(item.Price, item.Quantity))
	}
	fee := s.schedule.Fee(subtotal)
	if items == nil {
		items = []storefront.LineItem{}
	}
	return &CartDTO{
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}
}

func (s *service) lockUser(userID uuid.UUID) func() {
	s.mu.Lock()
	lock, ok := s.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.users[userID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}
