package orders

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/autocare/autocare-backend/internal/cart"
	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/autocare/autocare-backend/pkg/enums"
	pkgerrors "github.com/autocare/autocare-backend/pkg/errors"
	"github.com/autocare/autocare-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service drives checkout and order reads.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Track(ctx context.Context, input TrackOrderInput) (*OrderDTO, error)
	ListAll(ctx context.Context, status string) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
}

type orderRepository interface {
	Place(ctx context.Context, order *models.Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error)
	ListAll(ctx context.Context, status string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

type cartReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     orderRepository
	carts    cartReader
	schedule money.Schedule
}

// ServiceParams bundles the order service dependencies.
type ServiceParams struct {
	OrderRepo   orderRepository
	CartService cartReader
	Schedule    money.Schedule
}

// NewService constructs the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.CartService == nil {
		return nil, fmt.Errorf("cart service required")
	}
	schedule := params.Schedule
	if schedule.FlatFee.IsZero() && schedule.FreeThreshold.IsZero() {
		schedule = money.DefaultSchedule
	}
	return &service{
		repo:     params.OrderRepo,
		carts:    params.CartService,
		schedule: schedule,
	}, nil
}

// Place turns the account cart into an order. Totals are recomputed from the
// cart lines here, never taken from the client. On success the cart is
// cleared.
func (s *service) Place(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if !input.ShippingAddress.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	orderID := uuid.New()
	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(current.Items))
	for _, line := range current.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains an invalid product id")
		}
		subtotal = subtotal.Add(money.LineTotal(line.Price, line.Quantity))
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: productID,
			Slug:      line.Slug,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Image:     line.Image,
		})
	}
	fee := s.schedule.Fee(subtotal)

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     newOrderNumber(time.Now().UTC()),
		UserID:          userID,
		Subtotal:        subtotal,
		ShippingFee:     fee,
		Total:           subtotal.Add(fee),
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		Status:          enums.OrderStatusPending,
		Items:           items,
	}

	if err := s.repo.Place(ctx, order); err != nil {
		var stockErr ErrInsufficientStock
		if errors.As(err, &stockErr) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, stockErr.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "place order")
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order is committed; a stale cart is recoverable.
		return FromModel(order), nil
	}
	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toDTOs(rows), nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	return FromModel(order), nil
}

// Track is the public lookup by order number plus email. Both must match;
// the error does not reveal which side failed.
func (s *service) Track(ctx context.Context, input TrackOrderInput) (*OrderDTO, error) {
	number := strings.TrimSpace(input.OrderNumber)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if number == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email are required")
	}

	order, err := s.repo.FindByNumberAndEmail(ctx, number, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "track order")
	}
	return FromModel(order), nil
}

func (s *service) ListAll(ctx context.Context, status string) ([]OrderDTO, error) {
	filter := ""
	if strings.TrimSpace(status) != "" {
		parsed, err := enums.ParseOrderStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter = string(parsed)
	}

	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return toDTOs(rows), nil
}

// UpdateStatus applies an admin status change, enforcing the order lifecycle.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, string(next)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
	}
	order.Status = next
	return FromModel(order), nil
}

func toDTOs(rows []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}

// newOrderNumber yields ORD-YYYYMMDD-XXXXXX with a random hex suffix.
func newOrderNumber(now time.Time) string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp fallback keeps numbers unique enough per day.
		return fmt.Sprintf("ORD-%s-%06d", now.Format("20060102"), now.UnixNano()%1_000_000)
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
