package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCartConflict      = errors.New("cart was already checked out")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("order belongs to another user")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// CheckoutInput is everything the caller supplies to turn a cart into an
// order. The user id comes from the authenticated request, never from
// ambient state.
type CheckoutInput struct {
	PaymentMethod   string
	ShippingAddress string
	City            string
	ZipCode         string
	CouponCode      string
}

type OrderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	coupons       *CouponService
	pricing       *PricingEngine
	amqpCh        *amqp.Channel
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	coupons *CouponService,
	pricing *PricingEngine,
	amqpCh *amqp.Channel,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		coupons:       coupons,
		pricing:       pricing,
		amqpCh:        amqpCh,
	}
}

// CreateOrderFromCart materializes the user's active cart as an order with
// its payment and shipment, decrements stock, consumes the coupon slot and
// deactivates the cart, all inside one transaction. Unit prices are the
// catalog's current discounted prices at checkout time and are frozen on
// the order lines.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*model.Order, error) {
	cart, err := s.cartRepo.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	// Availability pre-check for early, well-attributed failures. The
	// decrement inside the transaction re-checks, so a snapshot that goes
	// stale here cannot oversell.
	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}

		inv, err := s.inventoryRepo.GetByProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get inventory: %w", err)
		}
		if inv == nil {
			return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, line.ProductID)
		}
		if !inv.Available(line.Quantity) {
			return nil, &repository.InsufficientStockError{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Available: inv.CurrentStock,
			}
		}

		unitPrice := product.DiscountedPrice()
		subtotal = subtotal.Add(unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: unitPrice,
		})
	}
	subtotal = subtotal.Round(2)

	discount := decimal.Zero
	var couponID *uuid.UUID
	var couponCode string
	if in.CouponCode != "" {
		coupon, err := s.coupons.Validate(ctx, in.CouponCode, time.Now(), subtotal)
		if err != nil {
			return nil, err
		}
		discount = s.coupons.ComputeDiscount(coupon, subtotal)
		couponID = &coupon.ID
		couponCode = coupon.Code
	}

	tax, total := s.pricing.Quote(subtotal, discount)

	co := &repository.Checkout{
		Order: &model.Order{
			UserID:         userID,
			Status:         model.OrderStatusPending,
			Total:          total,
			DiscountAmount: discount,
			CouponID:       couponID,
		},
		Items: items,
		Payment: &model.Payment{
			Method:       in.PaymentMethod,
			Subtotal:     subtotal,
			Tax:          tax,
			Total:        total,
			ShippingDate: time.Now().AddDate(0, 0, 1),
		},
		Shipment: &model.Shipment{
			Address: in.ShippingAddress,
			City:    in.City,
			ZipCode: in.ZipCode,
			Status:  model.ShipmentStatusPending,
		},
		CartID: cart.ID,
	}

	if err := s.orderRepo.CreateOrder(ctx, co); err != nil {
		if errors.Is(err, repository.ErrCouponExhausted) {
			return nil, &InvalidCouponError{Code: couponCode, Reason: CouponReasonUsageExhausted}
		}
		if errors.Is(err, repository.ErrCartInactive) {
			// Double submit: another checkout spent this cart first.
			return nil, ErrCartConflict
		}
		return nil, err
	}

	order := co.Order
	order.Items = co.Items
	order.Payment = co.Payment
	order.Shipment = co.Shipment

	s.publishOrderCreated(ctx, order)

	return order, nil
}

// publishOrderCreated hands the committed order to the fulfillment worker.
// Best effort: the order exists regardless of broker availability.
func (s *OrderService) publishOrderCreated(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.OrderCreatedMessage{OrderID: order.ID, UserID: order.UserID})
	_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}

// UpdateStatus transitions an order. Any status from the closed enumeration
// is accepted; skipping intermediate states is deliberately allowed.
// Delivery also stamps the shipment.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	switch status {
	case model.OrderStatusPending, model.OrderStatusProcessing,
		model.OrderStatusCanceled, model.OrderStatusDelivered:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByID fetches an order for its owner.
func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// Get fetches an order without an ownership check, for admin callers.
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}
