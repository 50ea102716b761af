package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Brand       string
	CategoryID  uuid.UUID
	Price       decimal.Decimal
	DiscountPct int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DiscountedPrice returns the unit price with the product's own discount
// applied, rounded to cents. Order lines freeze this value at checkout
// time, so it must already match what NUMERIC(12,2) columns store.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.DiscountPct <= 0 {
		return p.Price
	}
	factor := decimal.NewFromInt(100 - int64(p.DiscountPct)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor).Round(2)
}

// Inventory is the stock ledger entry for one product. Stock is mutated by
// admin operations and by order creation only, never by cart activity.
type Inventory struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	CurrentStock int
	MinimumStock int
	MaximumStock int
	LastUpdated  time.Time
}

func (i *Inventory) Available(qty int) bool {
	return i.CurrentStock >= qty
}

func (i *Inventory) LowStock() bool {
	return i.CurrentStock <= i.MinimumStock
}

// Cart is a user's mutable pre-order state. A user has at most one active
// cart; checkout deactivates it and a fresh one is created on next access.
type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Active    bool
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED_AMOUNT"
)

type Coupon struct {
	ID            uuid.UUID
	Code          string
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	MinimumAmount decimal.NullDecimal
	StartDate     time.Time
	EndDate       time.Time
	UsageLimit    int
	TimesUsed     int
	Active        bool
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCanceled   OrderStatus = "CANCELED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusShipped   ShipmentStatus = "SHIPPED"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
)

// Order is immutable after creation except for Status and the linked
// payment/shipment status fields. Unit prices on its lines are captured at
// checkout and never re-read from the catalog.
type Order struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Status         OrderStatus
	Total          decimal.Decimal
	DiscountAmount decimal.Decimal
	CouponID       *uuid.UUID
	Items          []OrderItem
	Payment        *Payment
	Shipment       *Shipment
	CreatedAt      time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

type Payment struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Method       string
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	ShippingDate time.Time
}

type Shipment struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	Address      string
	City         string
	ZipCode      string
	Status       ShipmentStatus
	DeliveryDate *time.Time
}

type OrderCreatedMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
