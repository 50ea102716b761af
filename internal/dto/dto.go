package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

// --- Product ---

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	DiscountPct int             `json:"discount_pct" binding:"min=0,max=100"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Price       *decimal.Decimal `json:"price"`
	DiscountPct *int             `json:"discount_pct"`
}

type ListProductsRequest struct {
	Page       int    `form:"page,default=1" binding:"min=1"`
	Limit      int    `form:"limit,default=20" binding:"min=1,max=100"`
	Search     string `form:"search"`
	Brand      string `form:"brand"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Sort       string `form:"sort,default=created_at" binding:"oneof=name price created_at"`
	Order      string `form:"order,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Price       decimal.Decimal `json:"price"`
	DiscountPct int             `json:"discount_pct"`
	FinalPrice  decimal.Decimal `json:"final_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Inventory ---

type CreateInventoryRequest struct {
	ProductID    uuid.UUID `json:"product_id" binding:"required"`
	CurrentStock int       `json:"current_stock" binding:"min=0"`
	MinimumStock int       `json:"minimum_stock" binding:"min=0"`
	MaximumStock int       `json:"maximum_stock" binding:"required,min=1"`
}

type ListInventoryRequest struct {
	Filter string `form:"filter" binding:"required,oneof=low-stock out-of-stock"`
}

type SetStockRequest struct {
	Stock int `json:"stock" binding:"min=0"`
}

type AdjustStockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type InventoryResponse struct {
	ProductID    uuid.UUID `json:"product_id"`
	CurrentStock int       `json:"current_stock"`
	MinimumStock int       `json:"minimum_stock"`
	MaximumStock int       `json:"maximum_stock"`
	LastUpdated  time.Time `json:"last_updated"`
}

// --- Coupon ---

type CreateCouponRequest struct {
	Code          string           `json:"code" binding:"required,max=50"`
	Description   string           `json:"description"`
	DiscountType  string           `json:"discount_type" binding:"required,oneof=PERCENTAGE FIXED_AMOUNT"`
	DiscountValue decimal.Decimal  `json:"discount_value" binding:"required"`
	MinimumAmount *decimal.Decimal `json:"minimum_amount"`
	StartDate     time.Time        `json:"start_date" binding:"required"`
	EndDate       time.Time        `json:"end_date" binding:"required"`
	UsageLimit    int              `json:"usage_limit" binding:"required,min=1"`
}

type CouponResponse struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	Description   string           `json:"description"`
	DiscountType  string           `json:"discount_type"`
	DiscountValue decimal.Decimal  `json:"discount_value"`
	MinimumAmount *decimal.Decimal `json:"minimum_amount,omitempty"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	UsageLimit    int              `json:"usage_limit"`
	TimesUsed     int              `json:"times_used"`
	Active        bool             `json:"active"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type CartItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	Total      decimal.Decimal    `json:"total"`
	TotalItems int                `json:"total_items"`
}

// --- Checkout / Order ---

type CheckoutRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address" binding:"required"`
	City            string `json:"city" binding:"required"`
	ZipCode         string `json:"zip_code" binding:"required"`
	CouponCode      string `json:"coupon_code"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING PROCESSING CANCELED DELIVERED"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type PaymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	Method       string          `json:"method"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	ShippingDate time.Time       `json:"shipping_date"`
}

type ShipmentResponse struct {
	ID           uuid.UUID  `json:"id"`
	Address      string     `json:"address"`
	City         string     `json:"city"`
	ZipCode      string     `json:"zip_code"`
	Status       string     `json:"status"`
	DeliveryDate *time.Time `json:"delivery_date,omitempty"`
}

type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         uuid.UUID           `json:"user_id"`
	Status         model.OrderStatus   `json:"status"`
	Total          decimal.Decimal     `json:"total"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	CouponID       *uuid.UUID          `json:"coupon_id,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	Payment        *PaymentResponse    `json:"payment,omitempty"`
	Shipment       *ShipmentResponse   `json:"shipment,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}
