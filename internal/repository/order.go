package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mweb/storefront-api/internal/model"
)

// ErrCouponExhausted is returned when the coupon's last usage slot was taken
// by a concurrent checkout between validation and commit.
var ErrCouponExhausted = errors.New("coupon usage limit reached")

// ErrCartInactive is returned when the cart was already spent by another
// checkout. A double-submitted cart produces exactly one order.
var ErrCartInactive = errors.New("cart is not active")

// InsufficientStockError reports a stock shortfall detected at decrement
// time. Available reflects the stock level seen inside the failing
// transaction.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Checkout bundles everything the atomic checkout unit writes: the order
// graph, the stock decrements implied by its items, the coupon usage slot,
// and the cart deactivation. CreateOrder persists all of it or none of it.
type Checkout struct {
	Order    *model.Order
	Items    []model.OrderItem
	Payment  *model.Payment
	Shipment *model.Shipment
	CartID   uuid.UUID
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, co *Checkout) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func (r *pgOrderRepo) CreateOrder(ctx context.Context, co *Checkout) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Spend the cart first: the guarded update locks the cart row, so a
	// concurrent checkout of the same cart blocks here and then sees zero
	// rows affected instead of committing a second order.
	ct, err := tx.Exec(ctx,
		`UPDATE carts SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, co.CartID,
	)
	if err != nil {
		return fmt.Errorf("deactivate cart: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrCartInactive
	}

	order := co.Order
	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, total, discount_amount, coupon_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
		order.ID, order.UserID, order.Status, order.Total, order.DiscountAmount, order.CouponID,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range co.Items {
		co.Items[i].ID = uuid.New()
		co.Items[i].OrderID = order.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			 VALUES ($1, $2, $3, $4, $5)`,
			co.Items[i].ID, co.Items[i].OrderID, co.Items[i].ProductID,
			co.Items[i].Quantity, co.Items[i].UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	co.Payment.ID = uuid.New()
	co.Payment.OrderID = order.ID
	_, err = tx.Exec(ctx,
		`INSERT INTO payments (id, order_id, method, subtotal, tax, total, shipping_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		co.Payment.ID, co.Payment.OrderID, co.Payment.Method,
		co.Payment.Subtotal, co.Payment.Tax, co.Payment.Total, co.Payment.ShippingDate,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	co.Shipment.ID = uuid.New()
	co.Shipment.OrderID = order.ID
	_, err = tx.Exec(ctx,
		`INSERT INTO shipments (id, order_id, address, city, zip_code, status)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		co.Shipment.ID, co.Shipment.OrderID, co.Shipment.Address,
		co.Shipment.City, co.Shipment.ZipCode, co.Shipment.Status,
	)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", err)
	}

	if err := r.decrementStock(ctx, tx, co.Items); err != nil {
		return err
	}

	if order.CouponID != nil {
		ct, err := tx.Exec(ctx,
			`UPDATE coupons SET times_used = times_used + 1
			 WHERE id = $1 AND is_active AND times_used < usage_limit`,
			*order.CouponID,
		)
		if err != nil {
			return fmt.Errorf("record coupon usage: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return ErrCouponExhausted
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// decrementStock applies the check-and-decrement for every order line in
// ascending product id order so two checkouts sharing products cannot
// deadlock on each other's inventory rows.
func (r *pgOrderRepo) decrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b model.OrderItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, item := range sorted {
		ct, err := tx.Exec(ctx,
			`UPDATE inventory SET current_stock = current_stock - $2, last_updated = NOW()
			 WHERE product_id = $1 AND current_stock >= $2`,
			item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			available := 0
			err := tx.QueryRow(ctx,
				`SELECT current_stock FROM inventory WHERE product_id = $1`, item.ProductID,
			).Scan(&available)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("read stock: %w", err)
			}
			return &InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}
		}
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, status, total, discount_amount, coupon_id, created_at
		 FROM orders WHERE id = $1`, id,
	).Scan(&order.ID, &order.UserID, &order.Status, &order.Total,
		&order.DiscountAmount, &order.CouponID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, quantity, unit_price FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	payment := &model.Payment{}
	err = r.pool.QueryRow(ctx,
		`SELECT id, order_id, method, subtotal, tax, total, shipping_date
		 FROM payments WHERE order_id = $1`, id,
	).Scan(&payment.ID, &payment.OrderID, &payment.Method,
		&payment.Subtotal, &payment.Tax, &payment.Total, &payment.ShippingDate)
	if err == nil {
		order.Payment = payment
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	shipment := &model.Shipment{}
	err = r.pool.QueryRow(ctx,
		`SELECT id, order_id, address, city, zip_code, status, delivery_date
		 FROM shipments WHERE order_id = $1`, id,
	).Scan(&shipment.ID, &shipment.OrderID, &shipment.Address, &shipment.City,
		&shipment.ZipCode, &shipment.Status, &shipment.DeliveryDate)
	if err == nil {
		order.Shipment = shipment
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get shipment: %w", err)
	}

	return order, nil
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, status, total, discount_amount, coupon_id, created_at
		 FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		o.UserID = userID
		if err := rows.Scan(&o.ID, &o.Status, &o.Total, &o.DiscountAmount, &o.CouponID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return orders, nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	if status == model.OrderStatusDelivered {
		_, err = tx.Exec(ctx,
			`UPDATE shipments SET status = $2, delivery_date = NOW() WHERE order_id = $1`,
			id, model.ShipmentStatusDelivered,
		)
		if err != nil {
			return fmt.Errorf("update shipment status: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
