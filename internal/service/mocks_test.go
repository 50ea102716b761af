package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

// In-memory repository fakes. Single-goroutine use only; the tests that
// need concurrency exercise the real repositories instead.

type memUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.New()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type memProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *memProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	var out []model.Product
	for _, p := range r.products {
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(p.Description), strings.ToLower(filter.Search)) {
			continue
		}
		if filter.Brand != "" && !strings.EqualFold(p.Brand, filter.Brand) {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, *p)
	}
	total := len(out)
	if filter.Offset > len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *memProductRepo) Update(_ context.Context, product *model.Product) error {
	cp := *product
	r.products[product.ID] = &cp
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type memInventoryRepo struct {
	records map[uuid.UUID]*model.Inventory
}

func newMemInventoryRepo() *memInventoryRepo {
	return &memInventoryRepo{records: make(map[uuid.UUID]*model.Inventory)}
}

func (r *memInventoryRepo) Create(_ context.Context, inv *model.Inventory) error {
	if _, ok := r.records[inv.ProductID]; ok {
		return repository.ErrDuplicateInventory
	}
	inv.ID = uuid.New()
	inv.LastUpdated = time.Now()
	cp := *inv
	r.records[inv.ProductID] = &cp
	return nil
}

func (r *memInventoryRepo) GetByProduct(_ context.Context, productID uuid.UUID) (*model.Inventory, error) {
	inv, ok := r.records[productID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInventoryRepo) UpdateStock(_ context.Context, productID uuid.UUID, stock int) error {
	inv, ok := r.records[productID]
	if !ok {
		return repository.ErrNotFound
	}
	inv.CurrentStock = stock
	inv.LastUpdated = time.Now()
	return nil
}

func (r *memInventoryRepo) ListLowStock(_ context.Context) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.records {
		if inv.CurrentStock > 0 && inv.LowStock() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInventoryRepo) ListOutOfStock(_ context.Context) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.records {
		if inv.CurrentStock == 0 {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type memCartRepo struct {
	carts map[uuid.UUID]*model.Cart
	items map[uuid.UUID]*model.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{
		carts: make(map[uuid.UUID]*model.Cart),
		items: make(map[uuid.UUID]*model.CartItem),
	}
}

func (r *memCartRepo) GetActiveCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	for _, cart := range r.carts {
		if cart.UserID == userID && cart.Active {
			cp := *cart
			cp.Items = nil
			for _, item := range r.items {
				if item.CartID == cart.ID {
					cp.Items = append(cp.Items, *item)
				}
			}
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memCartRepo) CreateCart(_ context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{ID: uuid.New(), UserID: userID, Active: true, CreatedAt: time.Now()}
	r.carts[cart.ID] = cart
	cp := *cart
	return &cp, nil
}

func (r *memCartRepo) GetItem(_ context.Context, itemID uuid.UUID) (*model.CartItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *memCartRepo) UpsertItem(_ context.Context, item *model.CartItem) error {
	for _, existing := range r.items {
		if existing.CartID == item.CartID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			*item = *existing
			return nil
		}
	}
	item.ID = uuid.New()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memCartRepo) UpdateItemQuantity(_ context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := r.items[itemID]
	if !ok {
		return repository.ErrNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *memCartRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	if _, ok := r.items[itemID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *memCartRepo) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for id, item := range r.items {
		if item.CartID == cartID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *memCartRepo) deactivate(cartID uuid.UUID) {
	if cart, ok := r.carts[cartID]; ok {
		cart.Active = false
	}
}

type memCouponRepo struct {
	coupons map[uuid.UUID]*model.Coupon
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{coupons: make(map[uuid.UUID]*model.Coupon)}
}

func (r *memCouponRepo) Create(_ context.Context, coupon *model.Coupon) error {
	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return repository.ErrDuplicateCoupon
		}
	}
	coupon.ID = uuid.New()
	cp := *coupon
	r.coupons[coupon.ID] = &cp
	return nil
}

func (r *memCouponRepo) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	for _, c := range r.coupons {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

// memOrderRepo mirrors the real repository's transactional behavior:
// stock decrements, coupon usage and cart deactivation happen together
// with the order insert, or not at all.
type memOrderRepo struct {
	orders    map[uuid.UUID]*model.Order
	inventory *memInventoryRepo
	coupons   *memCouponRepo
	carts     *memCartRepo
	createErr error
}

func newMemOrderRepo(inventory *memInventoryRepo, coupons *memCouponRepo, carts *memCartRepo) *memOrderRepo {
	return &memOrderRepo{
		orders:    make(map[uuid.UUID]*model.Order),
		inventory: inventory,
		coupons:   coupons,
		carts:     carts,
	}
}

func (r *memOrderRepo) CreateOrder(_ context.Context, co *repository.Checkout) error {
	if r.createErr != nil {
		return r.createErr
	}

	cart := r.carts.carts[co.CartID]
	if cart == nil || !cart.Active {
		return repository.ErrCartInactive
	}

	for _, item := range co.Items {
		inv := r.inventory.records[item.ProductID]
		if inv == nil || inv.CurrentStock < item.Quantity {
			available := 0
			if inv != nil {
				available = inv.CurrentStock
			}
			return &repository.InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: available,
			}
		}
	}

	if co.Order.CouponID != nil {
		coupon := r.coupons.coupons[*co.Order.CouponID]
		if coupon == nil || !coupon.Active || coupon.TimesUsed >= coupon.UsageLimit {
			return repository.ErrCouponExhausted
		}
		coupon.TimesUsed++
	}

	for _, item := range co.Items {
		r.inventory.records[item.ProductID].CurrentStock -= item.Quantity
	}

	co.Order.ID = uuid.New()
	co.Order.CreatedAt = time.Now()
	for i := range co.Items {
		co.Items[i].ID = uuid.New()
		co.Items[i].OrderID = co.Order.ID
	}
	co.Payment.ID = uuid.New()
	co.Payment.OrderID = co.Order.ID
	co.Shipment.ID = uuid.New()
	co.Shipment.OrderID = co.Order.ID

	stored := *co.Order
	stored.Items = append([]model.OrderItem(nil), co.Items...)
	payment := *co.Payment
	shipment := *co.Shipment
	stored.Payment = &payment
	stored.Shipment = &shipment
	r.orders[stored.ID] = &stored

	r.carts.deactivate(co.CartID)
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	if status == model.OrderStatusDelivered && o.Shipment != nil {
		now := time.Now()
		o.Shipment.Status = model.ShipmentStatusDelivered
		o.Shipment.DeliveryDate = &now
	}
	return nil
}
