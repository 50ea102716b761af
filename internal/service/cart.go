package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrWrongCart        = errors.New("item does not belong to this cart")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
)

// CartLine pairs a cart item with its product and the line subtotal at the
// product's current discounted price.
type CartLine struct {
	Item     model.CartItem
	Product  model.Product
	Subtotal decimal.Decimal
}

// CartView is the fully populated cart handed to callers: no lazy loading
// leaks past the service boundary.
type CartView struct {
	Cart       *model.Cart
	Lines      []CartLine
	Total      decimal.Decimal
	TotalItems int
}

type CartService struct {
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository

	// userLocks serializes cart mutations per user; carts of different
	// users never contend.
	userLocks sync.Map
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, inventoryRepo repository.InventoryRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo, inventoryRepo: inventoryRepo}
}

func (s *CartService) lockUser(userID uuid.UUID) func() {
	v, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *CartService) getOrCreateActiveCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetActiveCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	if cart != nil {
		return cart, nil
	}
	cart, err = s.cartRepo.CreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetOrCreateActiveCart returns the user's active cart, creating an empty
// one if none exists. Idempotent.
func (s *CartService) GetOrCreateActiveCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	defer s.lockUser(userID)()
	return s.getOrCreateActiveCart(ctx, userID)
}

// GetCart returns the active cart with lines, products and totals eagerly
// populated, creating the cart if absent.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.GetOrCreateActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Cart: cart, Total: decimal.Zero, TotalItems: cart.TotalItems()}
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		subtotal := product.DiscountedPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, CartLine{Item: item, Product: *product, Subtotal: subtotal})
		view.Total = view.Total.Add(subtotal)
	}
	view.Total = view.Total.Round(2)
	return view, nil
}

// AddItem puts quantity units of a product into the user's active cart,
// merging with an existing line for the same product. Availability is
// validated against the combined line quantity; stock itself is untouched.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	defer s.lockUser(userID)()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	inv, err := s.inventoryRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, productID)
	}

	cart, err := s.getOrCreateActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID {
			requested += item.Quantity
			break
		}
	}
	if !inv.Available(requested) {
		return nil, &repository.InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: inv.CurrentStock,
		}
	}

	item := &model.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("upsert item: %w", err)
	}
	return item, nil
}

// UpdateItemQuantity sets a line to an absolute quantity, re-validating
// availability for the new quantity. A non-positive quantity removes the
// line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	defer s.lockUser(userID)()

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}

	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	}

	inv, err := s.inventoryRepo.GetByProduct(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return fmt.Errorf("%w: %s", ErrInventoryNotFound, item.ProductID)
	}
	if !inv.Available(quantity) {
		return &repository.InsufficientStockError{
			ProductID: item.ProductID,
			Requested: quantity,
			Available: inv.CurrentStock,
		}
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// RemoveItem deletes a line unconditionally. Stock is never affected by
// cart mutation, only by order creation.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	defer s.lockUser(userID)()

	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.cartRepo.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// Clear removes every line from the user's active cart; no-op when empty.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	defer s.lockUser(userID)()

	cart, err := s.getOrCreateActiveCart(ctx, userID)
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItem, error) {
	cart, err := s.getOrCreateActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.cartRepo.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	if item.CartID != cart.ID {
		return nil, ErrWrongCart
	}
	return item, nil
}
