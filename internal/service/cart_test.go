package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

type cartFixture struct {
	svc       *CartService
	carts     *memCartRepo
	products  *memProductRepo
	inventory *memInventoryRepo
}

func newCartFixture() *cartFixture {
	carts := newMemCartRepo()
	products := newMemProductRepo()
	inventory := newMemInventoryRepo()
	return &cartFixture{
		svc:       NewCartService(carts, products, inventory),
		carts:     carts,
		products:  products,
		inventory: inventory,
	}
}

func (f *cartFixture) seedProduct(t *testing.T, price string, stock int) *model.Product {
	t.Helper()
	ctx := context.Background()
	product := &model.Product{Name: "widget", CategoryID: uuid.New(), Price: dec(price)}
	require.NoError(t, f.products.Create(ctx, product))
	require.NoError(t, f.inventory.Create(ctx, &model.Inventory{
		ProductID: product.ID, CurrentStock: stock, MinimumStock: 1, MaximumStock: 1000,
	}))
	return product
}

func TestCartAddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()
	product := f.seedProduct(t, "10.00", 100)

	_, err := f.svc.AddItem(ctx, userID, product.ID, 3)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	view, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1, "same product must merge into one line")
	assert.Equal(t, 5, view.Lines[0].Item.Quantity)
	assert.Equal(t, 5, view.TotalItems)
	assert.True(t, dec("50.00").Equal(view.Total))
}

func TestCartAddItemValidation(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()
	product := f.seedProduct(t, "10.00", 4)

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, userID, product.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, userID, uuid.New(), 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("insufficient stock counts the existing line", func(t *testing.T) {
		_, err := f.svc.AddItem(ctx, userID, product.ID, 3)
		require.NoError(t, err)

		_, err = f.svc.AddItem(ctx, userID, product.ID, 2)
		var stockErr *repository.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, product.ID, stockErr.ProductID)
		assert.Equal(t, 5, stockErr.Requested)
		assert.Equal(t, 4, stockErr.Available)
	})
}

func TestCartUpdateItemQuantity(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()
	product := f.seedProduct(t, "10.00", 10)

	item, err := f.svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	t.Run("sets absolute quantity", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateItemQuantity(ctx, userID, item.ID, 7))
		view, err := f.svc.GetCart(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 7, view.Lines[0].Item.Quantity)
	})

	t.Run("rejects more than stock", func(t *testing.T) {
		err := f.svc.UpdateItemQuantity(ctx, userID, item.ID, 11)
		var stockErr *repository.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 10, stockErr.Available)
	})

	t.Run("unknown item", func(t *testing.T) {
		err := f.svc.UpdateItemQuantity(ctx, userID, uuid.New(), 1)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})

	t.Run("another user's item is invisible", func(t *testing.T) {
		err := f.svc.UpdateItemQuantity(ctx, uuid.New(), item.ID, 1)
		assert.ErrorIs(t, err, ErrWrongCart)
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateItemQuantity(ctx, userID, item.ID, 0))
		view, err := f.svc.GetCart(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, view.Lines)
	})
}

func TestCartRemoveItemLeavesStockAlone(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()
	product := f.seedProduct(t, "10.00", 10)

	item, err := f.svc.AddItem(ctx, userID, product.ID, 4)
	require.NoError(t, err)
	require.NoError(t, f.svc.RemoveItem(ctx, userID, item.ID))

	view, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	inv, err := f.inventory.GetByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.CurrentStock, "cart activity must never touch stock")
}

func TestCartClear(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()
	product := f.seedProduct(t, "10.00", 10)

	// Clearing an empty cart is a no-op.
	require.NoError(t, f.svc.Clear(ctx, userID))

	_, err := f.svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.svc.Clear(ctx, userID))

	view, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.True(t, view.Total.IsZero())
}

func TestCartGetOrCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()

	first, err := f.svc.GetOrCreateActiveCart(ctx, userID)
	require.NoError(t, err)
	second, err := f.svc.GetOrCreateActiveCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCartViewUsesDiscountedPrices(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture()
	userID := uuid.New()

	product := &model.Product{Name: "marked down", CategoryID: uuid.New(), Price: dec("100.00"), DiscountPct: 25}
	require.NoError(t, f.products.Create(ctx, product))
	require.NoError(t, f.inventory.Create(ctx, &model.Inventory{
		ProductID: product.ID, CurrentStock: 10, MaximumStock: 100,
	}))

	_, err := f.svc.AddItem(ctx, userID, product.ID, 2)
	require.NoError(t, err)

	view, err := f.svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, dec("150.00").Equal(view.Total), "want 150.00, got %s", view.Total)
}
