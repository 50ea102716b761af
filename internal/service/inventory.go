package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

var (
	ErrInventoryNotFound   = errors.New("inventory record not found")
	ErrStockExceedsMaximum = errors.New("stock exceeds the maximum allowed")
)

// InventoryService covers the administrative side of the stock ledger.
// Checkout never goes through here: its decrement is a conditional update
// inside the order transaction.
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	productRepo   repository.ProductRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository, productRepo repository.ProductRepository) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo, productRepo: productRepo}
}

func (s *InventoryService) CreateRecord(ctx context.Context, productID uuid.UUID, currentStock, minimumStock, maximumStock int) (*model.Inventory, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	if currentStock > maximumStock {
		return nil, fmt.Errorf("%w: maximum %d", ErrStockExceedsMaximum, maximumStock)
	}

	inv := &model.Inventory{
		ProductID:    productID,
		CurrentStock: currentStock,
		MinimumStock: minimumStock,
		MaximumStock: maximumStock,
	}
	if err := s.inventoryRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InventoryService) GetByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	inv, err := s.inventoryRepo.GetByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", ErrInventoryNotFound, productID)
	}
	return inv, nil
}

// CheckAvailable reports whether the product has at least qty units in
// stock. Read-only.
func (s *InventoryService) CheckAvailable(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	inv, err := s.GetByProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return inv.Available(qty), nil
}

// SetLevel sets the absolute stock level, bounded by the record's maximum.
func (s *InventoryService) SetLevel(ctx context.Context, productID uuid.UUID, newStock int) (*model.Inventory, error) {
	inv, err := s.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if newStock > inv.MaximumStock {
		return nil, fmt.Errorf("%w: maximum %d", ErrStockExceedsMaximum, inv.MaximumStock)
	}
	if err := s.inventoryRepo.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	inv.CurrentStock = newStock
	return inv, nil
}

// AddStock restocks the product by qty units, bounded by the maximum.
func (s *InventoryService) AddStock(ctx context.Context, productID uuid.UUID, qty int) (*model.Inventory, error) {
	inv, err := s.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	newStock := inv.CurrentStock + qty
	if newStock > inv.MaximumStock {
		return nil, fmt.Errorf("%w: maximum %d", ErrStockExceedsMaximum, inv.MaximumStock)
	}
	if err := s.inventoryRepo.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, fmt.Errorf("add stock: %w", err)
	}
	inv.CurrentStock = newStock
	return inv, nil
}

// ReduceStock is the administrative adjustment path. It is not safe against
// concurrent checkouts the way the order transaction's decrement is, and is
// meant for manual corrections.
func (s *InventoryService) ReduceStock(ctx context.Context, productID uuid.UUID, qty int) (*model.Inventory, error) {
	inv, err := s.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv.CurrentStock < qty {
		return nil, &repository.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: inv.CurrentStock,
		}
	}
	newStock := inv.CurrentStock - qty
	if err := s.inventoryRepo.UpdateStock(ctx, productID, newStock); err != nil {
		return nil, fmt.Errorf("reduce stock: %w", err)
	}
	inv.CurrentStock = newStock
	return inv, nil
}

func (s *InventoryService) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	return s.inventoryRepo.ListLowStock(ctx)
}

func (s *InventoryService) ListOutOfStock(ctx context.Context) ([]model.Inventory, error) {
	return s.inventoryRepo.ListOutOfStock(ctx)
}
