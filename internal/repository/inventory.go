package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mweb/storefront-api/internal/model"
)

// ErrDuplicateInventory is returned when creating a second ledger entry for
// the same product.
var ErrDuplicateInventory = errors.New("product already has an inventory record")

type InventoryRepository interface {
	Create(ctx context.Context, inv *model.Inventory) error
	GetByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error)
	// UpdateStock sets the absolute stock level and refreshes last_updated.
	UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error
	ListLowStock(ctx context.Context) ([]model.Inventory, error)
	ListOutOfStock(ctx context.Context) ([]model.Inventory, error)
}

type pgInventoryRepo struct{ pool *pgxpool.Pool }

func NewInventoryRepository(pool *pgxpool.Pool) InventoryRepository {
	return &pgInventoryRepo{pool: pool}
}

func (r *pgInventoryRepo) Create(ctx context.Context, inv *model.Inventory) error {
	inv.ID = uuid.New()
	query := `INSERT INTO inventory (id, product_id, current_stock, minimum_stock, maximum_stock, last_updated)
			  VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING last_updated`
	err := r.pool.QueryRow(ctx, query,
		inv.ID, inv.ProductID, inv.CurrentStock, inv.MinimumStock, inv.MaximumStock,
	).Scan(&inv.LastUpdated)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateInventory, inv.ProductID)
		}
		return fmt.Errorf("create inventory: %w", err)
	}
	return nil
}

func (r *pgInventoryRepo) GetByProduct(ctx context.Context, productID uuid.UUID) (*model.Inventory, error) {
	query := `SELECT id, product_id, current_stock, minimum_stock, maximum_stock, last_updated
			  FROM inventory WHERE product_id = $1`
	inv := &model.Inventory{}
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&inv.ID, &inv.ProductID, &inv.CurrentStock, &inv.MinimumStock, &inv.MaximumStock, &inv.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return inv, nil
}

func (r *pgInventoryRepo) UpdateStock(ctx context.Context, productID uuid.UUID, stock int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE inventory SET current_stock = $2, last_updated = NOW() WHERE product_id = $1`,
		productID, stock,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgInventoryRepo) ListLowStock(ctx context.Context) ([]model.Inventory, error) {
	return r.list(ctx, `SELECT id, product_id, current_stock, minimum_stock, maximum_stock, last_updated
		FROM inventory WHERE current_stock <= minimum_stock AND current_stock > 0`)
}

func (r *pgInventoryRepo) ListOutOfStock(ctx context.Context) ([]model.Inventory, error) {
	return r.list(ctx, `SELECT id, product_id, current_stock, minimum_stock, maximum_stock, last_updated
		FROM inventory WHERE current_stock = 0`)
}

func (r *pgInventoryRepo) list(ctx context.Context, query string) ([]model.Inventory, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var records []model.Inventory
	for rows.Next() {
		var inv model.Inventory
		if err := rows.Scan(&inv.ID, &inv.ProductID, &inv.CurrentStock,
			&inv.MinimumStock, &inv.MaximumStock, &inv.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		records = append(records, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}
