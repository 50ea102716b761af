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

// ErrDuplicateCoupon is returned when creating a coupon with an existing code.
var ErrDuplicateCoupon = errors.New("coupon code already exists")

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
}

type pgCouponRepo struct{ pool *pgxpool.Pool }

func NewCouponRepository(pool *pgxpool.Pool) CouponRepository {
	return &pgCouponRepo{pool: pool}
}

func (r *pgCouponRepo) Create(ctx context.Context, coupon *model.Coupon) error {
	coupon.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (id, code, description, discount_type, discount_value, minimum_amount,
		                      start_date, end_date, usage_limit, times_used, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		coupon.ID, coupon.Code, coupon.Description, coupon.DiscountType, coupon.DiscountValue,
		coupon.MinimumAmount, coupon.StartDate, coupon.EndDate,
		coupon.UsageLimit, coupon.TimesUsed, coupon.Active,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateCoupon, coupon.Code)
		}
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func (r *pgCouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	coupon := &model.Coupon{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, description, discount_type, discount_value, minimum_amount,
		        start_date, end_date, usage_limit, times_used, is_active
		 FROM coupons WHERE code = $1`, code,
	).Scan(
		&coupon.ID, &coupon.Code, &coupon.Description, &coupon.DiscountType, &coupon.DiscountValue,
		&coupon.MinimumAmount, &coupon.StartDate, &coupon.EndDate,
		&coupon.UsageLimit, &coupon.TimesUsed, &coupon.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return coupon, nil
}
