package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
)

type CouponRejectReason string

const (
	CouponReasonUnknownCode    CouponRejectReason = "unknown_code"
	CouponReasonInactive       CouponRejectReason = "inactive"
	CouponReasonNotStarted     CouponRejectReason = "not_started"
	CouponReasonExpired        CouponRejectReason = "expired"
	CouponReasonUsageExhausted CouponRejectReason = "usage_exhausted"
	CouponReasonBelowMinimum   CouponRejectReason = "below_minimum"
)

// InvalidCouponError carries the specific rejection reason so callers can
// render an actionable message.
type InvalidCouponError struct {
	Code   string
	Reason CouponRejectReason
}

func (e *InvalidCouponError) Error() string {
	return fmt.Sprintf("invalid coupon %q: %s", e.Code, e.Reason)
}

type CouponService struct {
	couponRepo repository.CouponRepository
}

func NewCouponService(couponRepo repository.CouponRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo}
}

func (s *CouponService) Create(ctx context.Context, coupon *model.Coupon) error {
	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

// Validate checks a coupon code against its date window, usage cap, active
// flag and minimum order amount. It does not consume a usage slot; that
// happens inside the checkout transaction.
func (s *CouponService) Validate(ctx context.Context, code string, at time.Time, subtotal decimal.Decimal) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonUnknownCode}
	}

	if !coupon.Active {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonInactive}
	}

	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(coupon.StartDate) {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonNotStarted}
	}
	if day.After(coupon.EndDate) {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonExpired}
	}

	if coupon.TimesUsed >= coupon.UsageLimit {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonUsageExhausted}
	}

	if coupon.MinimumAmount.Valid && subtotal.LessThan(coupon.MinimumAmount.Decimal) {
		return nil, &InvalidCouponError{Code: code, Reason: CouponReasonBelowMinimum}
	}

	return coupon, nil
}

// ComputeDiscount returns the discount amount for a validated coupon. A
// fixed-amount discount never exceeds the subtotal, so totals cannot go
// negative.
func (s *CouponService) ComputeDiscount(coupon *model.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	switch coupon.DiscountType {
	case model.DiscountPercentage:
		return subtotal.Mul(coupon.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case model.DiscountFixed:
		return decimal.Min(coupon.DiscountValue, subtotal)
	default:
		return decimal.Zero
	}
}
