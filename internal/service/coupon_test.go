package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mweb/storefront-api/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedCoupon(t *testing.T, repo *memCouponRepo, coupon *model.Coupon) *model.Coupon {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), coupon))
	return coupon
}

func TestCouponValidate(t *testing.T) {
	ctx := context.Background()
	repo := newMemCouponRepo()
	svc := NewCouponService(repo)

	base := model.Coupon{
		Code:          "SUMMER10",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: dec("10"),
		StartDate:     day(2026, 6, 1),
		EndDate:       day(2026, 8, 31),
		UsageLimit:    5,
		Active:        true,
	}
	seedCoupon(t, repo, &base)

	at := time.Date(2026, 7, 15, 12, 30, 0, 0, time.UTC)

	t.Run("valid coupon passes", func(t *testing.T) {
		coupon, err := svc.Validate(ctx, "SUMMER10", at, dec("100.00"))
		require.NoError(t, err)
		assert.Equal(t, "SUMMER10", coupon.Code)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		_, err := svc.Validate(ctx, "SUMMER10", day(2026, 6, 1).Add(8*time.Hour), dec("100.00"))
		assert.NoError(t, err)
		_, err = svc.Validate(ctx, "SUMMER10", day(2026, 8, 31).Add(23*time.Hour), dec("100.00"))
		assert.NoError(t, err)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Validate(ctx, "NOPE", at, dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonUnknownCode, couponErr.Reason)
	})

	t.Run("not yet started", func(t *testing.T) {
		_, err := svc.Validate(ctx, "SUMMER10", day(2026, 5, 20), dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonNotStarted, couponErr.Reason)
	})

	t.Run("expired", func(t *testing.T) {
		_, err := svc.Validate(ctx, "SUMMER10", day(2026, 9, 1), dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonExpired, couponErr.Reason)
	})

	t.Run("inactive", func(t *testing.T) {
		inactive := model.Coupon{
			Code: "DISABLED", DiscountType: model.DiscountPercentage, DiscountValue: dec("10"),
			StartDate: day(2026, 1, 1), EndDate: day(2026, 12, 31), UsageLimit: 5, Active: false,
		}
		seedCoupon(t, repo, &inactive)

		_, err := svc.Validate(ctx, "DISABLED", at, dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonInactive, couponErr.Reason)
	})

	t.Run("usage exhausted", func(t *testing.T) {
		spent := model.Coupon{
			Code: "SPENT", DiscountType: model.DiscountPercentage, DiscountValue: dec("10"),
			StartDate: day(2026, 1, 1), EndDate: day(2026, 12, 31),
			UsageLimit: 3, TimesUsed: 3, Active: true,
		}
		seedCoupon(t, repo, &spent)

		_, err := svc.Validate(ctx, "SPENT", at, dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonUsageExhausted, couponErr.Reason)
	})

	t.Run("below minimum amount", func(t *testing.T) {
		picky := model.Coupon{
			Code: "BIGSPENDER", DiscountType: model.DiscountFixed, DiscountValue: dec("20"),
			MinimumAmount: decimal.NewNullDecimal(dec("150.00")),
			StartDate:     day(2026, 1, 1), EndDate: day(2026, 12, 31),
			UsageLimit: 5, Active: true,
		}
		seedCoupon(t, repo, &picky)

		_, err := svc.Validate(ctx, "BIGSPENDER", at, dec("100.00"))
		var couponErr *InvalidCouponError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, CouponReasonBelowMinimum, couponErr.Reason)

		_, err = svc.Validate(ctx, "BIGSPENDER", at, dec("150.00"))
		assert.NoError(t, err)
	})
}

func TestCouponComputeDiscount(t *testing.T) {
	svc := NewCouponService(newMemCouponRepo())

	t.Run("percentage", func(t *testing.T) {
		coupon := &model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: dec("10")}
		got := svc.ComputeDiscount(coupon, dec("100.00"))
		assert.True(t, dec("10.00").Equal(got))
	})

	t.Run("percentage rounds to cents", func(t *testing.T) {
		coupon := &model.Coupon{DiscountType: model.DiscountPercentage, DiscountValue: dec("15")}
		got := svc.ComputeDiscount(coupon, dec("33.33"))
		assert.True(t, dec("5.00").Equal(got))
	})

	t.Run("fixed amount", func(t *testing.T) {
		coupon := &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: dec("20")}
		got := svc.ComputeDiscount(coupon, dec("100.00"))
		assert.True(t, dec("20").Equal(got))
	})

	t.Run("fixed amount capped at subtotal", func(t *testing.T) {
		coupon := &model.Coupon{DiscountType: model.DiscountFixed, DiscountValue: dec("50")}
		got := svc.ComputeDiscount(coupon, dec("30.00"))
		assert.True(t, dec("30.00").Equal(got))
	})
}
