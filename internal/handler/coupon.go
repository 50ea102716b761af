package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mweb/storefront-api/internal/dto"
	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
	"github.com/mweb/storefront-api/internal/service"
)

type CouponHandler struct {
	couponService *service.CouponService
}

func NewCouponHandler(couponService *service.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req dto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon := &model.Coupon{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		UsageLimit:    req.UsageLimit,
		Active:        true,
	}
	if req.MinimumAmount != nil {
		coupon.MinimumAmount = decimal.NewNullDecimal(*req.MinimumAmount)
	}

	if err := h.couponService.Create(c.Request.Context(), coupon); err != nil {
		if errors.Is(err, repository.ErrDuplicateCoupon) {
			c.JSON(http.StatusConflict, gin.H{"error": "coupon code already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, toCouponResponse(coupon))
}

func toCouponResponse(coupon *model.Coupon) dto.CouponResponse {
	resp := dto.CouponResponse{
		ID:            coupon.ID,
		Code:          coupon.Code,
		Description:   coupon.Description,
		DiscountType:  string(coupon.DiscountType),
		DiscountValue: coupon.DiscountValue,
		StartDate:     coupon.StartDate,
		EndDate:       coupon.EndDate,
		UsageLimit:    coupon.UsageLimit,
		TimesUsed:     coupon.TimesUsed,
		Active:        coupon.Active,
	}
	if coupon.MinimumAmount.Valid {
		min := coupon.MinimumAmount.Decimal
		resp.MinimumAmount = &min
	}
	return resp
}
