package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mweb/storefront-api/internal/dto"
	"github.com/mweb/storefront-api/internal/model"
	"github.com/mweb/storefront-api/internal/repository"
	"github.com/mweb/storefront-api/internal/service"
)

type InventoryHandler struct {
	inventoryService *service.InventoryService
}

func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.inventoryService.CreateRecord(c.Request.Context(), req.ProductID, req.CurrentStock, req.MinimumStock, req.MaximumStock)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, repository.ErrDuplicateInventory):
			c.JSON(http.StatusConflict, gin.H{"error": "inventory record already exists"})
		case errors.Is(err, service.ErrStockExceedsMaximum):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, toInventoryResponse(inv))
}

func (h *InventoryHandler) GetByProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	inv, err := h.inventoryService.GetByProduct(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, service.ErrInventoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "inventory record not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, toInventoryResponse(inv))
}

func (h *InventoryHandler) SetStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.inventoryService.SetLevel(c.Request.Context(), productID, req.Stock)
	if err != nil {
		h.respondAdjustError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(inv))
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.inventoryService.AddStock(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.respondAdjustError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(inv))
}

func (h *InventoryHandler) ReduceStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.inventoryService.ReduceStock(c.Request.Context(), productID, req.Quantity)
	if err != nil {
		h.respondAdjustError(c, err)
		return
	}
	c.JSON(http.StatusOK, toInventoryResponse(inv))
}

// List reports stock alerts. The filter query parameter selects between the
// low-stock and out-of-stock views; the two cannot be path segments because
// the same subtree already captures :productID.
func (h *InventoryHandler) List(c *gin.Context) {
	var req dto.ListInventoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var records []model.Inventory
	var err error
	switch req.Filter {
	case "low-stock":
		records, err = h.inventoryService.ListLowStock(c.Request.Context())
	case "out-of-stock":
		records, err = h.inventoryService.ListOutOfStock(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, toInventoryList(records))
}

func (h *InventoryHandler) respondAdjustError(c *gin.Context, err error) {
	var stockErr *repository.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrInventoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "inventory record not found"})
	case errors.Is(err, service.ErrStockExceedsMaximum):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func toInventoryResponse(inv *model.Inventory) dto.InventoryResponse {
	return dto.InventoryResponse{
		ProductID:    inv.ProductID,
		CurrentStock: inv.CurrentStock,
		MinimumStock: inv.MinimumStock,
		MaximumStock: inv.MaximumStock,
		LastUpdated:  inv.LastUpdated,
	}
}

func toInventoryList(records []model.Inventory) []dto.InventoryResponse {
	out := make([]dto.InventoryResponse, 0, len(records))
	for i := range records {
		out = append(out, toInventoryResponse(&records[i]))
	}
	return out
}
