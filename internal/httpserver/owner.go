package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vegshop/internal/domain"
	"vegshop/internal/service/inventory"
)

type ownerItemRequest struct {
	Name     string          `json:"name"`
	Quantity string          `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
}

type ownerPatchRequest struct {
	Quantity *string          `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
	Cost     *decimal.Decimal `json:"cost"`
}

func (h *handlers) ownerListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": toItemViews(h.deps.Inventory.List(), true)})
}

// ownerAddItem restocks by default. With ?mode=create an existing name is a conflict.
func (h *handlers) ownerAddItem(c *gin.Context) {
	var req ownerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	qty, err := domain.ParseText(req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	switch mode := c.DefaultQuery("mode", "restock"); mode {
	case "create":
		item, err := h.deps.Inventory.CreateItem(ctx, domain.InventoryItem{
			Name:      req.Name,
			Stock:     qty,
			SellPrice: req.Price,
			CostPrice: req.Cost,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, toItemView(item, true))
	case "restock":
		item, err := h.deps.Inventory.AddStock(ctx, req.Name, qty, req.Price, req.Cost)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toItemView(item, true))
	default:
		badRequest(c, fmt.Sprintf("unknown mode %q", mode))
	}
}

func (h *handlers) ownerUpdateItem(c *gin.Context) {
	var req ownerPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	patch := inventory.Patch{SellPrice: req.Price, CostPrice: req.Cost}
	if req.Quantity != nil {
		qty, err := domain.ParseText(*req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		patch.Stock = &qty
	}
	item, err := h.deps.Inventory.UpdateItem(c.Request.Context(), strings.TrimSpace(c.Param("name")), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemView(item, true))
}

func (h *handlers) ownerRemoveItem(c *gin.Context) {
	if err := h.deps.Inventory.RemoveItem(c.Request.Context(), strings.TrimSpace(c.Param("name"))); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) ownerListOrders(c *gin.Context) {
	orders := h.deps.Orders.List()
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": out, "count": len(out)})
}

func (h *handlers) ownerListDeliveries(c *gin.Context) {
	if h.deps.Deliveries == nil {
		c.JSON(http.StatusOK, gin.H{"jobs": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": h.deps.Deliveries.Jobs()})
}

func (h *handlers) ownerRetryDeliveries(c *gin.Context) {
	if h.deps.Deliveries == nil {
		c.JSON(http.StatusOK, gin.H{"delivered": 0, "failed": 0})
		return
	}
	c.JSON(http.StatusOK, h.deps.Deliveries.Drain(c.Request.Context()))
}
