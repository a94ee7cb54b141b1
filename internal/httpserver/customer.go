package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vegshop/internal/service/cart"
	"vegshop/internal/service/checkout"
)

type addLineRequest struct {
	Name string `json:"name"`
	cart.QuantityInput
}

type checkoutRequest struct {
	Phone string `json:"phone"`
}

func (h *handlers) listItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": toItemViews(h.deps.Inventory.List(), false)})
}

func (h *handlers) getCart(c *gin.Context) {
	h.respondCart(c, http.StatusOK)
}

func (h *handlers) respondCart(c *gin.Context, status int) {
	total, err := h.deps.Cart.Total()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, toCartView(h.deps.Cart.Lines(), total))
}

func (h *handlers) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "name required")
		return
	}
	qty, err := req.QuantityInput.Parse()
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := h.deps.Cart.AddLine(name, qty); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusCreated)
}

func (h *handlers) updateLine(c *gin.Context) {
	var req cart.QuantityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	qty, err := req.Parse()
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err := h.deps.Cart.UpdateLine(c.Param("lineID"), qty); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *handlers) removeLine(c *gin.Context) {
	if err := h.deps.Cart.RemoveLine(c.Param("lineID")); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *handlers) clearCart(c *gin.Context) {
	if err := h.deps.Cart.Clear(); err != nil {
		writeError(c, err)
		return
	}
	h.respondCart(c, http.StatusOK)
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	res, err := h.deps.Checkout.Checkout(c.Request.Context(), req.Phone)
	if err != nil {
		status, body := classify(err)
		body.State = string(res.State)
		_ = c.Error(err)
		c.JSON(status, body)
		return
	}
	view := toOrderView(res.Order)
	if res.Receipt == nil {
		view.ReceiptURL = ""
	}
	c.JSON(http.StatusCreated, gin.H{"state": checkout.StateCommitted, "order": view})
}

func (h *handlers) receipt(c *gin.Context) {
	order, err := h.deps.Orders.Get(c.Param("orderID"))
	if err != nil {
		writeError(c, err)
		return
	}
	doc, err := h.deps.Receipts.Render(order)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
