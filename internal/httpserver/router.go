package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vegshop/internal/domain"
	"vegshop/internal/service/checkout"
	"vegshop/internal/service/delivery"
	"vegshop/internal/service/inventory"
	"vegshop/internal/service/receipt"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type InventoryService interface {
	List() []domain.InventoryItem
	AddStock(ctx context.Context, name string, quantity domain.Quantity, price, cost decimal.Decimal) (domain.InventoryItem, error)
	CreateItem(ctx context.Context, item domain.InventoryItem) (domain.InventoryItem, error)
	UpdateItem(ctx context.Context, name string, patch inventory.Patch) (domain.InventoryItem, error)
	RemoveItem(ctx context.Context, name string) error
}

type CartService interface {
	Lines() []domain.CartLine
	Total() (decimal.Decimal, error)
	AddLine(itemName string, quantity domain.Quantity) (domain.CartLine, error)
	UpdateLine(lineID string, quantity domain.Quantity) (domain.CartLine, error)
	RemoveLine(lineID string) error
	Clear() error
}

type CheckoutService interface {
	Checkout(ctx context.Context, phone string) (checkout.Result, error)
}

type OrderHistory interface {
	List() []domain.Order
	Get(id string) (domain.Order, error)
}

type ReceiptRenderer interface {
	Render(order domain.Order) (receipt.Document, error)
}

type DeliveryOutbox interface {
	Jobs() []delivery.Job
	Drain(ctx context.Context) delivery.DrainReport
}

type OwnerAuthenticator interface {
	Authenticate(username, password string) error
}

// Deps bundles the services the handlers call.
type Deps struct {
	Store      Pinger
	Inventory  InventoryService
	Cart       CartService
	Checkout   CheckoutService
	Orders     OrderHistory
	Receipts   ReceiptRenderer
	Deliveries DeliveryOutbox
	Owner      OwnerAuthenticator
}

func (d Deps) validate() error {
	switch {
	case d.Inventory == nil:
		return errors.New("httpserver: inventory service is required")
	case d.Cart == nil:
		return errors.New("httpserver: cart service is required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout service is required")
	case d.Orders == nil:
		return errors.New("httpserver: order history is required")
	case d.Receipts == nil:
		return errors.New("httpserver: receipt renderer is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps, opts Options) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	h := &handlers{deps: deps, logger: logger}

	router.GET("/items", h.listItems)

	router.GET("/cart", h.getCart)
	router.DELETE("/cart", h.clearCart)
	router.POST("/cart/lines", h.addLine)
	router.PUT("/cart/lines/:lineID", h.updateLine)
	router.DELETE("/cart/lines/:lineID", h.removeLine)

	router.POST("/checkout", h.checkout)
	router.GET("/orders/:orderID/receipt", h.receipt)

	owner := router.Group("/owner", ownerAuth(deps.Owner))
	owner.GET("/items", h.ownerListItems)
	owner.POST("/items", h.ownerAddItem)
	owner.PUT("/items/:name", h.ownerUpdateItem)
	owner.DELETE("/items/:name", h.ownerRemoveItem)
	owner.GET("/orders", h.ownerListOrders)
	owner.GET("/deliveries", h.ownerListDeliveries)
	owner.POST("/deliveries/retry", h.ownerRetryDeliveries)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
