package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// OrderWorkflow is the order use-case surface. service.OrderService
// implements it.
type OrderWorkflow interface {
	CreateOrder(ctx context.Context, productID string, quantity int) (domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	OrderEvents(ctx context.Context, id string) ([]domain.OrderEvent, error)
}

// CreateOrderRequest names the product by its catalog id.
type CreateOrderRequest struct {
	ID       string `json:"id"`
	Quantity *int   `json:"quantity"`
}

type OrderResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type EventResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Timestamp time.Time       `json:"timestamp"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toEventResponse(ev domain.OrderEvent) EventResponse {
	return EventResponse{
		ID:        ev.ID,
		Type:      string(ev.Type),
		OrderID:   ev.OrderID,
		ProductID: ev.ProductID,
		Status:    string(ev.Status),
		Total:     ev.Total,
		Timestamp: ev.Timestamp,
	}
}

type OrderHandler struct {
	orders OrderWorkflow
}

func NewOrderHandler(orders OrderWorkflow) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// NewOrderRouter serves the payment/order API.
func NewOrderRouter(orders OrderWorkflow, store Pinger, logger *slog.Logger) *gin.Engine {
	h := NewOrderHandler(orders)
	health := NewHealthHandler("payment", "Payment service is healthy", store, logger)

	router := newRouter("orders", logger)
	router.GET("/", health.HealthCheck)
	router.GET("/orders", h.ListOrders)
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders/:id", h.GetOrder)
	router.GET("/orders/:id/events", h.ListOrderEvents)
	return router
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondProblem(c, ErrBadRequestProblem.WithDetail("invalid request body"))
		return
	}
	if req.Quantity == nil {
		respondProblem(c, ErrValidationProblem.WithDetail("missing required fields").
			WithExtension("fields", map[string]string{"quantity": "is required"}))
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req.ID, *req.Quantity)
	if err != nil {
		respondError(c, err, "product "+req.ID)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "order "+c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) ListOrderEvents(c *gin.Context) {
	events, err := h.orders.OrderEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "order "+c.Param("id"))
		return
	}
	resp := make([]EventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, toEventResponse(ev))
	}
	c.JSON(http.StatusOK, resp)
}
