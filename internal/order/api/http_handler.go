package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/inventory-order-service/internal/order/domain"
	"github.com/ridloal/inventory-order-service/internal/order/repository"
	"github.com/ridloal/inventory-order-service/internal/order/service"
	"github.com/ridloal/inventory-order-service/internal/platform/logger"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(os service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orderRoutes := router.Group("/orders")
	{
		orderRoutes.POST("", h.CreateOrder)
		orderRoutes.GET("", h.ListOrders)
		orderRoutes.GET("/:id", h.GetOrder)
		orderRoutes.POST("/:id/items", h.AddItemsToOrder)
		orderRoutes.PATCH("/:id/status", h.UpdateOrderStatus)
	}
}

func parseOrderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return id, true
}

// normalizeStatus coerces case-insensitive client input to the canonical enum
// values; the service layer only accepts canonical ones.
func normalizeStatus(raw string) (domain.OrderStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return domain.StatusPending, true
	case "shipped":
		return domain.StatusShipped, true
	case "cancelled":
		return domain.StatusCancelled, true
	}
	return "", false
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.writeOrderError(c, "CreateOrder", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) AddItemsToOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req domain.AddOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.orderService.AddItemsToOrder(c.Request.Context(), orderID, req.Items)
	if err != nil {
		h.writeOrderError(c, "AddItemsToOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.writeOrderError(c, "GetOrder", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), limit, skip)
	if err != nil {
		logger.Error("Hdl.ListOrders: service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req domain.OrderStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	status, ok := normalizeStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status: " + req.Status})
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, status)
	if err != nil {
		h.writeOrderError(c, "UpdateOrderStatus", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) writeOrderError(c *gin.Context, op string, err error) {
	var productNotFound *domain.ProductNotFoundError
	var insufficientStock *domain.InsufficientStockError
	var invalidState *domain.InvalidOrderStateError

	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &productNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &insufficientStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoOrderItems), errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Hdl."+op+": service error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process order request"})
	}
}
