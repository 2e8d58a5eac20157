package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusShipped   OrderStatus = "Shipped"
	StatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// ValidateTransition enforces the order status rules: a cancelled order is
// frozen, and a shipped order cannot go back to pending. Self-transitions are
// accepted as no-ops.
func ValidateTransition(current, next OrderStatus) error {
	if current == StatusCancelled {
		return &InvalidOrderStateError{Reason: "cannot update status of a cancelled order"}
	}
	if current == StatusShipped && next == StatusPending {
		return &InvalidOrderStateError{Reason: "cannot change status from Shipped to Pending"}
	}
	return nil
}

type Order struct {
	ID        int64       `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Status    OrderStatus `json:"status"`
	Items     []OrderItem `json:"order_items"`
}

type OrderItem struct {
	ID              int64           `json:"id"`
	OrderID         int64           `json:"-"`
	ProductID       int64           `json:"product_id"`
	QuantityOrdered int             `json:"quantity_ordered"`
	PriceAtTime     decimal.Decimal `json:"price_at_time"`
	ProductName     string          `json:"product_name,omitempty"` // Read-side join, not persisted on the item
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type AddOrderItemsRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderStatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}
