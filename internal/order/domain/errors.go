package domain

import "fmt"

// ProductNotFoundError reports a reservation against a product id that does
// not exist or has been soft-deleted.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// InsufficientStockError reports a line item that asked for more than the
// locked row had available. The whole batch is aborted when this is returned.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product '%s'. Available: %d, Requested: %d",
		e.Name, e.Available, e.Requested)
}

// InvalidOrderStateError reports a rejected status transition or an attempt
// to modify an order whose status forbids it.
type InvalidOrderStateError struct {
	Reason string
}

func (e *InvalidOrderStateError) Error() string {
	return e.Reason
}
