package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	DeletedAt     *time.Time      `json:"-"` // Soft-delete marker, hidden from API responses
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
}

// Pointer fields so a partial update can distinguish "absent" from zero values.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
}

type BulkDeleteProductsRequest struct {
	ProductIDs []int64 `json:"product_ids" binding:"required,min=1"`
}

type BulkDeleteProductsResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

type ProductListResponse struct {
	Items []Product `json:"items"`
	Total int64     `json:"total"`
	Skip  int       `json:"skip"`
	Limit int       `json:"limit"`
}
