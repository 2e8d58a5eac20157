package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ridloal/inventory-order-service/internal/product/domain"
	"github.com/ridloal/inventory-order-service/internal/product/repository"
	"github.com/ridloal/inventory-order-service/internal/product/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newProductServiceWithMock() (ProductService, *mocks.MockProductRepository) {
	mockRepo := new(mocks.MockProductRepository)
	return NewProductService(mockRepo, 5, "@every 1h"), mockRepo
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Success", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		req := domain.CreateProductRequest{
			Name:          "Widget",
			Price:         decimal.RequireFromString("49.99"),
			StockQuantity: 100,
		}

		mockRepo.On("CreateProduct", ctx, mock.AnythingOfType("*domain.Product")).Return(nil).Once()

		product, err := svc.CreateProduct(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), product.ID)
		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, 100, product.StockQuantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Blank name rejected", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		req := domain.CreateProductRequest{
			Name:          "   ",
			Price:         decimal.RequireFromString("1.00"),
			StockQuantity: 1,
		}

		product, err := svc.CreateProduct(ctx, req)

		assert.ErrorIs(t, err, ErrInvalidProductName)
		assert.Nil(t, product)
		mockRepo.AssertNotCalled(t, "CreateProduct", ctx, mock.Anything)
	})

	t.Run("Non-positive price rejected", func(t *testing.T) {
		svc, _ := newProductServiceWithMock()
		req := domain.CreateProductRequest{Name: "Widget", Price: decimal.Zero, StockQuantity: 1}

		product, err := svc.CreateProduct(ctx, req)

		assert.ErrorIs(t, err, ErrInvalidProductPrice)
		assert.Nil(t, product)
	})

	t.Run("Negative stock rejected", func(t *testing.T) {
		svc, _ := newProductServiceWithMock()
		req := domain.CreateProductRequest{
			Name:          "Widget",
			Price:         decimal.RequireFromString("1.00"),
			StockQuantity: -1,
		}

		product, err := svc.CreateProduct(ctx, req)

		assert.ErrorIs(t, err, ErrInvalidStock)
		assert.Nil(t, product)
	})
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Not found passes through", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()

		mockRepo.On("GetProductByID", ctx, int64(99999)).
			Return(nil, repository.ErrProductNotFound).Once()

		product, err := svc.GetProduct(ctx, int64(99999))

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
		assert.Nil(t, product)
		mockRepo.AssertExpectations(t)
	})
}

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.TODO()

	t.Run("Wraps page with totals", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		page := []domain.Product{
			{ID: 1, Name: "Widget", Price: decimal.RequireFromString("49.99"), StockQuantity: 100},
			{ID: 2, Name: "Gadget", Price: decimal.RequireFromString("12.50"), StockQuantity: 5},
		}

		mockRepo.On("ListProducts", ctx, 20, 40).Return(page, int64(57), nil).Once()

		resp, err := svc.ListProducts(ctx, 20, 40)

		assert.NoError(t, err)
		assert.Equal(t, int64(57), resp.Total)
		assert.Equal(t, 40, resp.Skip)
		assert.Equal(t, 20, resp.Limit)
		assert.Len(t, resp.Items, 2)
		mockRepo.AssertExpectations(t)
	})
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Partial update delegates to repository", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		newStock := 42
		req := domain.UpdateProductRequest{StockQuantity: &newStock}
		updated := &domain.Product{ID: 3, Name: "Widget", Price: decimal.RequireFromString("49.99"), StockQuantity: 42}

		mockRepo.On("UpdateProduct", ctx, int64(3), req).Return(updated, nil).Once()

		product, err := svc.UpdateProduct(ctx, int64(3), req)

		assert.NoError(t, err)
		assert.Equal(t, 42, product.StockQuantity)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Blank name rejected before repository", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		blank := ""
		req := domain.UpdateProductRequest{Name: &blank}

		product, err := svc.UpdateProduct(ctx, int64(3), req)

		assert.ErrorIs(t, err, ErrInvalidProductName)
		assert.Nil(t, product)
		mockRepo.AssertNotCalled(t, "UpdateProduct", ctx, int64(3), req)
	})

	t.Run("Not found passes through", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		newStock := 1
		req := domain.UpdateProductRequest{StockQuantity: &newStock}

		mockRepo.On("UpdateProduct", ctx, int64(99999), req).
			Return(nil, repository.ErrProductNotFound).Once()

		product, err := svc.UpdateProduct(ctx, int64(99999), req)

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
		assert.Nil(t, product)
		mockRepo.AssertExpectations(t)
	})
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.TODO()

	t.Run("Already deleted reports not found", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()

		mockRepo.On("SoftDeleteProduct", ctx, int64(7)).
			Return(repository.ErrProductNotFound).Once()

		err := svc.DeleteProduct(ctx, int64(7))

		assert.ErrorIs(t, err, repository.ErrProductNotFound)
		mockRepo.AssertExpectations(t)
	})
}

func TestProductService_BulkDeleteProducts(t *testing.T) {
	ctx := context.TODO()

	t.Run("Reports affected count only", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		ids := []int64{1, 2, 99999}

		mockRepo.On("BulkSoftDeleteProducts", ctx, ids).Return(int64(2), nil).Once()

		count, err := svc.BulkDeleteProducts(ctx, ids)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Empty id list is a no-op", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()

		count, err := svc.BulkDeleteProducts(ctx, nil)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), count)
		mockRepo.AssertNotCalled(t, "BulkSoftDeleteProducts", ctx, mock.Anything)
	})
}

func TestProductService_ReportLowStock(t *testing.T) {
	ctx := context.TODO()

	t.Run("Repository error is tolerated", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()

		mockRepo.On("ListLowStockProducts", ctx, 5).
			Return(nil, errors.New("connection reset")).Once()

		svc.ReportLowStock(ctx)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Logs each product at or below threshold", func(t *testing.T) {
		svc, mockRepo := newProductServiceWithMock()
		low := []domain.Product{
			{ID: 2, Name: "Gadget", StockQuantity: 5},
			{ID: 4, Name: "Bolt", StockQuantity: 0},
		}

		mockRepo.On("ListLowStockProducts", ctx, 5).Return(low, nil).Once()

		svc.ReportLowStock(ctx)

		mockRepo.AssertExpectations(t)
	})
}
