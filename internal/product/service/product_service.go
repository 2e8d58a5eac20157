package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridloal/inventory-order-service/internal/platform/logger"
	"github.com/ridloal/inventory-order-service/internal/product/domain"
	"github.com/ridloal/inventory-order-service/internal/product/repository"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductName  = errors.New("product name must not be empty")
	ErrInvalidProductPrice = errors.New("product price must be greater than zero")
	ErrInvalidStock        = errors.New("stock quantity must not be negative")
)

type ProductService interface {
	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) (*domain.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	BulkDeleteProducts(ctx context.Context, ids []int64) (int64, error)
	ReportLowStock(ctx context.Context)
}

type productServiceImpl struct {
	repo              repository.ProductRepository
	scheduler         *cron.Cron
	lowStockThreshold int
}

func NewProductService(repo repository.ProductRepository, lowStockThreshold int, sweepSpec string) ProductService {
	s := &productServiceImpl{
		repo:              repo,
		scheduler:         cron.New(),
		lowStockThreshold: lowStockThreshold,
	}
	s.initScheduler(sweepSpec)
	return s
}

func (s *productServiceImpl) initScheduler(spec string) {
	s.scheduler.AddFunc(spec, func() {
		s.ReportLowStock(context.Background())
	})
	s.scheduler.Start()
	logger.Info(fmt.Sprintf("Low-stock sweep scheduled with spec '%s', threshold %d", spec, s.lowStockThreshold))
}

// ReportLowStock logs every visible product at or below the configured
// threshold so operators can restock before orders start failing.
func (s *productServiceImpl) ReportLowStock(ctx context.Context) {
	products, err := s.repo.ListLowStockProducts(ctx, s.lowStockThreshold)
	if err != nil {
		logger.Error("ReportLowStock: failed to list low stock products", err)
		return
	}
	for _, p := range products {
		logger.Warn("Product is running low on stock", map[string]interface{}{
			"product_id":     p.ID,
			"name":           p.Name,
			"stock_quantity": p.StockQuantity,
		})
	}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidProductName
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidProductPrice
	}
	if req.StockQuantity < 0 {
		return nil, ErrInvalidStock
	}

	product := &domain.Product{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		logger.Error("Svc.CreateProduct: repo error", err)
		return nil, err
	}
	return product, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *productServiceImpl) ListProducts(ctx context.Context, limit, offset int) (*domain.ProductListResponse, error) {
	products, total, err := s.repo.ListProducts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return &domain.ProductListResponse{
		Items: products,
		Total: total,
		Skip:  offset,
		Limit: limit,
	}, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidProductName
	}
	if req.Price != nil && req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidProductPrice
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		return nil, ErrInvalidStock
	}
	return s.repo.UpdateProduct(ctx, id, req)
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.SoftDeleteProduct(ctx, id)
}

func (s *productServiceImpl) BulkDeleteProducts(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.repo.BulkSoftDeleteProducts(ctx, ids)
}
