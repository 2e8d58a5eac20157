package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/ridloal/inventory-order-service/internal/platform/logger"
	"github.com/ridloal/inventory-order-service/internal/product/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrStockOutOfBounds = errors.New("update results in negative stock quantity")
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, int64, error)
	UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error)
	SoftDeleteProduct(ctx context.Context, id int64) error
	BulkSoftDeleteProducts(ctx context.Context, ids []int64) (int64, error)
	ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error)
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (name, price, stock_quantity)
              VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, product.Name, product.Price, product.StockQuantity).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" { // check_violation
			return ErrStockOutOfBounds
		}
		logger.Error("CreateProduct: failed to insert product", err)
		return err
	}
	return nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, name, price, stock_quantity, created_at, updated_at
              FROM products WHERE id = $1 AND deleted_at IS NULL`
	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err)
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, limit, offset int) ([]domain.Product, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		logger.Error("ListProducts: count failed", err)
		return nil, 0, err
	}

	query := `SELECT id, name, price, stock_quantity, created_at, updated_at
              FROM products WHERE deleted_at IS NULL
              ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, 0, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// UpdateProduct applies only the fields present in the request. Soft-deleted
// products are not updatable and report not-found.
func (r *postgresProductRepository) UpdateProduct(ctx context.Context, id int64, req domain.UpdateProductRequest) (*domain.Product, error) {
	query := `UPDATE products SET
                name = COALESCE($1, name),
                price = COALESCE($2, price),
                stock_quantity = COALESCE($3, stock_quantity),
                updated_at = NOW()
              WHERE id = $4 AND deleted_at IS NULL
              RETURNING id, name, price, stock_quantity, created_at, updated_at`
	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Price, req.StockQuantity, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" { // check_violation
			return nil, ErrStockOutOfBounds
		}
		logger.Error("UpdateProduct: exec failed", err, map[string]interface{}{"product_id": id})
		return nil, err
	}
	return &p, nil
}

// SoftDeleteProduct stamps deleted_at once. A second call on the same product
// reports not-found rather than moving the timestamp.
func (r *postgresProductRepository) SoftDeleteProduct(ctx context.Context, id int64) error {
	query := `UPDATE products SET deleted_at = NOW(), updated_at = NOW()
              WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("SoftDeleteProduct: exec failed", err, map[string]interface{}{"product_id": id})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) BulkSoftDeleteProducts(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `UPDATE products SET deleted_at = NOW(), updated_at = NOW()
              WHERE id = ANY($1) AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("BulkSoftDeleteProducts: exec failed", err)
		return 0, err
	}
	rowsAffected, _ := res.RowsAffected()
	return rowsAffected, nil
}

func (r *postgresProductRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]domain.Product, error) {
	query := `SELECT id, name, price, stock_quantity, created_at, updated_at
              FROM products WHERE deleted_at IS NULL AND stock_quantity <= $1
              ORDER BY stock_quantity ASC`
	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		logger.Error("ListLowStockProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			logger.Error("ListLowStockProducts: scan failed", err)
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
