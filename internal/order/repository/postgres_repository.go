package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/ridloal/inventory-order-service/internal/order/domain"
	"github.com/ridloal/inventory-order-service/internal/platform/logger"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrStockConstraint   = errors.New("stock decrement would drive quantity negative")
	ErrNoRowsDecremented = errors.New("no product row was decremented")
)

// DBTX is the transaction handle passed through the reservation and status
// paths. *sql.Tx satisfies it; tests substitute a mock.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
	Commit() error
	Rollback() error
}

// LockedProduct is a product row snapshot held under an exclusive row lock
// for the duration of a reservation transaction.
type LockedProduct struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	StockQuantity int
}

type OrderRepository interface {
	BeginTx(ctx context.Context) (DBTX, error)

	// Reservation path. All of these must be called with the same DBTX.
	LockProductsForUpdate(ctx context.Context, tx DBTX, ids []int64) ([]LockedProduct, error)
	DecrementProductStock(ctx context.Context, tx DBTX, productID int64, quantity int) error
	InsertOrder(ctx context.Context, tx DBTX, order *domain.Order) error
	InsertOrderItems(ctx context.Context, tx DBTX, orderID int64, items []domain.OrderItem) error

	// Status path.
	GetOrderForUpdate(ctx context.Context, tx DBTX, orderID int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, tx DBTX, orderID int64, status domain.OrderStatus) error

	// Read path.
	GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error)
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

func (r *postgresOrderRepository) BeginTx(ctx context.Context) (DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

// LockProductsForUpdate acquires exclusive row locks on the given product ids,
// skipping soft-deleted rows. ORDER BY id fixes a global lock-acquisition
// order so overlapping reservations cannot deadlock.
func (r *postgresOrderRepository) LockProductsForUpdate(ctx context.Context, tx DBTX, ids []int64) ([]LockedProduct, error) {
	query := `SELECT id, name, price, stock_quantity
              FROM products
              WHERE id = ANY($1) AND deleted_at IS NULL
              ORDER BY id
              FOR UPDATE`
	rows, err := tx.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("LockProductsForUpdate: query failed", err)
		return nil, err
	}
	defer rows.Close()

	var products []LockedProduct
	for rows.Next() {
		var p LockedProduct
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.StockQuantity); err != nil {
			logger.Error("LockProductsForUpdate: scan failed", err)
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresOrderRepository) DecrementProductStock(ctx context.Context, tx DBTX, productID int64, quantity int) error {
	query := `UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
              WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, quantity, productID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" { // check_violation
			return ErrStockConstraint
		}
		logger.Error("DecrementProductStock: exec failed", err, map[string]interface{}{"product_id": productID})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrNoRowsDecremented
	}
	return nil
}

func (r *postgresOrderRepository) InsertOrder(ctx context.Context, tx DBTX, order *domain.Order) error {
	query := `INSERT INTO orders (status) VALUES ($1) RETURNING id, created_at, status`
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	err := tx.QueryRowContext(ctx, query, order.Status).
		Scan(&order.ID, &order.CreatedAt, &order.Status)
	if err != nil {
		logger.Error("InsertOrder: failed to insert order", err)
		return err
	}
	return nil
}

func (r *postgresOrderRepository) InsertOrderItems(ctx context.Context, tx DBTX, orderID int64, items []domain.OrderItem) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO order_items (order_id, product_id, quantity_ordered, price_at_time)
                                        VALUES ($1, $2, $3, $4) RETURNING id`)
	if err != nil {
		logger.Error("InsertOrderItems: failed to prepare statement", err)
		return err
	}
	defer stmt.Close()

	for i := range items {
		items[i].OrderID = orderID
		err = stmt.QueryRowContext(ctx, orderID, items[i].ProductID, items[i].QuantityOrdered, items[i].PriceAtTime).
			Scan(&items[i].ID)
		if err != nil {
			logger.Error("InsertOrderItems: failed to insert order item", err, map[string]interface{}{"product_id": items[i].ProductID})
			return err
		}
	}
	return nil
}

// GetOrderForUpdate locks the order row so concurrent status updates and
// add-items calls serialize against each other.
func (r *postgresOrderRepository) GetOrderForUpdate(ctx context.Context, tx DBTX, orderID int64) (*domain.Order, error) {
	query := `SELECT id, created_at, status FROM orders WHERE id = $1 FOR UPDATE`
	var o domain.Order
	err := tx.QueryRowContext(ctx, query, orderID).Scan(&o.ID, &o.CreatedAt, &o.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderForUpdate: query failed", err, map[string]interface{}{"order_id": orderID})
		return nil, err
	}
	return &o, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, tx DBTX, orderID int64, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`
	res, err := tx.ExecContext(ctx, query, status, orderID)
	if err != nil {
		logger.Error("UpdateOrderStatus: exec failed", err, map[string]interface{}{"order_id": orderID, "new_status": status})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query := `SELECT id, created_at, status FROM orders WHERE id = $1`
	var o domain.Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&o.ID, &o.CreatedAt, &o.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err, map[string]interface{}{"order_id": orderID})
		return nil, err
	}

	items, err := r.getOrderItems(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	o.Items = items[orderID]
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}
	return &o, nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	query := `SELECT id, created_at, status FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		logger.Error("ListOrders: query failed", err)
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	orderIDs := []int64{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.CreatedAt, &o.Status); err != nil {
			logger.Error("ListOrders: scan failed", err)
			return nil, err
		}
		orders = append(orders, o)
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemsByOrder, err := r.getOrderItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderItem{}
		}
	}
	return orders, nil
}

// getOrderItems joins products without the visibility predicate: items must
// stay readable even after their product is soft-deleted.
func (r *postgresOrderRepository) getOrderItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	query := `SELECT oi.id, oi.order_id, oi.product_id, oi.quantity_ordered, oi.price_at_time, p.name
              FROM order_items oi
              JOIN products p ON p.id = oi.product_id
              WHERE oi.order_id = ANY($1)
              ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(orderIDs))
	if err != nil {
		logger.Error("getOrderItems: query failed", err)
		return nil, err
	}
	defer rows.Close()

	itemsByOrder := map[int64][]domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.QuantityOrdered, &item.PriceAtTime, &item.ProductName); err != nil {
			logger.Error("getOrderItems: scan failed", err)
			return nil, err
		}
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}
	return itemsByOrder, rows.Err()
}
