package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ridloal/inventory-order-service/internal/order/domain"
	"github.com/ridloal/inventory-order-service/internal/order/repository"
	"github.com/ridloal/inventory-order-service/internal/platform/logger"
)

var (
	ErrNoOrderItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity   = errors.New("item quantity must be greater than zero")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrTransactionFailed = errors.New("order transaction failed")
)

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error)
	AddItemsToOrder(ctx context.Context, orderID int64, items []domain.OrderItemRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error)
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderServiceImpl{orderRepo: orderRepo}
}

// CreateOrder reserves stock for every requested line item and persists the
// order with a per-line price snapshot, all in one transaction. Any failure
// rolls back the whole batch: no partial stock decrement, no partial order.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validateItemRequests(req.Items); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.CreateOrder: begin tx failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	items, err := s.reserveStock(ctx, tx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{Status: domain.StatusPending}
	if err := s.orderRepo.InsertOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	if err := s.orderRepo.InsertOrderItems(ctx, tx, order.ID, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.CreateOrder: commit failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	order.Items = items
	return order, nil
}

// AddItemsToOrder runs the same reservation as CreateOrder against an existing
// order. The order row is locked first so a concurrent status change cannot
// slip in between the status check and the item insert; a non-Pending order
// fails before any product lock is taken.
func (s *orderServiceImpl) AddItemsToOrder(ctx context.Context, orderID int64, itemReqs []domain.OrderItemRequest) (*domain.Order, error) {
	if err := validateItemRequests(itemReqs); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.AddItemsToOrder: begin tx failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return nil, &domain.InvalidOrderStateError{
			Reason: fmt.Sprintf("cannot add items to an order in status %s", order.Status),
		}
	}

	items, err := s.reserveStock(ctx, tx, itemReqs)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.InsertOrderItems(ctx, tx, orderID, items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.AddItemsToOrder: commit failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	return s.orderRepo.ListOrders(ctx, limit, offset)
}

// UpdateOrderStatus applies the status state machine under the order row lock.
func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Svc.UpdateOrderStatus: begin tx failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateTransition(order.Status, status); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, tx, orderID, status); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Svc.UpdateOrderStatus: commit failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// reserveStock locks the referenced product rows in ascending id order,
// validates the whole batch against the locked quantities, and only then
// decrements. Ascending ids fix a global lock order so two overlapping
// reservations cannot deadlock; validation before any write keeps a failed
// batch free of side effects.
func (s *orderServiceImpl) reserveStock(ctx context.Context, tx repository.DBTX, requests []domain.OrderItemRequest) ([]domain.OrderItem, error) {
	ids := distinctSortedProductIDs(requests)

	locked, err := s.orderRepo.LockProductsForUpdate(ctx, tx, ids)
	if err != nil {
		logger.Error("Svc.reserveStock: lock products failed", err)
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	lockedByID := make(map[int64]*repository.LockedProduct, len(locked))
	for i := range locked {
		lockedByID[locked[i].ID] = &locked[i]
	}

	// Non-existent and soft-deleted ids fail the whole batch before any
	// quantity is inspected.
	for _, req := range requests {
		if _, ok := lockedByID[req.ProductID]; !ok {
			return nil, &domain.ProductNotFoundError{ProductID: req.ProductID}
		}
	}

	// remaining tracks availability as earlier lines of the same batch consume
	// it, so duplicate product ids cannot oversubscribe a row.
	remaining := make(map[int64]int, len(locked))
	for _, p := range locked {
		remaining[p.ID] = p.StockQuantity
	}
	for _, req := range requests {
		p := lockedByID[req.ProductID]
		if remaining[req.ProductID] < req.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Available: remaining[req.ProductID],
				Requested: req.Quantity,
			}
		}
		remaining[req.ProductID] -= req.Quantity
	}

	items := make([]domain.OrderItem, 0, len(requests))
	for _, req := range requests {
		if err := s.orderRepo.DecrementProductStock(ctx, tx, req.ProductID, req.Quantity); err != nil {
			logger.Error("Svc.reserveStock: decrement failed", err, map[string]interface{}{"product_id": req.ProductID})
			return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}
		p := lockedByID[req.ProductID]
		items = append(items, domain.OrderItem{
			ProductID:       p.ID,
			QuantityOrdered: req.Quantity,
			PriceAtTime:     p.Price,
			ProductName:     p.Name,
		})
	}
	return items, nil
}

func validateItemRequests(items []domain.OrderItemRequest) error {
	if len(items) == 0 {
		return ErrNoOrderItems
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func distinctSortedProductIDs(requests []domain.OrderItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(requests))
	ids := make([]int64, 0, len(requests))
	for _, req := range requests {
		if _, ok := seen[req.ProductID]; !ok {
			seen[req.ProductID] = struct{}{}
			ids = append(ids, req.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
