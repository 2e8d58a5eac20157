package mocks

import (
	"context"

	"github.com/ridloal/inventory-order-service/internal/order/domain"
	orderRepo "github.com/ridloal/inventory-order-service/internal/order/repository"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (orderRepo.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(orderRepo.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) LockProductsForUpdate(ctx context.Context, tx orderRepo.DBTX, ids []int64) ([]orderRepo.LockedProduct, error) {
	args := m.Called(ctx, tx, ids)
	if products := args.Get(0); products != nil {
		return products.([]orderRepo.LockedProduct), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) DecrementProductStock(ctx context.Context, tx orderRepo.DBTX, productID int64, quantity int) error {
	args := m.Called(ctx, tx, productID, quantity)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertOrder(ctx context.Context, tx orderRepo.DBTX, order *domain.Order) error {
	args := m.Called(ctx, tx, order)
	if order != nil && args.Error(0) == nil {
		if order.ID == 0 {
			order.ID = 1
		}
		if order.Status == "" {
			order.Status = domain.StatusPending
		}
	}
	return args.Error(0)
}

func (m *MockOrderRepository) InsertOrderItems(ctx context.Context, tx orderRepo.DBTX, orderID int64, items []domain.OrderItem) error {
	args := m.Called(ctx, tx, orderID, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderForUpdate(ctx context.Context, tx orderRepo.DBTX, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, tx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatus(ctx context.Context, tx orderRepo.DBTX, orderID int64, status domain.OrderStatus) error {
	args := m.Called(ctx, tx, orderID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	args := m.Called(ctx, limit, offset)
	if orders := args.Get(0); orders != nil {
		return orders.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}
