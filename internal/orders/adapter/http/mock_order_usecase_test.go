package http

import (
	"context"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/orders/usecase"

	"github.com/stretchr/testify/mock"
)

type MockOrderUsecase struct {
	mock.Mock
}

var _ usecase.OrderUsecase = (*MockOrderUsecase)(nil)

func (m *MockOrderUsecase) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	args := m.Called(ctx, order)
	created, _ := args.Get(0).(*model.Order)
	return created, args.Error(1)
}

func (m *MockOrderUsecase) CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error) {
	args := m.Called(ctx, orders)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockOrderUsecase) Get(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderUsecase) List(ctx context.Context, opts repository.ListOptions) ([]*model.Order, error) {
	args := m.Called(ctx, opts)
	orders, _ := args.Get(0).([]*model.Order)
	return orders, args.Error(1)
}

func (m *MockOrderUsecase) Count(ctx context.Context, status model.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderUsecase) UpdateStatus(ctx context.Context, id string, status model.Status) (repository.UpdateResult, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(repository.UpdateResult), args.Error(1)
}

func (m *MockOrderUsecase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderUsecase) Customers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	customers, _ := args.Get(0).([]string)
	return customers, args.Error(1)
}

func (m *MockOrderUsecase) Report(ctx context.Context) ([]model.StatusTotal, error) {
	args := m.Called(ctx)
	totals, _ := args.Get(0).([]model.StatusTotal)
	return totals, args.Error(1)
}
