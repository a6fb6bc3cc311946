package usecase

import (
	"context"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
)

type MockOrderRepository struct {
	mock.Mock
}

var (
	_ repository.OrderRepository = (*MockOrderRepository)(nil)
	_ repository.CheckpointStore = (*MockCheckpointStore)(nil)
)

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error) {
	args := m.Called(ctx, orders)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockOrderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, opts repository.ListOptions) ([]*model.Order, error) {
	args := m.Called(ctx, opts)
	orders, _ := args.Get(0).([]*model.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, status model.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (repository.UpdateResult, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(repository.UpdateResult), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) Customers(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	customers, _ := args.Get(0).([]string)
	return customers, args.Error(1)
}

func (m *MockOrderRepository) TotalsByStatus(ctx context.Context) ([]model.StatusTotal, error) {
	args := m.Called(ctx)
	totals, _ := args.Get(0).([]model.StatusTotal)
	return totals, args.Error(1)
}

func (m *MockOrderRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockOrderRepository) Watch(ctx context.Context, resumeAfter bson.Raw) (<-chan model.ChangeEvent, error) {
	args := m.Called(ctx, resumeAfter)
	ch, _ := args.Get(0).(<-chan model.ChangeEvent)
	return ch, args.Error(1)
}

type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) Load(ctx context.Context, feed string) (bson.Raw, error) {
	args := m.Called(ctx, feed)
	token, _ := args.Get(0).(bson.Raw)
	return token, args.Error(1)
}

func (m *MockCheckpointStore) Save(ctx context.Context, feed string, token bson.Raw) error {
	return m.Called(ctx, feed, token).Error(0)
}
