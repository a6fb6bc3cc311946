package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	apperrors "mongo-tracing/internal/shared/errors"
	"mongo-tracing/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestUsecase(repo *MockOrderRepository) *orderUsecase {
	uc := NewOrderUsecase(repo, logger.NewLoggerWithConfig("error", "json", io.Discard)).(*orderUsecase)
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func validOrder() *model.Order {
	return &model.Order{
		Customer: "ada",
		Items:    []model.Item{{SKU: "book", Quantity: 2, UnitPrice: 12.5}},
	}
}

func TestCreate_PreparesAndStores(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
		return !o.ID.IsZero() && o.Status == model.StatusNew && o.Total == 25 && o.CreatedAt.Equal(fixedNow)
	})).Return(nil)

	order, err := uc.Create(context.Background(), validOrder())

	require.NoError(t, err)
	assert.Equal(t, model.StatusNew, order.Status)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidOrderNeverReachesRepository(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)

	_, err := uc.Create(context.Background(), &model.Order{})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Details["validation_errors"], 2)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_RepositoryErrorPassesThrough(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)
	conflict := apperrors.NewConflictError("document already exists")
	repo.On("Create", mock.Anything, mock.Anything).Return(conflict)

	_, err := uc.Create(context.Background(), validOrder())

	assert.Same(t, conflict, err)
}

func TestCreateBatch(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		uc := newTestUsecase(&MockOrderRepository{})
		_, err := uc.CreateBatch(context.Background(), nil)
		assert.ErrorIs(t, err, apperrors.ErrEmptyBatch)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("too large", func(t *testing.T) {
		uc := newTestUsecase(&MockOrderRepository{})
		orders := make([]*model.Order, MaxBatchSize+1)
		_, err := uc.CreateBatch(context.Background(), orders)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("one invalid order rejects the batch", func(t *testing.T) {
		repo := &MockOrderRepository{}
		uc := newTestUsecase(repo)
		_, err := uc.CreateBatch(context.Background(), []*model.Order{validOrder(), {Customer: "bob"}})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 1, appErr.Details["index"])
		repo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("stores prepared orders", func(t *testing.T) {
		repo := &MockOrderRepository{}
		uc := newTestUsecase(repo)
		repo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(orders []*model.Order) bool {
			return len(orders) == 2 && orders[0].Total == 25 && orders[1].Status == model.StatusNew
		})).Return([]string{"a", "b"}, nil)

		ids, err := uc.CreateBatch(context.Background(), []*model.Order{validOrder(), validOrder()})

		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
		repo.AssertExpectations(t)
	})
}

func TestListAndCount_RejectUnknownStatus(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)

	_, err := uc.List(context.Background(), repository.ListOptions{Status: "lost"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = uc.List(context.Background(), repository.ListOptions{Limit: -1})
	assert.True(t, apperrors.IsValidation(err))

	_, err = uc.Count(context.Background(), "lost")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Count", mock.Anything, mock.Anything)
}

func TestListAndCount_Forward(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)
	opts := repository.ListOptions{Status: model.StatusPaid, Limit: 10}
	repo.On("List", mock.Anything, opts).Return([]*model.Order{validOrder()}, nil)
	repo.On("Count", mock.Anything, model.Status("")).Return(int64(7), nil)

	orders, err := uc.List(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	n, err := uc.Count(context.Background(), "")
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestUpdateStatus(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)
	repo.On("UpdateStatus", mock.Anything, "abc", model.StatusShipped).
		Return(repository.UpdateResult{Matched: 1, Modified: 1}, nil)

	res, err := uc.UpdateStatus(context.Background(), "abc", model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, repository.UpdateResult{Matched: 1, Modified: 1}, res)

	_, err = uc.UpdateStatus(context.Background(), "abc", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
}

func TestDeleteGetAndReports(t *testing.T) {
	repo := &MockOrderRepository{}
	uc := newTestUsecase(repo)
	ctx := context.Background()
	boom := errors.New("boom")
	repo.On("Delete", ctx, "gone").Return(boom)
	repo.On("Get", ctx, "abc").Return(validOrder(), nil)
	repo.On("Customers", ctx).Return([]string{"ada"}, nil)
	repo.On("TotalsByStatus", ctx).Return([]model.StatusTotal{{Status: model.StatusNew, Orders: 1, Total: 25}}, nil)

	assert.ErrorIs(t, uc.Delete(ctx, "gone"), boom)

	order, err := uc.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "ada", order.Customer)

	customers, err := uc.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ada"}, customers)

	report, err := uc.Report(ctx)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.EqualValues(t, 25, report[0].Total)
}
