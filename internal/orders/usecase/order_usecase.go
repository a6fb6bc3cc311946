package usecase

import (
	"context"
	"time"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	apperrors "mongo-tracing/internal/shared/errors"
	"mongo-tracing/internal/shared/logger"
)

// MaxBatchSize caps CreateBatch.
const MaxBatchSize = 500

// OrderUsecase is what the HTTP layer talks to.
type OrderUsecase interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, opts repository.ListOptions) ([]*model.Order, error)
	Count(ctx context.Context, status model.Status) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (repository.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Customers(ctx context.Context) ([]string, error)
	Report(ctx context.Context) ([]model.StatusTotal, error)
}

type orderUsecase struct {
	repo   repository.OrderRepository
	logger logger.Logger
	now    func() time.Time
}

// NewOrderUsecase creates an OrderUsecase backed by repo.
func NewOrderUsecase(repo repository.OrderRepository, log logger.Logger) OrderUsecase {
	return &orderUsecase{
		repo:   repo,
		logger: log.WithComponent("orders-usecase"),
		now:    time.Now,
	}
}

func (u *orderUsecase) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := validate(order); err != nil {
		return nil, err
	}
	order.Prepare(u.now())

	if err := u.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	u.logger.WithContext(ctx).Infof("order %s created for %s", order.ID.Hex(), order.Customer)
	return order, nil
}

func (u *orderUsecase) CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error) {
	if len(orders) == 0 {
		return nil, apperrors.NewValidationError(apperrors.ErrEmptyBatch.Error()).WithCause(apperrors.ErrEmptyBatch)
	}
	if len(orders) > MaxBatchSize {
		return nil, apperrors.NewValidationError("batch too large").
			WithDetail("max", MaxBatchSize).
			WithDetail("size", len(orders))
	}

	now := u.now()
	for i, o := range orders {
		if err := validate(o); err != nil {
			return nil, err.WithDetail("index", i)
		}
		o.Prepare(now)
	}

	ids, err := u.repo.CreateBatch(ctx, orders)
	if err != nil {
		return nil, err
	}
	u.logger.WithContext(ctx).Infof("created batch of %d orders", len(ids))
	return ids, nil
}

func (u *orderUsecase) Get(ctx context.Context, id string) (*model.Order, error) {
	return u.repo.Get(ctx, id)
}

func (u *orderUsecase) List(ctx context.Context, opts repository.ListOptions) ([]*model.Order, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, invalidStatus(opts.Status)
	}
	if opts.Limit < 0 || opts.Skip < 0 {
		return nil, apperrors.NewValidationError("limit and skip must not be negative")
	}
	return u.repo.List(ctx, opts)
}

func (u *orderUsecase) Count(ctx context.Context, status model.Status) (int64, error) {
	if status != "" && !status.Valid() {
		return 0, invalidStatus(status)
	}
	return u.repo.Count(ctx, status)
}

func (u *orderUsecase) UpdateStatus(ctx context.Context, id string, status model.Status) (repository.UpdateResult, error) {
	if !status.Valid() {
		return repository.UpdateResult{}, invalidStatus(status)
	}
	res, err := u.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	u.logger.WithContext(ctx).Infof("order %s moved to %s (modified=%d)", id, status, res.Modified)
	return res, nil
}

func (u *orderUsecase) Delete(ctx context.Context, id string) error {
	if err := u.repo.Delete(ctx, id); err != nil {
		return err
	}
	u.logger.WithContext(ctx).Infof("order %s deleted", id)
	return nil
}

func (u *orderUsecase) Customers(ctx context.Context) ([]string, error) {
	return u.repo.Customers(ctx)
}

func (u *orderUsecase) Report(ctx context.Context) ([]model.StatusTotal, error) {
	return u.repo.TotalsByStatus(ctx)
}

func validate(order *model.Order) *apperrors.AppError {
	if order == nil {
		return apperrors.NewValidationError("order is required")
	}
	issues := order.Validate()
	if len(issues) == 0 {
		return nil
	}
	ve := apperrors.NewValidationErrors()
	for _, is := range issues {
		ve.Add(is.Field, is.Message, is.Value)
	}
	return ve.ToAppError()
}

func invalidStatus(status model.Status) *apperrors.AppError {
	return apperrors.NewValidationError(apperrors.ErrInvalidStatus.Error()).
		WithCause(apperrors.ErrInvalidStatus).
		WithDetail("status", string(status))
}
