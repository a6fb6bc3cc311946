package mongodb

import (
	"context"
	"fmt"
	"time"

	"mongo-tracing/internal/mongotrace"
	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	apperrors "mongo-tracing/internal/shared/errors"
	"mongo-tracing/internal/shared/logger"
	"mongo-tracing/internal/shared/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// CollectionName is the collection orders are stored in.
	CollectionName = "orders"

	component   = "orders-repository"
	watchBuffer = 16
)

// ClientInterface abstracts the client calls the repository makes outside a
// collection.
type ClientInterface interface {
	StartSession(opts ...*options.SessionOptions) (mongo.Session, error)
}

var _ ClientInterface = (*mongo.Client)(nil)

// OrderRepository stores orders through an instrumented collection, so every
// call below produces one client span.
type OrderRepository struct {
	client ClientInterface
	coll   *mongotrace.InstrumentedCollection[model.Order]
	logger logger.Logger
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a repository over coll.
func NewOrderRepository(client ClientInterface, coll *mongotrace.InstrumentedCollection[model.Order], log logger.Logger) *OrderRepository {
	return &OrderRepository{
		client: client,
		coll:   coll,
		logger: log.WithComponent(component),
	}
}

// Collection returns the facade the repository writes through.
func (r *OrderRepository) Collection() *mongotrace.InstrumentedCollection[model.Order] {
	return r.coll
}

// Create inserts a single order.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	res, err := r.coll.InsertOne(ctx, *order)
	if err != nil {
		return mapError(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

// CreateBatch inserts orders inside a transaction.
func (r *OrderRepository) CreateBatch(ctx context.Context, orders []*model.Order) ([]string, error) {
	if len(orders) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}

	docs := make([]model.Order, len(orders))
	for i, o := range orders {
		docs[i] = *o
	}

	ctx = r.logContext(ctx, "create_batch")
	sess, err := r.client.StartSession()
	if err != nil {
		return nil, mapError(err)
	}
	defer sess.EndSession(ctx)

	out, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return r.coll.InsertManyWithSession(sc, sess, docs)
	})
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Errorf("batch of %d orders rolled back", len(orders))
		return nil, mapError(fmt.Errorf("%w: %w", apperrors.ErrTransactionFailed, err))
	}

	res, ok := out.(*mongo.InsertManyResult)
	if !ok || res == nil {
		return nil, apperrors.NewInternalError("unexpected insert result").WithComponent(component)
	}
	ids := make([]string, 0, len(res.InsertedIDs))
	for i, raw := range res.InsertedIDs {
		id, ok := raw.(primitive.ObjectID)
		if !ok {
			continue
		}
		orders[i].ID = id
		ids = append(ids, id.Hex())
	}
	return ids, nil
}

// Get loads one order by its hex id.
func (r *OrderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	order, err := r.coll.FindOneDecoded(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, mapError(err)
	}
	return &order, nil
}

// List returns orders newest first.
func (r *OrderRepository) List(ctx context.Context, opts repository.ListOptions) ([]*model.Order, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}

	found, err := r.coll.FindAll(ctx, statusFilter(opts.Status), findOpts)
	if err != nil {
		return nil, mapError(err)
	}
	orders := make([]*model.Order, len(found))
	for i := range found {
		orders[i] = &found[i]
	}
	return orders, nil
}

// Count counts orders, optionally restricted to one status.
func (r *OrderRepository) Count(ctx context.Context, status model.Status) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, mapError(err)
	}
	return n, nil
}

// UpdateStatus sets the status of one order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (repository.UpdateResult, error) {
	oid, err := parseID(id)
	if err != nil {
		return repository.UpdateResult{}, err
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return repository.UpdateResult{}, mapError(err)
	}
	if res.MatchedCount == 0 {
		return repository.UpdateResult{}, orderNotFound()
	}
	return repository.UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

// Delete removes one order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapError(err)
	}
	if res.DeletedCount == 0 {
		return orderNotFound()
	}
	return nil
}

// Customers returns the distinct customer names.
func (r *OrderRepository) Customers(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "customer", bson.D{})
	if err != nil {
		return nil, mapError(err)
	}
	customers := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			customers = append(customers, s)
		}
	}
	return customers, nil
}

// TotalsByStatus sums order totals per status.
func (r *OrderRepository) TotalsByStatus(ctx context.Context) ([]model.StatusTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "orders", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapError(err)
	}
	totals := make([]model.StatusTotal, 0)
	if err := cur.All(ctx, &totals); err != nil {
		return nil, mapError(err)
	}
	return totals, nil
}

// EnsureIndexes creates the indexes List and Customers rely on.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	names, err := r.coll.CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("status_created_at"),
		},
		{
			Keys:    bson.D{{Key: "customer", Value: 1}},
			Options: options.Index().SetName("customer"),
		},
	})
	if err != nil {
		return nil, mapError(err)
	}
	r.logger.WithContext(r.logContext(ctx, "ensure_indexes")).Infof("ensured indexes %v", names)
	return names, nil
}

// Watch opens a change stream on the collection. Updates carry the full
// document after the change.
func (r *OrderRepository) Watch(ctx context.Context, resumeAfter bson.Raw) (<-chan model.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{
			model.ChangeInsert, model.ChangeUpdate, model.ChangeReplace, model.ChangeDelete,
		}}}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if len(resumeAfter) > 0 {
		opts.SetResumeAfter(resumeAfter)
	}
	stream, err := r.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, mapError(err)
	}

	events := make(chan model.ChangeEvent, watchBuffer)
	go r.forward(r.logContext(ctx, "watch"), stream, events)
	return events, nil
}

func (r *OrderRepository) forward(ctx context.Context, stream *mongo.ChangeStream, events chan<- model.ChangeEvent) {
	defer close(events)
	defer func() {
		if err := stream.Close(context.Background()); err != nil {
			r.logger.WithError(err).Warn("closing order change stream")
		}
	}()

	for stream.Next(ctx) {
		var ev model.ChangeEvent
		if err := stream.Decode(&ev); err != nil {
			r.logger.WithContext(ctx).WithError(err).Warn("skipping undecodable change event")
			continue
		}
		if len(ev.ResumeToken) == 0 {
			ev.ResumeToken = stream.ResumeToken()
		}
		ev.ReceivedAt = time.Now().UTC()

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		r.logger.WithContext(ctx).WithError(err).Error("order change stream stopped")
	}
}

// logContext tags ctx so log lines written for op carry the namespace.
func (r *OrderRepository) logContext(ctx context.Context, op string) context.Context {
	return utils.WithOperation(utils.WithNamespace(ctx, r.coll.DatabaseName(), r.coll.Name()), op)
}

func statusFilter(status model.Status) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.NewValidationError(apperrors.ErrInvalidOrderID.Error()).
			WithCause(apperrors.ErrInvalidOrderID).
			WithDetail("id", id).
			WithComponent(component)
	}
	return oid, nil
}

func orderNotFound() error {
	return apperrors.NewNotFoundError("order").WithCause(apperrors.ErrOrderNotFound).WithComponent(component)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsNotFound(err) {
		return orderNotFound()
	}
	return apperrors.FromMongo(err).WithComponent(component)
}
