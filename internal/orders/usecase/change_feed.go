package usecase

import (
	"context"
	"errors"
	"sync"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/domain/repository"
	"mongo-tracing/internal/shared/eventbus"
	"mongo-tracing/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrFeedRunning is returned by Start on a feed that is already running.
var ErrFeedRunning = errors.New("change feed already running")

// ChangeFeed reads one change stream and republishes every event on the bus
// so any number of watchers share it. With a checkpoint store the feed saves
// each handled resume token and picks the stream up there on the next Start.
type ChangeFeed struct {
	repo        repository.OrderRepository
	bus         eventbus.Bus
	checkpoints repository.CheckpointStore
	name        string
	logger      logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewChangeFeed creates a stopped feed. checkpoints may be nil, in which
// case every Start begins at the current end of the stream.
func NewChangeFeed(repo repository.OrderRepository, bus eventbus.Bus, checkpoints repository.CheckpointStore, name string, log logger.Logger) *ChangeFeed {
	return &ChangeFeed{
		repo:        repo,
		bus:         bus,
		checkpoints: checkpoints,
		name:        name,
		logger:      log.WithComponent("orders-change-feed"),
	}
}

// Start opens the change stream and begins publishing in the background.
func (f *ChangeFeed) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return ErrFeedRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	token := f.loadCheckpoint(ctx)
	events, err := f.repo.Watch(runCtx, token)
	if err != nil && token != nil {
		f.logger.WithError(err).Warnf("resume token for %s rejected, starting at the current end of the stream", f.name)
		events, err = f.repo.Watch(runCtx, nil)
	}
	if err != nil {
		cancel()
		return err
	}

	f.cancel = cancel
	f.done = make(chan struct{})
	go f.run(runCtx, events, f.done)
	f.logger.Info("order change feed started")
	return nil
}

func (f *ChangeFeed) run(ctx context.Context, events <-chan model.ChangeEvent, done chan struct{}) {
	defer close(done)
	for ev := range events {
		err := f.bus.Publish(ctx, eventbus.NewEvent(eventbus.EventTypeOrderChanged, ev, "orders"))
		if err != nil {
			f.logger.WithError(err).Warnf("publishing %s of order %s", ev.OperationType, ev.OrderID())
		}
		f.saveCheckpoint(ctx, ev.ResumeToken)
	}
	f.logger.Info("order change feed stopped")
}

func (f *ChangeFeed) loadCheckpoint(ctx context.Context) bson.Raw {
	if f.checkpoints == nil {
		return nil
	}
	token, err := f.checkpoints.Load(ctx, f.name)
	if err != nil {
		f.logger.WithError(err).Warnf("loading checkpoint for %s", f.name)
		return nil
	}
	if token != nil {
		f.logger.Infof("resuming %s from saved checkpoint", f.name)
	}
	return token
}

func (f *ChangeFeed) saveCheckpoint(ctx context.Context, token bson.Raw) {
	if f.checkpoints == nil || len(token) == 0 {
		return
	}
	if err := f.checkpoints.Save(ctx, f.name, token); err != nil && ctx.Err() == nil {
		f.logger.WithError(err).Warnf("saving checkpoint for %s", f.name)
	}
}

// Subscribe registers fn for every change event. The returned function
// removes the subscription.
func (f *ChangeFeed) Subscribe(fn func(model.ChangeEvent)) func() {
	return f.bus.Subscribe(eventbus.EventTypeOrderChanged, func(_ context.Context, event eventbus.Event) error {
		if ev, ok := event.Data().(model.ChangeEvent); ok {
			fn(ev)
		}
		return nil
	})
}

// Running reports whether the feed has been started and not stopped.
func (f *ChangeFeed) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

// Stop closes the change stream and waits for the publisher to exit or for
// ctx to end.
func (f *ChangeFeed) Stop(ctx context.Context) error {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
