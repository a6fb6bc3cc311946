package http

import (
	"context"
	"sync/atomic"
	"time"

	"mongo-tracing/internal/orders/domain/model"
	"mongo-tracing/internal/orders/usecase"
	"mongo-tracing/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	watchBuffer  = 32
	writeTimeout = 5 * time.Second
	filterLocal  = "watch_filter"
)

// ChangeSubscriber delivers order change events until unsubscribed.
type ChangeSubscriber interface {
	Subscribe(fn func(model.ChangeEvent)) (unsubscribe func())
}

// WatchMessage is one frame sent to a watching client.
type WatchMessage struct {
	Type       string       `json:"type"`
	Operation  string       `json:"operation,omitempty"`
	OrderID    string       `json:"orderId,omitempty"`
	Order      *model.Order `json:"order,omitempty"`
	ReceivedAt time.Time    `json:"receivedAt,omitempty"`
	Dropped    int          `json:"dropped,omitempty"`
}

// dropCounter counts events skipped for a slow client. Signals coalesce;
// take returns every drop since the previous take.
type dropCounter struct {
	n      atomic.Int64
	signal chan struct{}
}

func newDropCounter() *dropCounter {
	return &dropCounter{signal: make(chan struct{}, 1)}
}

func (d *dropCounter) add() {
	d.n.Add(1)
	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *dropCounter) take() int {
	return int(d.n.Swap(0))
}

// WatchHandler streams order changes over websocket connections.
type WatchHandler struct {
	feed ChangeSubscriber
	log  logger.Logger
}

// NewWatchHandler creates a new WatchHandler.
func NewWatchHandler(feed ChangeSubscriber, log logger.Logger) *WatchHandler {
	return &WatchHandler{
		feed: feed,
		log:  log.WithComponent("orders-ws"),
	}
}

// RegisterRoutes registers GET /ws/orders/watch. An optional filter query
// parameter holds a CEL expression; only matching changes are sent.
func (h *WatchHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws/orders")

	ws.Use("/watch", func(c *fiber.Ctx) error {
		if expr := c.Query("filter"); expr != "" {
			filter, err := usecase.CompileChangeFilter(expr)
			if err != nil {
				return fail(c, h.log, err)
			}
			c.Locals(filterLocal, filter)
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/watch", websocket.New(h.handleConnection))
}

func (h *WatchHandler) handleConnection(conn *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcherID := uuid.NewString()
	fields := map[string]interface{}{"watcher_id": watcherID}
	filter, _ := conn.Locals(filterLocal).(*usecase.ChangeFilter)
	if filter != nil {
		fields["filter"] = filter.String()
	}
	log := h.log.WithFields(fields)
	log.Info("order watcher connected")

	events := make(chan model.ChangeEvent, watchBuffer)
	dropped := newDropCounter()
	unsubscribe := h.feed.Subscribe(func(ev model.ChangeEvent) {
		if filter != nil && !filter.Match(ev) {
			return
		}
		select {
		case events <- ev:
		default:
			dropped.add()
		}
	})
	defer unsubscribe()

	// Clients only send close frames; any read error ends the session.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg WatchMessage) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(msg)
	}
	if err := pump(ctx, events, dropped, send); err != nil {
		log.WithError(err).Warn("order watcher write failed")
	}
	log.Info("order watcher disconnected")
}

// pump forwards events to send until ctx ends, events closes or send fails.
// Events skipped since the previous report are sent as a "lagging" frame.
func pump(ctx context.Context, events <-chan model.ChangeEvent, dropped *dropCounter, send func(WatchMessage) error) error {
	if err := send(WatchMessage{Type: "subscribed"}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-dropped.signal:
			n := dropped.take()
			if n == 0 {
				continue
			}
			if err := send(WatchMessage{Type: "lagging", Dropped: n}); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			msg := WatchMessage{
				Type:       "change",
				Operation:  ev.OperationType,
				OrderID:    ev.OrderID(),
				Order:      ev.FullDocument,
				ReceivedAt: ev.ReceivedAt,
			}
			if err := send(msg); err != nil {
				return err
			}
		}
	}
}
