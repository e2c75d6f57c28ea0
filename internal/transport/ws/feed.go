package ws

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"inventory-server-go/internal/domain/eventbus"
	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/errors"
	"inventory-server-go/internal/platform/logging"
	"inventory-server-go/internal/platform/observability"
	httptransport "inventory-server-go/internal/transport/http"
)

// FeedMessage is the wire format pushed to feed subscribers.
type FeedMessage struct {
	Topic string                 `json:"topic"`
	Item  eventbus.ItemEventData `json:"item"`
}

// Feed relays item events from the bus to websocket subscribers. It mounts
// on the secured API group, so subscribers hold a valid bearer token.
type Feed struct {
	config   *config.Config
	logger   *logging.Logger
	hub      *Hub
	upgrader websocket.Upgrader
	relays   map[string]func(args ...interface{})
}

// NewFeed creates the live item feed.
func NewFeed(cfg *config.Config, logger *logging.Logger, hub *Hub) (*Feed, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "feed.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "feed.new", "logger is required")
	}
	if hub == nil {
		return nil, errors.New(errors.KindConfig, "feed.new", "hub is required")
	}

	allowedOrigin := cfg.CORS.AllowedOrigin
	return &Feed{
		config: cfg,
		logger: logger,
		hub:    hub,
		upgrader: websocket.Upgrader{
			// Non-browser clients send no Origin header; browsers must
			// match the configured allowed origin.
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		relays: make(map[string]func(args ...interface{})),
	}, nil
}

// Register subscribes to the item topics and mounts the feed endpoint.
func (f *Feed) Register(ctx context.Context, router *gin.RouterGroup) error {
	topics := []string{
		eventbus.EventItemCreated,
		eventbus.EventItemUpdated,
		eventbus.EventItemDeleted,
	}
	for _, topic := range topics {
		relay := f.relay(topic)
		if err := eventbus.SubscribeAsync(topic, relay); err != nil {
			return errors.Wrap(errors.KindBootstrap, "feed.register", "failed to subscribe to "+topic, err)
		}
		f.relays[topic] = relay
	}

	router.GET("/ws/items", f.handleUpgrade)

	f.logger.InfoTag("HTTP", "item feed registered")
	return nil
}

// Close unsubscribes from the bus and terminates every session.
func (f *Feed) Close() {
	for topic, relay := range f.relays {
		if err := eventbus.Unsubscribe(topic, relay); err != nil {
			f.logger.DebugTag("WS", "unsubscribe %s: %v", topic, err)
		}
	}
	f.relays = make(map[string]func(args ...interface{}))
	f.hub.CloseAll(ErrFeedShutdown)
}

func (f *Feed) relay(topic string) func(args ...interface{}) {
	return func(args ...interface{}) {
		if len(args) == 0 {
			return
		}
		data, ok := args[0].(eventbus.ItemEventData)
		if !ok {
			return
		}

		payload, err := sonic.Marshal(FeedMessage{Topic: topic, Item: data})
		if err != nil {
			f.logger.WarnTag("WS", "feed payload marshal failed: %v", err)
			return
		}
		f.hub.Broadcast(payload)
	}
}

// handleUpgrade turns the request into a feed session and blocks until the
// subscriber disconnects, keeping the request context alive for the pumps.
func (f *Feed) handleUpgrade(c *gin.Context) {
	end := observability.StartSpan(c.Request.Context(), "transport.websocket", "items_feed")

	socket, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		end(err)
		f.logger.ErrorTag("WS", "feed upgrade failed: %v", err)
		return
	}
	end(nil)

	accountID, _ := httptransport.AccountID(c)
	id := uuid.NewString()
	session := NewSession(c.Request.Context(), id, socket, f.logger)
	f.hub.Add(session)

	f.logger.InfoTag("WS", "feed session %s opened (account %d)", id, accountID)
	observability.RecordMetric(session.Context(), "websocket.feed.opened", 1, map[string]string{
		"component": "transport.websocket",
	})

	session.Run(func(runErr error) {
		f.hub.Remove(id)
		if runErr != nil && !websocket.IsCloseError(runErr,
			websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			f.logger.DebugTag("WS", "feed session %s ended: %v", id, runErr)
		}
		observability.RecordMetric(context.Background(), "websocket.feed.closed", 1, map[string]string{
			"component": "transport.websocket",
		})
	})
}
