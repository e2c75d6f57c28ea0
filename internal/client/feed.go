package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"inventory-server-go/internal/platform/errors"
)

// ItemEvent is one change notification from the live item feed.
type ItemEvent struct {
	Topic      string
	Action     string
	ItemID     string
	Name       string
	Price      float64
	Category   string
	OwnerID    uint
	OccurredAt time.Time
}

type feedFrame struct {
	Topic string `json:"topic"`
	Item  struct {
		Action     string    `json:"action"`
		ItemID     string    `json:"item_id"`
		Name       string    `json:"name"`
		Price      float64   `json:"price"`
		Category   string    `json:"category"`
		OwnerID    uint      `json:"owner_id"`
		OccurredAt time.Time `json:"occurred_at"`
	} `json:"item"`
}

// WatchItems subscribes to the live item feed and invokes fn for every
// event until ctx is cancelled, the server closes the stream, or the
// connection fails. The bearer token is read from the credential store at
// dial time; an unauthorized handshake clears the stored session exactly
// like a 401 on any other operation.
func (c *Client) WatchItems(ctx context.Context, fn func(ItemEvent)) error {
	wsURL, err := c.feedURL()
	if err != nil {
		return err
	}

	tokens, err := c.credentials.Load()
	if err != nil {
		return err
	}
	bearer := tokens.AccessToken
	if bearer == "" {
		bearer = tokens.IDToken
	}
	if bearer == "" {
		return errors.New(errors.KindAuth, "client.watch", "no stored session, sign in first")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+bearer)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode == http.StatusUnauthorized {
				c.invalidateSession()
			}
			return apiError(resp.StatusCode, body)
		}
		return errors.Wrap(errors.KindTransport, "client.watch", "feed dial failed", err)
	}
	defer conn.Close()

	// Closing the socket is the only way to unblock ReadMessage once the
	// caller cancels.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(errors.KindTransport, "client.watch", "feed read failed", err)
		}

		var frame feedFrame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("feed frame decode failed: %v", err)
			continue
		}
		fn(ItemEvent{
			Topic:      frame.Topic,
			Action:     frame.Item.Action,
			ItemID:     frame.Item.ItemID,
			Name:       frame.Item.Name,
			Price:      frame.Item.Price,
			Category:   frame.Item.Category,
			OwnerID:    frame.Item.OwnerID,
			OccurredAt: frame.Item.OccurredAt,
		})
	}
}

// feedURL maps the API base to the websocket feed endpoint.
func (c *Client) feedURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.Wrap(errors.KindConfig, "client.watch", "invalid base url", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New(errors.KindConfig, "client.watch", "unsupported base url scheme "+u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws/items"
	return u.String(), nil
}
