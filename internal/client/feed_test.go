package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-server-go/internal/client"
	platformerrors "inventory-server-go/internal/platform/errors"
)

func TestWatchItemsStreamsEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := []string{
		`{"topic":"item:created","item":{"action":"created","item_id":"itm-1","name":"Desk Lamp","price":25.5,"category":"lighting","owner_id":7,"occurred_at":"2026-08-23T10:00:00Z"}}`,
		`{"topic":"item:deleted","item":{"action":"deleted","item_id":"itm-1","name":"Desk Lamp","price":25.5,"owner_id":7,"occurred_at":"2026-08-23T10:05:00Z"}}`,
	}

	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for _, frame := range frames {
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		}
		deadline := time.Now().Add(time.Second)
		assert.NoError(t, conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"), deadline))
		// Drains the close reply so the handler exits cleanly.
		_, _, _ = conn.ReadMessage()
	})
	f.storeTokens(t)

	var events []client.ItemEvent
	err := f.client.WatchItems(context.Background(), func(ev client.ItemEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err, "a normal closure ends the watch without error")

	require.Len(t, events, 2)
	assert.Equal(t, "item:created", events[0].Topic)
	assert.Equal(t, "created", events[0].Action)
	assert.Equal(t, "itm-1", events[0].ItemID)
	assert.Equal(t, "Desk Lamp", events[0].Name)
	assert.Equal(t, 25.5, events[0].Price)
	assert.Equal(t, "lighting", events[0].Category)
	assert.Equal(t, "item:deleted", events[1].Topic)

	require.Equal(t, 1, f.recorder.count())
	upgrade := f.recorder.last()
	assert.Equal(t, "/ws/items", upgrade.Path)
	assert.Equal(t, []string{"Bearer access-token"}, upgrade.Authorization)
}

func TestWatchItemsStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		// No frames; hold the stream open until the client goes away.
		_, _, _ = conn.ReadMessage()
	})
	f.storeTokens(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := f.client.WatchItems(ctx, func(client.ItemEvent) {
		t.Error("no event should arrive")
	})
	assert.NoError(t, err, "cancellation is a clean stop, not a failure")
}

func TestWatchItemsRequiresSession(t *testing.T) {
	f := newFixture(t, func(http.ResponseWriter, *http.Request) {})

	err := f.client.WatchItems(context.Background(), func(client.ItemEvent) {})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindAuth))
	assert.Equal(t, 0, f.recorder.count(), "no dial without a stored session")
}

func TestWatchItemsUnauthorizedHandshakeClearsSession(t *testing.T) {
	f := newFixture(t, unauthorizedHandler)
	f.storeTokens(t)

	err := f.client.WatchItems(context.Background(), func(client.ItemEvent) {})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "unauthorized", apiErr.Code)

	tokens, loadErr := f.store.Load()
	require.NoError(t, loadErr)
	assert.True(t, tokens.Empty(), "a rejected handshake clears the stored session")
	assert.Equal(t, int32(1), f.invalidated.Load())
}
