package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func receive(t *testing.T, s *Subscriber) []byte {
	t.Helper()
	select {
	case msg, ok := <-s.C():
		require.True(t, ok, "subscriber channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_DeliversOnlyToSameChat(t *testing.T) {
	hub, _ := startHub(t)
	ctx := context.Background()

	a, err := hub.Subscribe(ctx, "chat-a")
	require.NoError(t, err)
	b, err := hub.Subscribe(ctx, "chat-b")
	require.NoError(t, err)

	require.NoError(t, hub.Publish(ctx, "chat-a", []byte(`{"content":"halo"}`)))
	assert.Equal(t, `{"content":"halo"}`, string(receive(t, a)))

	select {
	case msg := <-b.C():
		t.Fatalf("chat-b got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	hub, _ := startHub(t)
	s, err := hub.Subscribe(context.Background(), "chat-a")
	require.NoError(t, err)

	hub.Unsubscribe(s)
	select {
	case _, ok := <-s.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed")
	}
}

func TestHub_ClosedAfterShutdown(t *testing.T) {
	hub, cancel := startHub(t)
	s, err := hub.Subscribe(context.Background(), "chat-a")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-s.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not closed on shutdown")
	}
	assert.ErrorIs(t, hub.Publish(context.Background(), "chat-a", []byte("x")), ErrHubClosed)
	_, err = hub.Subscribe(context.Background(), "chat-a")
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestChatIDFromChannel(t *testing.T) {
	id, ok := chatIDFromChannel(ChannelFor("c-1"))
	require.True(t, ok)
	assert.Equal(t, "c-1", id)

	_, ok = chatIDFromChannel("other:c-1")
	assert.False(t, ok)
	_, ok = chatIDFromChannel(channelPrefix)
	assert.False(t, ok)
}

func TestServe_StreamsPublishedMessages(t *testing.T) {
	hub, _ := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = Serve(w, r, hub, "chat-ws")
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	// the subscription is registered before the upgrade completes
	require.NoError(t, hub.Publish(context.Background(), "chat-ws", []byte(`{"message_id":"m1"}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message_id":"m1"}`, string(data))
}
