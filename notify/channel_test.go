package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentadm/api"
	"rentadm/state"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// feed starts a socket server. script runs once per accepted connection with
// its 1-based index.
func feed(t *testing.T, script func(n int32, conn *websocket.Conn)) (string, *int32) {
	t.Helper()
	var conns int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		script(atomic.AddInt32(&conns, 1), conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http"), &conns
}

func holdOpen(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func runAsync(ch *Channel, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop")
		return nil
	}
}

func TestMalformedFrameIsDroppedAndValidFrameIsDelivered(t *testing.T) {
	url, _ := feed(t, func(n int32, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"Invoice #500 issued","link":"/invoices/500","type":"NEW_INVOICE"}`))
		holdOpen(conn)
	})

	inbox := state.NewNotifications(nil)
	var toasts []string
	received := make(chan Event, 4)
	ch := &Channel{
		URL:            url,
		ReconnectDelay: 10 * time.Millisecond,
		Toast:          func(m string) { toasts = append(toasts, m) },
		Handler: func(ev Event) {
			inbox.Receive(ev.Type, ev.Message, ev.Link)
			received <- ev
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ch, ctx)

	select {
	case ev := <-received:
		assert.Equal(t, "NEW_INVOICE", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()
	assert.ErrorIs(t, waitDone(t, done), context.Canceled)
	assert.Equal(t, []string{"Invoice #500 issued"}, toasts)
	assert.Equal(t, 1, inbox.Unread())
	items := inbox.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "/invoices/500", items[0].Link)
	assert.False(t, items[0].IsRead)
}

func TestReconnectsAfterServerClose(t *testing.T) {
	url, conns := feed(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"back","type":"SYSTEM"}`))
		holdOpen(conn)
	})

	received := make(chan Event, 1)
	ch := &Channel{
		URL:            url,
		ReconnectDelay: 10 * time.Millisecond,
		Authenticated:  func() bool { return true },
		Handler:        func(ev Event) { received <- ev },
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runAsync(ch, ctx)

	select {
	case ev := <-received:
		assert.Equal(t, "back", ev.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not reconnect")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(conns))

	ch.Close()
	assert.NoError(t, waitDone(t, done))
}

func TestCloseStopsWithoutReconnect(t *testing.T) {
	url, conns := feed(t, func(n int32, conn *websocket.Conn) {
		holdOpen(conn)
	})

	ch := &Channel{URL: url, ReconnectDelay: 10 * time.Millisecond}
	done := runAsync(ch, context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(conns) == 1 }, 2*time.Second, 5*time.Millisecond)

	err := ch.Run(context.Background())
	assert.True(t, errors.Is(err, ErrAlreadyRunning))

	ch.Close()
	assert.NoError(t, waitDone(t, done))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(conns))
}

func TestStopsWhenSessionEnds(t *testing.T) {
	var authed atomic.Bool
	authed.Store(true)
	url, conns := feed(t, func(n int32, conn *websocket.Conn) {
		authed.Store(false)
	})

	ch := &Channel{
		URL:            url,
		ReconnectDelay: 10 * time.Millisecond,
		Authenticated:  authed.Load,
	}
	assert.NoError(t, waitDone(t, runAsync(ch, context.Background())))
	assert.Equal(t, int32(1), atomic.LoadInt32(conns))
}

func TestNotAuthenticatedNeverDials(t *testing.T) {
	url, conns := feed(t, func(n int32, conn *websocket.Conn) {})
	ch := &Channel{URL: url, Authenticated: func() bool { return false }}
	assert.NoError(t, ch.Run(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(conns))
}

func TestCloseBeforeRunIsKept(t *testing.T) {
	url, conns := feed(t, func(n int32, conn *websocket.Conn) { holdOpen(conn) })

	ch := &Channel{URL: url, ReconnectDelay: 10 * time.Millisecond}
	ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	assert.NoError(t, ch.Run(ctx))
	assert.Equal(t, int32(0), atomic.LoadInt32(conns))
}

func TestNullAndEmptyFramesAreDropped(t *testing.T) {
	url, _ := feed(t, func(n int32, conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte("null"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte("{}"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"message":"Room 101 reported a leak","type":"NEW_INCIDENT"}`))
		holdOpen(conn)
	})

	inbox := state.NewNotifications(nil)
	received := make(chan Event, 4)
	ch := &Channel{
		URL: url,
		Handler: func(ev Event) {
			inbox.Receive(ev.Type, ev.Message, ev.Link)
			received <- ev
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ch, ctx)

	select {
	case ev := <-received:
		assert.Equal(t, "NEW_INCIDENT", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
	cancel()
	waitDone(t, done)

	assert.Empty(t, received)
	assert.Equal(t, 1, inbox.Unread())
	assert.Len(t, inbox.Items(), 1)
}

type signedInAuth struct{}

func (signedInAuth) Login(ctx context.Context, email, password string) error { return nil }
func (signedInAuth) Logout(ctx context.Context) error                        { return nil }
func (signedInAuth) Profile(ctx context.Context) (api.UserProfile, error) {
	return api.UserProfile{ID: 1, Role: api.RoleAdmin}, nil
}

func TestSessionExpiryClosesRunningChannel(t *testing.T) {
	url, conns := feed(t, func(n int32, conn *websocket.Conn) { holdOpen(conn) })

	session := state.NewSession(signedInAuth{})
	session.Restore(api.UserProfile{ID: 1, Role: api.RoleAdmin})
	ch := &Channel{
		URL:            url,
		ReconnectDelay: 10 * time.Millisecond,
		Authenticated:  session.IsAuthenticated,
	}
	session.OnLogout(ch.Close)

	done := runAsync(ch, context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(conns) == 1 }, 2*time.Second, 5*time.Millisecond)

	session.Expire()
	assert.NoError(t, waitDone(t, done))
	assert.Equal(t, int32(1), atomic.LoadInt32(conns))
}
