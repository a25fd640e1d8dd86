// Package notify keeps the live notification feed open while a session is
// signed in.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const DefaultReconnectDelay = 5 * time.Second

var ErrAlreadyRunning = errors.New("notification channel already running")

// Event is one pushed notification frame.
type Event struct {
	Message string `json:"message"`
	Link    string `json:"link"`
	Type    string `json:"type"`
}

// Channel holds at most one live socket. After an unexpected close it waits
// ReconnectDelay and dials again, for as long as Authenticated reports true.
type Channel struct {
	URL            string
	Dialer         *websocket.Dialer
	Header         http.Header
	ReconnectDelay time.Duration

	Authenticated func() bool
	Handler       func(Event)
	Toast         func(message string)
	Logger        *slog.Logger

	mu      sync.Mutex
	running bool
	closed  bool
	stop    chan struct{}
}

// Run blocks until ctx is done, Close is called or the session is no longer
// authenticated. Only the first returns an error.
func (c *Channel) Run(ctx context.Context) error {
	stop, err := c.start()
	if err != nil {
		return err
	}
	defer c.finish()

	log := c.logger()
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		if !c.authenticated() {
			log.Info("notification channel stopped: not authenticated")
			return nil
		}

		conn, _, err := c.dialer().DialContext(ctx, c.URL, c.Header)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("notification channel dial failed", "url", c.URL, "err", err)
		} else {
			log.Info("notification channel connected", "url", c.URL)
			readErr := c.read(ctx, stop, conn)
			log.Info("notification channel closed", "err", readErr)
		}

		select {
		case <-stop:
			return nil
		default:
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := c.reconnectDelay()
		log.Info("notification channel reconnecting", "in", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-stop:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Close ends the channel deliberately, e.g. on logout. It is final: a Run
// that starts after Close returns at once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.stop != nil {
		close(c.stop)
	}
}

func (c *Channel) start() (chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil, ErrAlreadyRunning
	}
	c.running = true
	c.stop = make(chan struct{})
	if c.closed {
		close(c.stop)
	}
	return c.stop, nil
}

func (c *Channel) finish() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func (c *Channel) read(ctx context.Context, stop <-chan struct{}, conn *websocket.Conn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-stop:
		case <-done:
			return
		}
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
	}()
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

// dispatch drops frames that are not a JSON event object; the feed keeps
// reading.
func (c *Channel) dispatch(data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		c.logger().Warn("dropping malformed notification", "err", err, "frame", string(data))
		return
	}
	if ev == (Event{}) {
		c.logger().Warn("dropping empty notification", "frame", string(data))
		return
	}
	if c.Toast != nil && ev.Message != "" {
		c.Toast(ev.Message)
	}
	if c.Handler != nil {
		c.Handler(ev)
	}
}

func (c *Channel) authenticated() bool {
	if c.Authenticated == nil {
		return true
	}
	return c.Authenticated()
}

func (c *Channel) dialer() *websocket.Dialer {
	if c.Dialer != nil {
		return c.Dialer
	}
	return websocket.DefaultDialer
}

func (c *Channel) reconnectDelay() time.Duration {
	if c.ReconnectDelay > 0 {
		return c.ReconnectDelay
	}
	return DefaultReconnectDelay
}

func (c *Channel) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
