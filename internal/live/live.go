// Package live implements the client side of the push-notification channel.
// Events carry hints that server state changed, never authoritative state:
// consumers react by re-fetching their collection, not by merging payloads.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Event is a pushed change notification. Data is a domain-specific hint and
// must not be treated as the new state.
type Event struct {
	Type         string          `json:"type"`
	Topic        string          `json:"topic"`
	ResourceType string          `json:"resourceType,omitempty"`
	ResourceID   string          `json:"resourceId,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// roomMessage is the outbound join/leave frame.
type roomMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a logger to the channel client.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBuffer sets the event channel capacity.
func WithBuffer(n int) Option {
	return func(c *Client) { c.buffer = n }
}

// Client is a persistent connection to the live-update endpoint. It joins
// the requested rooms on connect and delivers pushed events on Events()
// until the connection drops or Close is called.
type Client struct {
	conn   *websocket.Conn
	events chan Event
	logger zerolog.Logger
	buffer int

	mu     sync.Mutex
	closed bool
}

// Dial connects to the socket endpoint and announces interest in the given
// rooms (e.g. "dashboard", "emergency", "analytics"). Reconnection is the
// caller's decision; a dropped connection simply closes Events().
func Dial(ctx context.Context, socketURL string, rooms []string, opts ...Option) (*Client, error) {
	c := &Client{
		logger: zerolog.Nop(),
		buffer: 64,
	}
	for _, o := range opts {
		o(c)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial live channel: %w", err)
	}
	c.conn = conn
	c.events = make(chan Event, c.buffer)

	if len(rooms) > 0 {
		if err := c.Join(rooms...); err != nil {
			conn.Close()
			return nil, err
		}
	}

	go c.readLoop()
	return c, nil
}

// Events returns the channel of pushed events. It is closed when the
// connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Join subscribes to additional rooms on the open connection.
func (c *Client) Join(rooms ...string) error {
	return c.send(roomMessage{Action: "subscribe", Topics: rooms})
}

// Leave unsubscribes from rooms on the open connection.
func (c *Client) Leave(rooms ...string) error {
	return c.send(roomMessage{Action: "unsubscribe", Topics: rooms})
}

func (c *Client) send(msg roomMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("live channel is closed")
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Action, err)
	}
	return nil
}

// Close tears down the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

// readLoop delivers inbound events until the connection errors. Malformed
// frames are skipped; a full consumer buffer drops the hint rather than
// blocking the pump, which is safe because every hint means the same thing:
// re-fetch.
func (c *Client) readLoop() {
	defer close(c.events)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()
			if !wasClosed {
				c.logger.Warn().Err(err).Msg("live channel read failed")
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.logger.Debug().Err(err).Msg("skipping malformed live event")
			continue
		}

		select {
		case c.events <- ev:
		default:
			c.logger.Debug().Str("type", ev.Type).Msg("dropping live event, consumer is behind")
		}
	}
}
