package directline

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/botline/internal/logging"
)

// LiveChannel owns the single push connection derived from a conversation's
// stream endpoint. Incoming frames decode as ActivitySet batches and feed
// the timeline; malformed frames are logged and dropped without terminating
// the connection.
//
// Connection loss is reported through the disconnect handler. The channel
// never redials on its own: a stale stream token needs the full
// reconnect-to-conversation exchange, which is the session manager's call.
type LiveChannel struct {
	merge        func(ActivitySet)
	onDisconnect func(error)
	log          *logging.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewLiveChannel creates an unconnected channel feeding merge. onDisconnect
// may be nil.
func NewLiveChannel(merge func(ActivitySet), onDisconnect func(error), log *logging.Logger) *LiveChannel {
	return &LiveChannel{
		merge:        merge,
		onDisconnect: onDisconnect,
		log:          log.Sub("stream"),
	}
}

// Open dials the stream endpoint and starts the read loop. Any previously
// open connection is closed first; there is at most one at a time.
func (c *LiveChannel) Open(ctx context.Context, endpoint string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return &TransportError{Err: err}
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = conn
	c.closed = false
	c.mu.Unlock()

	c.log.Info().Str("endpoint", endpoint).Msg("live channel open")
	go c.readLoop(conn)
	return nil
}

func (c *LiveChannel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed || c.conn != conn
			c.mu.Unlock()
			if closed {
				return
			}
			c.log.Warn().Err(err).Msg("live channel lost")
			if c.onDisconnect != nil {
				c.onDisconnect(err)
			}
			return
		}

		// the service sends empty keepalive frames
		if len(data) == 0 {
			continue
		}

		var set ActivitySet
		if err := json.Unmarshal(data, &set); err != nil {
			c.log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping undecodable frame")
			continue
		}
		c.merge(set)
	}
}

// Close shuts the connection down. Safe to call repeatedly; a closed channel
// raises no disconnect callback.
func (c *LiveChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		c.closed = true
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
