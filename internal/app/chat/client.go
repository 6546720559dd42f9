package chat

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// DefaultSendQueueSize is the per-client outbound queue length.
	DefaultSendQueueSize = 256

	// DefaultMaxFrameBytes is the largest inbound frame accepted from a client.
	DefaultMaxFrameBytes = 8192
)

// ClientOptions tunes a Client. Zero values select the defaults.
type ClientOptions struct {
	SendQueueSize int
	MaxFrameBytes int64
}

// Client is a WebSocket session attached to the hub. It implements Peer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string

	// send is never closed; done signals the write pump instead, so a
	// concurrent Send can never panic.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	maxFrameBytes int64

	logger zerolog.Logger
}

// NewClient wraps an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, opts ClientOptions) *Client {
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = DefaultSendQueueSize
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = DefaultMaxFrameBytes
	}

	id := randx.ConnID()

	return &Client{
		hub:           hub,
		conn:          conn,
		id:            id,
		send:          make(chan []byte, opts.SendQueueSize),
		done:          make(chan struct{}),
		maxFrameBytes: opts.MaxFrameBytes,
		logger: logx.Logger().With().
			Str("component", "client").
			Str("conn_id", id).
			Logger(),
	}
}

// ID returns the connection's log tag.
func (c *Client) ID() string {
	return c.id
}

// Send queues frame for the write pump without blocking.
func (c *Client) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrPeerClosed
	default:
	}

	select {
	case c.send <- frame:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame.")
		return ErrQueueFull
	}
}

// Close asks the write pump to send a close frame and tear the connection down.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Serve runs the session: it registers with the hub, starts the write pump and
// reads until the connection ends. It returns after the hub was told about the
// disconnect.
func (c *Client) Serve() {
	go c.WritePump()

	c.hub.Open(c)
	c.ReadPump()
}

// ReadPump forwards inbound text frames to the hub and reports the disconnect on
// exit, whatever the cause.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(c.maxFrameBytes)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection ended unexpectedly")
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.logger.Warn().Int("message_type", messageType).Msg("Dropping non-text frame")
			continue
		}

		c.hub.Receive(c, frame)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.hub.Disconnect(c)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	c.logger.Debug().Msg("Client read loop finished.")
}

// WritePump drains the send queue onto the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// unblocks ReadPump if the write side failed first
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame := <-c.send:
			if !c.write(websocket.TextMessage, frame) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.done:
			if c.drain() {
				c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			return
		}
	}
}

// drain flushes frames queued before Close. It reports false if a write failed.
func (c *Client) drain() bool {
	for {
		select {
		case frame := <-c.send:
			if !c.write(websocket.TextMessage, frame) {
				return false
			}
		default:
			return true
		}
	}
}

func (c *Client) write(messageType int, data []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.logger.Debug().Err(err).Int("message_type", messageType).Msg("Error writing frame")
		return false
	}

	return true
}
