package client

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	defaultWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. The channel is push only.
	maxMessageSize = 512
)

// ErrClosed is returned by Send once the connection has been closed.
var ErrClosed = errors.New("client: connection closed")

// Conn is the server side of one notification channel. Messages flow
// server to client only. ReadPump notices disconnects and PingPump keeps
// an idle peer inside the read deadline.
type Conn struct {
	conn      *websocket.Conn
	id        string
	writeWait time.Duration
	logger    *slog.Logger

	pongWait   time.Duration
	pingPeriod time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// New wraps an upgraded websocket connection. A zero writeWait uses the
// default.
func New(conn *websocket.Conn, id string, writeWait time.Duration, logger *slog.Logger) *Conn {
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Conn{
		conn:      conn,
		id:        id,
		writeWait: writeWait,
		logger:    logger,

		pongWait:   pongWait,
		pingPeriod: pingPeriod,
		done:       make(chan struct{}),
	}
}

// ID returns the identifier the connection was created with.
func (c *Conn) ID() string { return c.id }

// Send writes data as a single text frame. Any failure closes the
// connection, so later sends fail fast with ErrClosed.
func (c *Conn) Send(data []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.Close()
		return err
	}
	return nil
}

// ReadPump discards inbound frames until the peer goes away, then marks
// the connection closed. Run it in its own goroutine.
func (c *Conn) ReadPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("conn.read", "conn", c.id, "err", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	}
}

// PingPump pings the peer every pingPeriod until the connection closes.
// The pongs are what keep ReadPump's deadline moving. Run it in its own
// goroutine.
func (c *Conn) PingPump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait)); err != nil {
				c.logger.Debug("conn.ping", "conn", c.id, "err", err)
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Closed reports whether the connection has been closed.
func (c *Conn) Closed() bool { return c.closed.Load() }

// Done is closed once the connection has been closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
		close(c.done)
	})
	return err
}
