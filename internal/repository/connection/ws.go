package connection

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"
)

type Config struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxMessageSize int64
	// PongWait is how long the peer may stay silent before the connection is considered dead.
	// Pings go out at nine tenths of it. Zero disables the keepalive.
	PongWait time.Duration
}

// WSConn queues outbound frames for a websocket and writes them from its own goroutine.
type WSConn struct {
	id           string
	conn         *websocket.Conn
	send         chan []byte
	done         chan struct{}
	once         sync.Once
	wg           conc.WaitGroup
	writeTimeout time.Duration
	pongWait     time.Duration
	logger       *slog.Logger
}

func NewWSConn(conn *websocket.Conn, cfg *Config, logger *slog.Logger) *WSConn {
	c := &WSConn{
		id:           uuid.NewString(),
		conn:         conn,
		send:         make(chan []byte, cfg.SendBuffer),
		done:         make(chan struct{}),
		writeTimeout: cfg.WriteTimeout,
		pongWait:     cfg.PongWait,
		logger:       logger,
	}

	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	if c.pongWait > 0 {
		_ = c.KeepAlive()
		conn.SetPongHandler(func(string) error {
			return c.KeepAlive()
		})
	}

	c.wg.Go(c.writePump)

	return c
}

func (c *WSConn) Id() string {
	return c.id
}

func (c *WSConn) TrySend(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrBackpressure
	}
}

// ReadMessage blocks until the next frame from the peer arrives.
func (c *WSConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

// KeepAlive pushes the read deadline a full pong wait into the future.
func (c *WSConn) KeepAlive() error {
	if c.pongWait <= 0 {
		return nil
	}

	return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
}

func (c *WSConn) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Wait blocks until the write pump has exited.
func (c *WSConn) Wait() {
	c.wg.Wait()
}

func (c *WSConn) writePump() {
	defer c.conn.Close()

	var ping <-chan time.Time
	if c.pongWait > 0 {
		ticker := time.NewTicker(c.pongWait * 9 / 10)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ping:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Info("failed to write ping", "conn_id", c.id, "error", err)
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.logger.Warn("failed to set write deadline", "conn_id", c.id, "error", err)
				c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Info("failed to write message", "conn_id", c.id, "error", err)
				c.Close()
				return
			}
		}
	}
}

// flush writes whatever was queued before Close, so a final event is not lost.
func (c *WSConn) flush() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}
