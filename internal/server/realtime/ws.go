package realtime

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ConnConfig bounds the resources of one WebSocket connection.
type ConnConfig struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	PongWait     time.Duration
	ReadLimit    int64
	QueueSize    int
}

func DefaultConnConfig() ConnConfig {
	return ConnConfig{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		PongWait:     60 * time.Second,
		ReadLimit:    64 << 10,
		QueueSize:    64,
	}
}

// wsConn owns one gorilla connection. A single writer goroutine performs
// every write, so concurrent Send calls never touch the socket.
type wsConn struct {
	id   string
	ws   *websocket.Conn
	cfg  ConnConfig
	log  logging.Logger
	send chan []byte

	closeOnce   sync.Once
	done        chan struct{}
	closeCode   int
	closeReason string
}

func newWSConn(ws *websocket.Conn, cfg ConnConfig, l logging.Logger) *wsConn {
	id := uuid.NewString()
	return &wsConn{
		id:   id,
		ws:   ws,
		cfg:  cfg,
		log:  l.With("conn_id", id),
		send: make(chan []byte, cfg.QueueSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *wsConn) Close(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// writePump runs until the connection is closed or a write fails. It sends
// the close frame and releases the socket, which also ends the read loop.
func (c *wsConn) writePump(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.log.Warn(ctx, "set write deadline failed", "error", err)
				c.Close(CloseGoingAway, "")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Warn(ctx, "write failed", "error", err)
				c.Close(CloseGoingAway, "")
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.cfg.WriteTimeout)); err != nil {
				c.log.Warn(ctx, "ping failed", "error", err)
				c.Close(CloseGoingAway, "")
				return
			}
		case <-c.done:
			msg := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.cfg.WriteTimeout))
			return
		}
	}
}

// readPump hands every text frame to handle until the peer goes away or the
// connection is closed locally.
func (c *wsConn) readPump(ctx context.Context, handle func([]byte)) {
	c.ws.SetReadLimit(c.cfg.ReadLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.log.Info(ctx, "peer unresponsive", "error", err)
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn(ctx, "read failed", "error", err)
			}
			return
		}
		if err := c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		handle(data)
	}
}

// refuse sends a policy-violation close frame and drops the socket.
func refuse(ws *websocket.Conn, reason string, timeout time.Duration) {
	msg := websocket.FormatCloseMessage(ClosePolicyViolation, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(timeout))
	_ = ws.Close()
}
