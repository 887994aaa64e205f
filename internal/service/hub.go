package service

import (
	"sync"

	"pictoblitz-be/internal/service/game"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Connection is the server side of one client transport. Responses queued on
// RespCh are written to the client by the transport's write pump.
type Connection struct {
	ID     string
	RespCh chan game.ResponseWrapper
}

// ConnectionHub knows every live connection and delivers responses to them.
// It is the outbox every room publishes into.
type ConnectionHub struct {
	mu    sync.RWMutex
	conns map[string]*Connection

	bufSize int
}

const DEFAULT_OUTBOX_SIZE = 256

func NewConnectionHub(bufSize int) *ConnectionHub {
	if bufSize <= 0 {
		bufSize = DEFAULT_OUTBOX_SIZE
	}

	return &ConnectionHub{
		conns:   make(map[string]*Connection),
		bufSize: bufSize,
	}
}

// Register creates a connection with a fresh id.
func (h *ConnectionHub) Register() *Connection {
	conn := &Connection{
		ID:     newConnectionID(),
		RespCh: make(chan game.ResponseWrapper, h.bufSize),
	}

	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()

	zap.L().Debug("Connection registered", zap.String("conn_id", conn.ID))

	return conn
}

// Unregister forgets the connection and closes its channel, which stops the
// write pump. Unregistering twice is a no-op.
func (h *ConnectionHub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}

	delete(h.conns, connID)
	close(conn.RespCh)

	zap.L().Debug("Connection unregistered", zap.String("conn_id", connID))
}

// Send queues resp for the connection without blocking. Responses to unknown
// or saturated connections are dropped.
func (h *ConnectionHub) Send(connID string, resp game.ResponseWrapper) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[connID]
	if !ok {
		return
	}

	select {
	case conn.RespCh <- resp:
	default:
		// 客户端读得太慢，丢弃这条消息，不能让房间锁等它
		zap.L().Warn(
			"Outbox full, dropping response",
			zap.String("conn_id", connID),
			zap.String("response_type", resp.RespType),
		)
	}
}

func (h *ConnectionHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func newConnectionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
