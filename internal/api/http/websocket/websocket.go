package websocket

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// 心跳间隔
	HEARTBEAT_INTERVAL = 30 * time.Second
	// 心跳超时时间，必须比心跳间隔长
	HEARTBEAT_TIMEOUT = 45 * time.Second
	// 单次写入的超时
	WRITE_TIMEOUT = 10 * time.Second

	// 单条消息上限，画笔数据足够用
	MAX_MESSAGE_SIZE = 64 * 1024
)

// NewUpgrader accepts any origin when origins is empty or contains "*".
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowAll := len(origins) == 0 || slices.Contains(origins, "*")

	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			// 非浏览器客户端没有 Origin 头
			return origin == "" || slices.Contains(origins, origin)
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

var heartbeatHandler = func(conn *websocket.Conn) func(string) error {
	return func(string) error {
		return conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
	}
}
