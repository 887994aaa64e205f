package websocket

import (
	"time"

	"pictoblitz-be/internal/service"
	"pictoblitz-be/internal/service/game"
	"pictoblitz-be/internal/state"

	"github.com/gorilla/websocket"
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Serve upgrades the request and runs the connection until the client goes
// away. Every frame is handed to the gateway; everything the rooms publish for
// this connection is written back by the write pump.
func Serve(appState *state.AppState) iris.Handler {
	upgrader := NewUpgrader(appState.Cfg.AllowedOrigins)

	return func(ctx iris.Context) {
		conn, err := upgrader.Upgrade(
			ctx.ResponseWriter(),
			ctx.Request(),
			nil,
		)
		if err != nil {
			zap.L().Error("Failed to upgrade to WebSocket", zap.Error(err))
			return
		}

		defer conn.Close()

		conn.SetReadLimit(MAX_MESSAGE_SIZE)
		conn.SetReadDeadline(time.Now().Add(HEARTBEAT_TIMEOUT))
		conn.SetPongHandler(heartbeatHandler(conn))

		client := appState.Hub.Register()
		clientIP := ctx.RemoteAddr()

		zap.L().Info(
			"Client connected",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", client.ID),
		)

		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			writePump(conn, client, clientIP)
		}()

		readPump(conn, client, appState, clientIP)

		// 读循环退出，表示客户端断开连接
		appState.Gateway.Disconnect(client.ID)
		appState.Hub.Unregister(client.ID)

		<-writeDone

		zap.L().Info(
			"Client disconnected",
			zap.String("client_ip", clientIP),
			zap.String("conn_id", client.ID),
		)
	}
}

func readPump(conn *websocket.Conn, client *service.Connection, appState *state.AppState, clientIP string) {
	limiter := rate.NewLimiter(
		rate.Limit(appState.Cfg.MessagesPerSecond),
		appState.Cfg.MessageBurst,
	)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				zap.L().Error(
					"Failed to read message",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
			}
			return
		}

		if !limiter.Allow() {
			zap.L().Warn(
				"Client exceeded message rate",
				zap.String("client_ip", clientIP),
				zap.String("conn_id", client.ID),
			)
			appState.Hub.Send(client.ID, game.WrapErrResponse(game.ErrRateLimited))
			continue
		}

		appState.Gateway.Dispatch(client.ID, msg)
	}
}

// writePump owns all writes on conn. It stops once the hub closes RespCh or a
// write fails; a failed write also unblocks the read loop by closing conn.
func writePump(conn *websocket.Conn, client *service.Connection, clientIP string) {
	ticker := time.NewTicker(HEARTBEAT_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Error(
					"Failed to send heartbeat",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				conn.Close()
				return
			}

		case resp, ok := <-client.RespCh:
			conn.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT))

			if !ok {
				// 连接已经从 hub 注销
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := conn.WriteJSON(resp); err != nil {
				zap.L().Error(
					"Failed to send message",
					zap.String("client_ip", clientIP),
					zap.Error(err),
				)
				conn.Close()
				return
			}

			zap.L().Debug(
				"Sent message",
				zap.String("conn_id", client.ID),
				zap.String("response_type", resp.RespType),
			)
		}
	}
}
