package http

import (
	"pictoblitz-be/internal/api/http/websocket"
	"pictoblitz-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// NewApp wires every route onto a fresh iris application.
func NewApp(appState *state.AppState) *iris.Application {
	app := iris.New()
	app.Logger().SetLevel(appState.Cfg.LogLevel)
	app.UseRouter(recoverMiddleware)

	app.Get("/healthz", Health())

	api := app.Party("/api/v1")

	api.Get("/status", ServerStatus(appState))
	api.Get("/rooms", ListRooms(appState))
	api.Get("/rooms/{id:string}", RoomDetail(appState))

	api.Get("/ws", websocket.Serve(appState))

	return app
}

func RunServer(appState *state.AppState) error {
	app := NewApp(appState)

	addr := appState.Cfg.Addr()
	zap.L().Info("Server listening", zap.String("addr", addr))

	return app.Listen(addr, iris.WithoutStartupLog)
}

func recoverMiddleware(ctx iris.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			if ctx.IsStopped() {
				return
			}

			zap.L().Error(
				"Panic in HTTP handler",
				zap.String("path", ctx.Path()),
				zap.Any("panic", rec),
			)

			ctx.StopWithJSON(iris.StatusInternalServerError, iris.Map{
				"error": "internal server error",
			})
		}
	}()

	ctx.Next()
}
