package http

import (
	"errors"
	"strings"
	"time"

	"pictoblitz-be/internal/service/dto"
	"pictoblitz-be/internal/service/game"
	"pictoblitz-be/internal/state"

	"github.com/kataras/iris/v12"
)

func Health() iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.HealthResponse{
			Status: "ok",
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ServerStatus reports the live connection count and every live room.
func ServerStatus(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.StatusResponse{
			Status:      dto.SERVER_STATUS_RUNNING,
			Connections: appState.Hub.Count(),
			Rooms:       appState.RoomSvc.Count(),
			ActiveRooms: appState.RoomSvc.List(),
		})
	}
}

func ListRooms(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		ctx.JSON(dto.AvailableRoomsResponse{
			Rooms: appState.RoomSvc.ListJoinable(),
		})
	}
}

// RoomDetail returns the public snapshot of one room. The secret word only
// shows up once the game is over.
func RoomDetail(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		roomID := strings.ToUpper(ctx.Params().Get("id"))

		room, err := appState.RoomSvc.Get(roomID)
		if err != nil {
			status := iris.StatusInternalServerError
			if errors.Is(err, game.ErrNotFound) {
				status = iris.StatusNotFound
			}
			ctx.StopWithJSON(status, game.ErrorResponse{
				Kind:    game.ErrorKind(err),
				Message: err.Error(),
			})
			return
		}

		ctx.JSON(room.Snapshot())
	}
}
