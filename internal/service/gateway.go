package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"

	"pictoblitz-be/internal/service/dto"
	"pictoblitz-be/internal/service/game"

	"go.uber.org/zap"
)

// Gateway turns inbound requests from connections into room operations. Rooms
// deliver their own events through the hub; the gateway only answers the
// requester directly (room_created, available_rooms, error).
type Gateway struct {
	rooms *RoomService
	hub   *ConnectionHub
}

func NewGateway(rooms *RoomService, hub *ConnectionHub) *Gateway {
	return &Gateway{
		rooms: rooms,
		hub:   hub,
	}
}

// Dispatch decodes a raw frame received on connID and handles it.
func (g *Gateway) Dispatch(connID string, msg []byte) {
	var wrapper game.RequestWrapper

	if err := json.Unmarshal(msg, &wrapper); err != nil {
		zap.L().Debug(
			"Failed to decode request",
			zap.String("conn_id", connID),
			zap.Error(err),
		)
		g.replyError(connID, "", game.ErrMalformedRequest)
		return
	}

	g.Handle(connID, wrapper)
}

// Handle runs one request. Any failure, including a panic, is reported to the
// requester only.
func (g *Gateway) Handle(connID string, wrapper game.RequestWrapper) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error(
				"Panic while handling request",
				zap.String("conn_id", connID),
				zap.String("request_type", wrapper.ReqType),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			g.replyError(connID, wrapper.ReqType, fmt.Errorf("panic: %v", rec))
		}
	}()

	zap.L().Debug(
		"Handling request",
		zap.String("conn_id", connID),
		zap.String("request_type", wrapper.ReqType),
	)

	if err := g.handle(connID, wrapper); err != nil {
		g.replyError(connID, wrapper.ReqType, err)
	}
}

func (g *Gateway) handle(connID string, wrapper game.RequestWrapper) error {
	switch wrapper.ReqType {
	case game.REQ_CREATE_ROOM:
		req, err := game.Unwrap[game.CreateRoomRequest](wrapper)
		if err != nil {
			return err
		}
		return g.createRoom(connID, req)

	case game.REQ_JOIN_ROOM:
		req, err := game.Unwrap[game.JoinRoomRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		return room.Join(req.Identity, connID)

	case game.REQ_LEAVE_ROOM:
		req, err := game.Unwrap[game.LeaveRoomRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if errors.Is(err, game.ErrRoomNotFound) {
			// 房间已经因为最后一个人离开被回收，重复离开不算错
			return nil
		}
		if err != nil {
			return err
		}
		if err := authorize(room, connID, req.Identity.ID); err != nil {
			return err
		}
		if room.Leave(req.Identity.ID) {
			g.rooms.Delete(room.ID())
		}
		return nil

	case game.REQ_GET_AVAILABLE_ROOMS:
		if _, err := game.Unwrap[game.GetAvailableRoomsRequest](wrapper); err != nil {
			return err
		}
		g.hub.Send(connID, game.WrapResponse(
			game.RESP_AVAILABLE_ROOMS,
			dto.AvailableRoomsResponse{Rooms: g.rooms.ListJoinable()},
		))
		return nil

	case game.REQ_START_GAME:
		req, err := game.Unwrap[game.StartGameRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		if err := authorize(room, connID, req.Identity.ID); err != nil {
			return err
		}
		return room.StartGame(req.Identity.ID)

	case game.REQ_DRAW:
		req, err := game.Unwrap[game.DrawRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		return room.Draw(connID, req.Segment)

	case game.REQ_CLEAR_CANVAS:
		req, err := game.Unwrap[game.ClearCanvasRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		return room.ClearCanvas(connID)

	case game.REQ_SUBMIT_GUESS:
		req, err := game.Unwrap[game.SubmitGuessRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		if err := authorize(room, connID, req.Identity.ID); err != nil {
			return err
		}
		return room.SubmitGuess(req.Identity.ID, req.Text)

	case game.REQ_NEXT_ROUND:
		req, err := game.Unwrap[game.NextRoundRequest](wrapper)
		if err != nil {
			return err
		}
		room, err := g.rooms.Get(req.RoomID)
		if err != nil {
			return err
		}
		// 只有当前画手的连接才能结束本回合
		playerID, ok := room.MemberByTransport(connID)
		if !ok {
			return game.ErrPlayerNotFound
		}
		return room.NextRoundBy(playerID)

	default:
		return game.ErrUnknownRequest
	}
}

func (g *Gateway) createRoom(connID string, req *game.CreateRoomRequest) error {
	room, err := g.rooms.CreateRoom(req, connID)
	if err != nil {
		return err
	}

	g.hub.Send(connID, game.WrapResponse(game.RESP_ROOM_CREATED, game.RoomCreatedResponse{
		RoomID: room.ID(),
		Room:   room.ViewFor(req.Identity.ID),
	}))

	return nil
}

// authorize rejects requests that claim an identity currently bound to a
// different connection. Unknown identities pass through so the room reports
// its own error for them.
func authorize(room *game.Room, connID, playerID string) error {
	transport, ok := room.TransportOf(playerID)
	if ok && transport != connID {
		return game.ErrWrongConnection
	}
	return nil
}

// Disconnect reconciles a lost connection with every room it was bound to.
// A connection that is in no room is simply ignored.
func (g *Gateway) Disconnect(connID string) {
	g.rooms.Each(func(room *game.Room) {
		removed, empty := room.Disconnect(connID)
		if !removed {
			return
		}

		zap.L().Info(
			"Connection left room",
			zap.String("conn_id", connID),
			zap.String("room_id", room.ID()),
		)

		if empty {
			g.rooms.Delete(room.ID())
		}
	})
}

func (g *Gateway) replyError(connID, reqType string, err error) {
	kind := game.ErrorKind(err)

	if kind == game.KIND_INTERNAL {
		zap.L().Error(
			"Request failed",
			zap.String("conn_id", connID),
			zap.String("request_type", reqType),
			zap.Error(err),
		)
	} else {
		zap.L().Debug(
			"Request rejected",
			zap.String("conn_id", connID),
			zap.String("request_type", reqType),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}

	g.hub.Send(connID, game.WrapErrResponse(err))
}
