package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_CREATE_ROOM         = "create_room"
	REQ_JOIN_ROOM           = "join_room"
	REQ_LEAVE_ROOM          = "leave_room"
	REQ_GET_AVAILABLE_ROOMS = "get_available_rooms"
	REQ_START_GAME          = "start_game"
	REQ_DRAW                = "draw"
	REQ_CLEAR_CANVAS        = "clear_canvas"
	REQ_SUBMIT_GUESS        = "submit_guess"
	REQ_NEXT_ROUND          = "next_round"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

// Unwrap decodes the payload of wrapper into T and validates it. Decoding and
// validation failures are reported as ErrValidationFailed.
func Unwrap[T any, PT interface {
	*T
	Validate() error
}](wrapper RequestWrapper) (*T, error) {
	var req T

	if len(wrapper.Data) > 0 && string(wrapper.Data) != "null" {
		if err := json.Unmarshal(wrapper.Data, &req); err != nil {
			zap.L().Debug(
				"Failed to unwrap request",
				zap.String("request_type", wrapper.ReqType),
				zap.Error(err),
			)
			return nil, invalidf("malformed %s payload", wrapper.ReqType)
		}
	}

	if err := PT(&req).Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// 响应类型
const (
	RESP_ERROR = "error"

	RESP_ROOM_CREATED    = "room_created"
	RESP_ROOM_UPDATED    = "room_updated"
	RESP_ROOM_DELETED    = "room_deleted"
	RESP_AVAILABLE_ROOMS = "available_rooms"
	RESP_GAME_STARTED    = "game_started"
	RESP_ROUND_STARTED   = "round_started"
	RESP_GAME_OVER       = "game_over"
	RESP_DRAW_UPDATE     = "draw_update"
	RESP_CANVAS_CLEARED  = "canvas_cleared"
	RESP_CANVAS_SYNC     = "canvas_sync"
	RESP_NEW_MESSAGE     = "new_message"
	RESP_CORRECT_GUESS   = "correct_guess"
	RESP_ROUND_TIME_UP   = "round_time_up"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(err error) ResponseWrapper {
	kind := ErrorKind(err)

	msg := err.Error()
	if kind == KIND_INTERNAL {
		// 内部错误不把细节暴露给客户端
		msg = "internal server error"
	}

	return ResponseWrapper{
		RespType: RESP_ERROR,
		Data: ErrorResponse{
			Kind:    kind,
			Message: msg,
		},
		ErrMsg: msg,
	}
}
