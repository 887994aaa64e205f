package service

import (
	"encoding/json"
	"testing"

	"pictoblitz-be/internal/service/game"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts RoomServiceOptions) (*RoomService, *ConnectionHub) {
	t.Helper()

	hub := NewConnectionHub(64)
	rs := NewRoomService(opts, hub)
	t.Cleanup(rs.Close)

	return rs, hub
}

// drain returns every response queued for conn so far.
func drain(conn *Connection) []game.ResponseWrapper {
	var out []game.ResponseWrapper
	for {
		select {
		case resp, ok := <-conn.RespCh:
			if !ok {
				return out
			}
			out = append(out, resp)
		default:
			return out
		}
	}
}

func respTypes(resps []game.ResponseWrapper) []string {
	types := make([]string, 0, len(resps))
	for _, r := range resps {
		types = append(types, r.RespType)
	}
	return types
}

func findResp(resps []game.ResponseWrapper, respType string) (game.ResponseWrapper, bool) {
	for i := len(resps) - 1; i >= 0; i-- {
		if resps[i].RespType == respType {
			return resps[i], true
		}
	}
	return game.ResponseWrapper{}, false
}

func request(t *testing.T, reqType string, data any) game.RequestWrapper {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	return game.RequestWrapper{ReqType: reqType, Data: raw}
}

func ident(id string) game.Identity {
	return game.Identity{ID: id, Name: id + "-name"}
}

func createReq(name string, owner string) *game.CreateRoomRequest {
	return &game.CreateRoomRequest{RoomName: name, Identity: ident(owner)}
}
