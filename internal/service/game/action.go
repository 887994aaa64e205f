package game

import "strings"

type CreateRoomRequest struct {
	RoomName   string   `json:"roomName"`
	MaxPlayers int      `json:"maxPlayers"`
	MaxRounds  int      `json:"maxRounds"`
	Identity   Identity `json:"identity"`
}

func (r *CreateRoomRequest) Validate() error {
	r.RoomName = strings.TrimSpace(r.RoomName)
	if r.RoomName == "" {
		return invalidf("room name is required")
	}
	if len(r.RoomName) > 64 {
		return invalidf("room name is too long")
	}
	// 0 表示使用默认值，上限由房间服务按配置检查
	if r.MaxPlayers < 0 || r.MaxPlayers == 1 {
		return invalidf("maxPlayers must be at least %d", MIN_PLAYERS_TO_START)
	}
	if r.MaxRounds < 0 {
		return invalidf("maxRounds must be at least 1")
	}
	return r.Identity.Validate()
}

type RoomCreatedResponse struct {
	RoomID string   `json:"roomId"`
	Room   RoomView `json:"room"`
}

type JoinRoomRequest struct {
	RoomID   string   `json:"roomId"`
	Identity Identity `json:"identity"`
}

func (r *JoinRoomRequest) Validate() error {
	if err := validateRoomID(&r.RoomID); err != nil {
		return err
	}
	return r.Identity.Validate()
}

type LeaveRoomRequest struct {
	RoomID   string   `json:"roomId"`
	Identity Identity `json:"identity"`
}

func (r *LeaveRoomRequest) Validate() error {
	if err := validateRoomID(&r.RoomID); err != nil {
		return err
	}
	return r.Identity.Validate()
}

type GetAvailableRoomsRequest struct{}

func (*GetAvailableRoomsRequest) Validate() error { return nil }

type StartGameRequest struct {
	RoomID   string   `json:"roomId"`
	Identity Identity `json:"identity"`
}

func (r *StartGameRequest) Validate() error {
	if err := validateRoomID(&r.RoomID); err != nil {
		return err
	}
	return r.Identity.Validate()
}

type DrawRequest struct {
	RoomID  string  `json:"roomId"`
	Segment Segment `json:"segment"`
}

func (r *DrawRequest) Validate() error {
	if err := validateRoomID(&r.RoomID); err != nil {
		return err
	}
	return r.Segment.Validate()
}

type ClearCanvasRequest struct {
	RoomID string `json:"roomId"`
}

func (r *ClearCanvasRequest) Validate() error {
	return validateRoomID(&r.RoomID)
}

type SubmitGuessRequest struct {
	RoomID   string   `json:"roomId"`
	Identity Identity `json:"identity"`
	Text     string   `json:"text"`
}

const MAX_GUESS_LENGTH = 200

func (r *SubmitGuessRequest) Validate() error {
	if err := validateRoomID(&r.RoomID); err != nil {
		return err
	}
	if len(r.Text) > MAX_GUESS_LENGTH {
		return invalidf("guess is too long")
	}
	return r.Identity.Validate()
}

type NextRoundRequest struct {
	RoomID string `json:"roomId"`
}

func (r *NextRoundRequest) Validate() error {
	return validateRoomID(&r.RoomID)
}

type CorrectGuessNotification struct {
	GuesserID   string       `json:"guesserId"`
	GuesserName string       `json:"guesserName"`
	DrawerID    string       `json:"drawerId"`
	Players     []PlayerView `json:"players"`
}

type RoundTimeUpNotification struct {
	Round    int    `json:"round"`
	DrawerID string `json:"drawerId"`
	Word     string `json:"word"`
}

type CanvasSyncResponse struct {
	Lines []Segment `json:"lines"`
}

type RoomDeletedNotification struct {
	RoomID string `json:"roomId"`
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// 房间号不区分大小写，统一转成大写
func validateRoomID(id *string) error {
	*id = strings.ToUpper(strings.TrimSpace(*id))
	if *id == "" {
		return invalidf("roomId is required")
	}
	if len(*id) > 16 {
		return invalidf("roomId is malformed")
	}
	return nil
}
