package game

import (
	"math"
	"time"
)

// 房间生命周期只能单向推进：waiting -> active -> completed
type Status string

const (
	STATUS_WAITING   Status = "waiting"
	STATUS_ACTIVE    Status = "active"
	STATUS_COMPLETED Status = "completed"
)

const (
	CORRECT_GUESS_POINTS = 100
	DRAWER_POINTS        = 50

	MIN_PLAYERS_TO_START = 2

	DEFAULT_PLAYER_NAME = "Anonymous"
)

// Identity is the already-authenticated user tuple handed over by the
// external identity provider.
type Identity struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

func (id Identity) Validate() error {
	if id.ID == "" {
		return invalidf("identity id is required")
	}
	if len(id.Name) > 64 {
		return invalidf("display name is too long")
	}
	return nil
}

type Player struct {
	ID        string
	Name      string
	AvatarURL string
	Score     int
	IsHost    bool
	JoinedAt  time.Time

	// 连接 ID，重连后会被替换，只用于投递消息
	Transport string

	// 加入顺序，房主继承按它决定
	seq uint64
}

func (p *Player) view() PlayerView {
	return PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
		Score:     p.Score,
		IsHost:    p.IsHost,
		JoinedAt:  p.JoinedAt,
	}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Segment is one stroke of the drawing surface. The ordered log of segments
// is the canonical picture.
type Segment struct {
	Start    Point   `json:"start"`
	End      Point   `json:"end"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	DrawerID string  `json:"drawerId,omitempty"`
}

const MAX_SEGMENT_WIDTH = 200

func (s Segment) Validate() error {
	if !s.Start.finite() || !s.End.finite() {
		return invalidf("segment coordinates must be finite numbers")
	}
	if s.Width <= 0 || s.Width > MAX_SEGMENT_WIDTH || math.IsNaN(s.Width) {
		return invalidf("segment width must be in (0, %d]", MAX_SEGMENT_WIDTH)
	}
	if s.Color == "" || len(s.Color) > 32 {
		return invalidf("segment color is required")
	}
	return nil
}

type Message struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	IsCorrect bool      `json:"isCorrect"`
	Timestamp time.Time `json:"timestamp"`
}

// Settings are the per-room knobs taken from configuration.
type Settings struct {
	// 0 表示不启用回合计时器
	RoundDuration time.Duration
	GraceDelay    time.Duration
	MaxMessages   int
	MaxSegments   int
}

const DEFAULT_GRACE_DELAY = 5 * time.Second

type PlayerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl"`
	Score     int       `json:"score"`
	IsHost    bool      `json:"isHost"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// RoomView is the room snapshot sent to clients. CurrentWord is only filled
// for viewers allowed to see it, see stateEvent.
type RoomView struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	CreatedAt      time.Time    `json:"createdAt"`
	Status         Status       `json:"status"`
	HostName       string       `json:"hostName"`
	MaxPlayers     int          `json:"maxPlayers"`
	MaxRounds      int          `json:"maxRounds"`
	CurrentRound   int          `json:"currentRound"`
	CurrentDrawer  string       `json:"currentDrawer"`
	CurrentWord    string       `json:"currentWord,omitempty"`
	Players        []PlayerView `json:"players"`
	RoundStartedAt *time.Time   `json:"roundStartedAt,omitempty"`
	RoundEndsAt    *time.Time   `json:"roundEndsAt,omitempty"`
	GameStartedAt  *time.Time   `json:"gameStartedAt,omitempty"`
	GameEndedAt    *time.Time   `json:"gameEndedAt,omitempty"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
