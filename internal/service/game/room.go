package game

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"pictoblitz-be/internal/service/dto"

	"go.uber.org/zap"
)

// Room is one game session. Every exported method takes the room lock, so all
// operations on a room are serialized while rooms run in parallel.
type Room struct {
	mu sync.Mutex

	id        string
	name      string
	createdAt time.Time

	status       Status
	maxPlayers   int
	maxRounds    int
	currentRound int

	currentDrawer string
	currentWord   string
	usedWords     map[string]struct{}
	guessed       map[string]bool

	// 按加入顺序排列，同时也是轮流画画的顺序
	players []*Player
	nextSeq uint64

	lines     []Segment
	messages  []Message
	nextMsgID int64

	roundStartedAt time.Time
	roundEndsAt    time.Time
	gameStartedAt  time.Time
	gameEndedAt    time.Time

	// 每开始一个新回合加一，计时器回调靠它判断自己是否过期
	turn     uint64
	turnOver bool
	timer    *time.Timer

	// 房间清空后置为 true，之后的操作都按房间不存在处理
	closed bool

	settings Settings
	words    *WordBank
	outbox   Outbox

	now       func() time.Time
	randIntN  func(int) int
	afterFunc func(time.Duration, func()) *time.Timer
}

type RoomParams struct {
	ID         string
	Name       string
	MaxPlayers int
	MaxRounds  int
	Creator    Identity
	Transport  string
	Settings   Settings
	Words      *WordBank
	Outbox     Outbox
}

// NewRoom builds a waiting room whose only player is the creator, as host.
func NewRoom(p RoomParams) *Room {
	if p.Words == nil {
		p.Words = DefaultWordBank()
	}
	if p.Settings.GraceDelay <= 0 {
		p.Settings.GraceDelay = DEFAULT_GRACE_DELAY
	}

	r := &Room{
		id:         p.ID,
		name:       p.Name,
		status:     STATUS_WAITING,
		maxPlayers: p.MaxPlayers,
		maxRounds:  p.MaxRounds,
		usedWords:  make(map[string]struct{}),
		guessed:    make(map[string]bool),
		settings:   p.Settings,
		words:      p.Words,
		outbox:     p.Outbox,
		now:        time.Now,
		randIntN:   rand.IntN,
		afterFunc:  time.AfterFunc,
	}
	r.createdAt = r.now()

	creator := r.newPlayer(p.Creator, p.Transport)
	creator.IsHost = true
	r.players = append(r.players, creator)

	return r
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) newPlayer(id Identity, transport string) *Player {
	name := id.Name
	if name == "" {
		name = DEFAULT_PLAYER_NAME
	}

	r.nextSeq++

	return &Player{
		ID:        id.ID,
		Name:      name,
		AvatarURL: id.AvatarURL,
		Transport: transport,
		JoinedAt:  r.now(),
		seq:       r.nextSeq,
	}
}

func (r *Room) Summary() dto.RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return dto.RoomSummary{
		ID:         r.id,
		Name:       r.name,
		HostName:   r.hostNameLocked(),
		Status:     string(r.status),
		Players:    len(r.players),
		MaxPlayers: r.maxPlayers,
		CreatedAt:  r.createdAt,
	}
}

// Snapshot returns the public view of the room, without the secret word.
func (r *Room) Snapshot() RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.viewLocked()
	if v.Status != STATUS_COMPLETED {
		v.CurrentWord = ""
	}
	return v
}

// ViewFor returns the snapshot as seen by playerID.
func (r *Room) ViewFor(playerID string) RoomView {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp, _ := Render(stateEvent("", r.viewLocked(), Everyone()), playerID)
	return resp.Data.(RoomView)
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Room) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// GameEndedAt is zero until the game completes.
func (r *Room) GameEndedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gameEndedAt
}

// MemberByTransport reports which player, if any, is bound to transport.
func (r *Room) MemberByTransport(transport string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.playerByTransportLocked(transport); p != nil {
		return p.ID, true
	}
	return "", false
}

// Join adds a player, or rebinds the transport of a returning one. A
// returning player keeps score, host flag and turn order.
func (r *Room) Join(id Identity, transport string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}

	// 一个连接在同一个房间里只能代表一个玩家
	if transport != "" {
		if bound := r.playerByTransportLocked(transport); bound != nil && bound.ID != id.ID {
			return ErrWrongConnection
		}
	}

	player := r.playerLocked(id.ID)
	if player != nil {
		zap.L().Info(
			"Player reconnected",
			zap.String("room_id", r.id),
			zap.String("player_id", id.ID),
		)
		player.Transport = transport
	} else {
		if len(r.players) >= r.maxPlayers {
			return ErrRoomFull
		}

		player = r.newPlayer(id, transport)
		r.players = append(r.players, player)

		zap.L().Info(
			"Player joined",
			zap.String("room_id", r.id),
			zap.String("player_id", id.ID),
			zap.Int("players", len(r.players)),
		)
	}

	r.publishLocked(r.players, stateEvent(RESP_ROOM_UPDATED, r.viewLocked(), Everyone()))
	r.publishLocked(r.players, Event{
		Type:     RESP_CANVAS_SYNC,
		Audience: Only(player.ID),
		Data:     CanvasSyncResponse{Lines: slices.Clone(r.lines)},
	})

	return nil
}

// Leave removes the player. It returns true when the room became empty and
// must be evicted from the registry. Leaving twice is a no-op.
func (r *Room) Leave(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	idx := r.indexLocked(playerID)
	if idx < 0 {
		return false
	}

	return r.removeLocked(idx)
}

// Disconnect removes every player bound to transport. A stale transport, one
// that was replaced by a reconnect, matches nobody and changes nothing.
func (r *Room) Disconnect(transport string) (removed bool, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || transport == "" {
		return false, false
	}

	for {
		idx := slices.IndexFunc(r.players, func(p *Player) bool {
			return p.Transport == transport
		})
		if idx < 0 {
			return removed, false
		}

		zap.L().Info(
			"Player disconnected",
			zap.String("room_id", r.id),
			zap.String("player_id", r.players[idx].ID),
		)
		removed = true
		if r.removeLocked(idx) {
			return true, true
		}
	}
}

// Close shuts the room down, notifying whoever is still inside.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.closeLocked()
	r.publishLocked(r.players, Event{
		Type:     RESP_ROOM_DELETED,
		Audience: Everyone(),
		Data:     RoomDeletedNotification{RoomID: r.id},
	})
}

func (r *Room) closeLocked() {
	r.closed = true
	r.turn++
	r.stopTimerLocked()
}

func (r *Room) removeLocked(idx int) bool {
	removed := r.players[idx]
	r.players = slices.Delete(r.players, idx, idx+1)
	delete(r.guessed, removed.ID)

	zap.L().Info(
		"Player left",
		zap.String("room_id", r.id),
		zap.String("player_id", removed.ID),
		zap.Int("players", len(r.players)),
	)

	if len(r.players) == 0 {
		r.closeLocked()
		r.publishLocked([]*Player{removed}, Event{
			Type:     RESP_ROOM_DELETED,
			Audience: Everyone(),
			Data:     RoomDeletedNotification{RoomID: r.id},
		})
		return true
	}

	if removed.IsHost {
		r.promoteHostLocked()
	}

	// 先修正对局状态再广播，保证任何快照里的画手都还在房间里
	var follow []Event
	if r.status == STATUS_ACTIVE {
		switch {
		case len(r.players) < MIN_PLAYERS_TO_START:
			zap.L().Info("Not enough players left, ending game", zap.String("room_id", r.id))
			r.completeLocked()
			follow = append(follow, stateEvent(RESP_GAME_OVER, r.viewLocked(), Everyone()))

		case removed.ID == r.currentDrawer:
			// 画手离开：同一回合换下一个人重新开始，轮换位置就是离开者原来的位置
			next := r.players[idx%len(r.players)]
			r.beginTurnLocked(next.ID)
			follow = append(follow, stateEvent(RESP_ROUND_STARTED, r.viewLocked(), Everyone()))
		}
	}

	if removed.ID == r.currentDrawer && r.status != STATUS_ACTIVE {
		r.currentDrawer = ""
	}

	r.publishLocked(r.players, stateEvent(RESP_ROOM_UPDATED, r.viewLocked(), Everyone()))
	r.publishLocked(r.players, follow...)

	return false
}

// promoteHostLocked gives the host flag to the earliest joined player.
func (r *Room) promoteHostLocked() {
	var next *Player
	for _, p := range r.players {
		if p.IsHost {
			return
		}
		if next == nil || p.seq < next.seq {
			next = p
		}
	}

	if next != nil {
		next.IsHost = true
		zap.L().Info(
			"Host reassigned",
			zap.String("room_id", r.id),
			zap.String("player_id", next.ID),
		)
	}
}

func (r *Room) playerLocked(playerID string) *Player {
	if idx := r.indexLocked(playerID); idx >= 0 {
		return r.players[idx]
	}
	return nil
}

func (r *Room) indexLocked(playerID string) int {
	return slices.IndexFunc(r.players, func(p *Player) bool {
		return p.ID == playerID
	})
}

func (r *Room) playerByTransportLocked(transport string) *Player {
	if transport == "" {
		return nil
	}
	for _, p := range r.players {
		if p.Transport == transport {
			return p
		}
	}
	return nil
}

func (r *Room) hostNameLocked() string {
	for _, p := range r.players {
		if p.IsHost {
			return p.Name
		}
	}
	return ""
}

func (r *Room) playerViewsLocked() []PlayerView {
	views := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		views = append(views, p.view())
	}
	return views
}

func (r *Room) viewLocked() RoomView {
	return RoomView{
		ID:             r.id,
		Name:           r.name,
		CreatedAt:      r.createdAt,
		Status:         r.status,
		HostName:       r.hostNameLocked(),
		MaxPlayers:     r.maxPlayers,
		MaxRounds:      r.maxRounds,
		CurrentRound:   r.currentRound,
		CurrentDrawer:  r.currentDrawer,
		CurrentWord:    r.currentWord,
		Players:        r.playerViewsLocked(),
		RoundStartedAt: timePtr(r.roundStartedAt),
		RoundEndsAt:    timePtr(r.roundEndsAt),
		GameStartedAt:  timePtr(r.gameStartedAt),
		GameEndedAt:    timePtr(r.gameEndedAt),
	}
}

// publishLocked renders every event for every recipient and hands the result
// to the outbox. It runs under the room lock, which keeps the delivery order
// of a room identical to the order of its state changes.
func (r *Room) publishLocked(recipients []*Player, events ...Event) {
	if r.outbox == nil {
		return
	}

	for _, ev := range events {
		for _, p := range recipients {
			resp, ok := Render(ev, p.ID)
			if !ok {
				continue
			}
			r.outbox.Send(p.Transport, resp)
		}
	}
}

// TransportOf returns the connection playerID is currently bound to.
func (r *Room) TransportOf(playerID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p := r.playerLocked(playerID); p != nil {
		return p.Transport, true
	}
	return "", false
}
