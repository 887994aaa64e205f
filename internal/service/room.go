package service

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"pictoblitz-be/internal/service/dto"
	"pictoblitz-be/internal/service/game"

	"go.uber.org/zap"
)

var ErrIDExhausted = errors.New("could not generate a unique room id")

type RoomServiceOptions struct {
	DefaultMaxPlayers int
	MaxPlayersLimit   int
	DefaultMaxRounds  int
	MaxRoundsLimit    int

	Settings game.Settings
	Words    *game.WordBank

	// 对局结束后房间还保留多久，0 表示只回收空房间
	CompletedRoomTTL time.Duration
	CleanupInterval  time.Duration
}

const (
	DEFAULT_MAX_PLAYERS = 8
	DEFAULT_MAX_ROUNDS  = 3

	DEFAULT_CLEANUP_INTERVAL = time.Minute
)

type RoomService struct {
	state *roomServiceState

	opts   RoomServiceOptions
	outbox game.Outbox

	newID func() string
}

type roomServiceState struct {
	mu sync.RWMutex

	// 从房间 ID 到房间的映射
	rooms map[string]*game.Room

	cleanUpDone chan struct{}
	closeOnce   sync.Once
}

// NewRoomService builds the registry and starts its cleanup loop. Close stops
// the loop.
func NewRoomService(opts RoomServiceOptions, outbox game.Outbox) *RoomService {
	if opts.DefaultMaxPlayers <= 0 {
		opts.DefaultMaxPlayers = DEFAULT_MAX_PLAYERS
	}
	if opts.MaxPlayersLimit < opts.DefaultMaxPlayers {
		opts.MaxPlayersLimit = opts.DefaultMaxPlayers
	}
	if opts.DefaultMaxRounds <= 0 {
		opts.DefaultMaxRounds = DEFAULT_MAX_ROUNDS
	}
	if opts.MaxRoundsLimit < opts.DefaultMaxRounds {
		opts.MaxRoundsLimit = opts.DefaultMaxRounds
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DEFAULT_CLEANUP_INTERVAL
	}
	if opts.Words == nil {
		opts.Words = game.DefaultWordBank()
	}

	rs := &RoomService{
		state: &roomServiceState{
			rooms:       make(map[string]*game.Room),
			cleanUpDone: make(chan struct{}),
		},
		opts:   opts,
		outbox: outbox,
		newID:  newRoomID,
	}

	// 启动一个 goroutine 定期清理过期的房间
	go rs.startCleanupLoop()

	return rs
}

func (rs *RoomService) startCleanupLoop() {
	ticker := time.NewTicker(rs.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.state.cleanUpDone:
			return

		case <-ticker.C:
			rs.cleanup(time.Now())
		}
	}
}

// cleanup evicts every expired room and returns how many were removed.
func (rs *RoomService) cleanup(now time.Time) int {
	var expired []string

	rs.state.mu.RLock()
	for roomID, room := range rs.state.rooms {
		if isRoomExpired(room, rs.opts.CompletedRoomTTL, now) {
			expired = append(expired, roomID)
		}
	}
	rs.state.mu.RUnlock()

	for _, roomID := range expired {
		zap.S().Infof("Room %s expired, cleaning up", roomID)
		rs.Delete(roomID)
	}
	if len(expired) > 0 {
		zap.L().Info(
			"Expired rooms cleaned up",
			zap.Int("removed", len(expired)),
			zap.Int("rooms", rs.Count()),
		)
	}

	return len(expired)
}

func (rs *RoomService) Close() {
	rs.state.closeOnce.Do(func() {
		close(rs.state.cleanUpDone)
	})
}

// CreateRoom registers a waiting room whose host is the requesting identity,
// reachable through transport.
func (rs *RoomService) CreateRoom(req *game.CreateRoomRequest, transport string) (*game.Room, error) {
	maxPlayers := req.MaxPlayers
	if maxPlayers == 0 {
		maxPlayers = rs.opts.DefaultMaxPlayers
	}
	if maxPlayers > rs.opts.MaxPlayersLimit {
		return nil, game.ErrTooManyPlayers
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = rs.opts.DefaultMaxRounds
	}
	if maxRounds > rs.opts.MaxRoundsLimit {
		return nil, game.ErrTooManyRounds
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	roomID := ""
	for range MAX_ROOM_ID_ATTEMPTS {
		candidate := rs.newID()
		if _, taken := rs.state.rooms[candidate]; !taken {
			roomID = candidate
			break
		}
	}
	if roomID == "" {
		zap.L().Error("Room id space exhausted", zap.Int("rooms", len(rs.state.rooms)))
		return nil, ErrIDExhausted
	}

	room := game.NewRoom(game.RoomParams{
		ID:         roomID,
		Name:       req.RoomName,
		MaxPlayers: maxPlayers,
		MaxRounds:  maxRounds,
		Creator:    req.Identity,
		Transport:  transport,
		Settings:   rs.opts.Settings,
		Words:      rs.opts.Words,
		Outbox:     rs.outbox,
	})

	rs.state.rooms[roomID] = room

	zap.L().Info(
		"Room created",
		zap.String("room_id", roomID),
		zap.String("room_name", req.RoomName),
		zap.String("host", req.Identity.ID),
		zap.Int("max_players", maxPlayers),
		zap.Int("max_rounds", maxRounds),
	)

	return room, nil
}

func (rs *RoomService) Get(roomID string) (*game.Room, error) {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	room, ok := rs.state.rooms[roomID]
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// Delete removes the room and shuts it down. Deleting an unknown id does
// nothing.
func (rs *RoomService) Delete(roomID string) {
	rs.state.mu.Lock()
	room, ok := rs.state.rooms[roomID]
	delete(rs.state.rooms, roomID)
	rs.state.mu.Unlock()

	if !ok {
		return
	}

	// 在注册表锁外关闭，房间锁和注册表锁不嵌套
	room.Close()

	zap.L().Info("Room deleted", zap.String("room_id", roomID))
}

// ListJoinable returns the waiting rooms, newest first.
func (rs *RoomService) ListJoinable() []dto.RoomSummary {
	summaries := rs.List()

	joinable := slices.DeleteFunc(summaries, func(s dto.RoomSummary) bool {
		return s.Status != string(game.STATUS_WAITING)
	})

	return joinable
}

// List returns every live room, newest first.
func (rs *RoomService) List() []dto.RoomSummary {
	rooms := rs.snapshot()

	summaries := make([]dto.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		if room.Closed() {
			continue
		}
		summaries = append(summaries, room.Summary())
	}

	slices.SortFunc(summaries, func(a, b dto.RoomSummary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	return summaries
}

// Each calls fn for every registered room. fn runs without the registry lock
// held, so it may call back into the service.
func (rs *RoomService) Each(fn func(room *game.Room)) {
	for _, room := range rs.snapshot() {
		fn(room)
	}
}

func (rs *RoomService) Count() int {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()
	return len(rs.state.rooms)
}

func (rs *RoomService) snapshot() []*game.Room {
	rs.state.mu.RLock()
	defer rs.state.mu.RUnlock()

	rooms := make([]*game.Room, 0, len(rs.state.rooms))
	for _, room := range rs.state.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
