package game

import (
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type delivery struct {
	transport string
	resp      ResponseWrapper
}

// recordingOutbox keeps everything a room publishes, in order.
type recordingOutbox struct {
	mu   sync.Mutex
	sent []delivery
}

func (o *recordingOutbox) Send(transport string, resp ResponseWrapper) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, delivery{transport: transport, resp: resp})
}

func (o *recordingOutbox) For(transport string) []ResponseWrapper {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []ResponseWrapper
	for _, d := range o.sent {
		if d.transport == transport {
			out = append(out, d.resp)
		}
	}
	return out
}

func (o *recordingOutbox) Types(transport string) []string {
	var types []string
	for _, resp := range o.For(transport) {
		types = append(types, resp.RespType)
	}
	return types
}

// Last returns the latest response of respType sent to transport.
func (o *recordingOutbox) Last(transport, respType string) (ResponseWrapper, bool) {
	resps := o.For(transport)
	for i := len(resps) - 1; i >= 0; i-- {
		if resps[i].RespType == respType {
			return resps[i], true
		}
	}
	return ResponseWrapper{}, false
}

func (o *recordingOutbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = nil
}

// timerStub captures scheduled callbacks so tests decide when they fire.
type timerStub struct {
	mu        sync.Mutex
	callbacks []func()
	durations []time.Duration
}

func (s *timerStub) afterFunc(d time.Duration, f func()) *time.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.callbacks = append(s.callbacks, f)
	s.durations = append(s.durations, d)

	// 一个永远不会自己触发的真实计时器，Stop 仍然可用
	return time.AfterFunc(time.Hour, func() {})
}

func (s *timerStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

func (s *timerStub) callback(i int) (func(), time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callbacks[i], s.durations[i]
}

func (s *timerStub) latest() (func(), time.Duration) {
	return s.callback(s.count() - 1)
}

func transportOf(playerID string) string {
	return "conn-" + playerID
}

func identity(playerID string) Identity {
	return Identity{ID: playerID, Name: playerID + "-name"}
}

type testRoom struct {
	*Room
	outbox *recordingOutbox
	timers *timerStub
}

type roomOption func(*RoomParams)

func withCapacity(n int) roomOption {
	return func(p *RoomParams) { p.MaxPlayers = n }
}

func withRounds(n int) roomOption {
	return func(p *RoomParams) { p.MaxRounds = n }
}

func withSettings(s Settings) roomOption {
	return func(p *RoomParams) { p.Settings = s }
}

func withWords(wb *WordBank) roomOption {
	return func(p *RoomParams) { p.Words = wb }
}

// newTestRoom builds a room hosted by "alice" with the remaining ids joined in
// order. The first player picked at game start is always index 0.
func newTestRoom(t *testing.T, others []string, opts ...roomOption) *testRoom {
	t.Helper()

	outbox := &recordingOutbox{}
	timers := &timerStub{}

	params := RoomParams{
		ID:         "ROOM01",
		Name:       "test room",
		MaxPlayers: 8,
		MaxRounds:  3,
		Creator:    identity("alice"),
		Transport:  transportOf("alice"),
		Outbox:     outbox,
	}
	for _, opt := range opts {
		opt(&params)
	}

	room := NewRoom(params)
	room.afterFunc = timers.afterFunc
	room.randIntN = func(int) int { return 0 }

	for _, id := range others {
		require.NoError(t, room.Join(identity(id), transportOf(id)))
	}
	outbox.Reset()

	return &testRoom{Room: room, outbox: outbox, timers: timers}
}

// secretWord peeks at the word being drawn.
func (tr *testRoom) secretWord() string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.Room.currentWord
}

func (tr *testRoom) lines() []Segment {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return slices.Clone(tr.Room.lines)
}

func (tr *testRoom) messages() []Message {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return slices.Clone(tr.Room.messages)
}

// roundEndsAt is zero when no timer is running.
func (tr *testRoom) roundEndsAt() time.Time {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.Room.roundEndsAt
}

func bankHas(wb *WordBank, word string) bool {
	return slices.Contains(wb.words, strings.ToLower(strings.TrimSpace(word)))
}

func (tr *testRoom) player(id string) PlayerView {
	for _, p := range tr.Snapshot().Players {
		if p.ID == id {
			return p
		}
	}
	return PlayerView{}
}

func (tr *testRoom) host() string {
	host := ""
	for _, p := range tr.Snapshot().Players {
		if p.IsHost {
			host = p.ID
		}
	}
	return host
}

// checkInvariants asserts what must hold at every observable point.
func (tr *testRoom) checkInvariants(t *testing.T) {
	t.Helper()

	snap := tr.Snapshot()
	require.LessOrEqual(t, len(snap.Players), snap.MaxPlayers)

	if len(snap.Players) > 0 {
		hosts := 0
		for _, p := range snap.Players {
			if p.IsHost {
				hosts++
			}
		}
		require.Equal(t, 1, hosts, "exactly one host")
	}

	if snap.Status == STATUS_ACTIVE {
		found := false
		for _, p := range snap.Players {
			found = found || p.ID == snap.CurrentDrawer
		}
		require.True(t, found, "drawer %q must be a member", snap.CurrentDrawer)
	}
}

func testSegment() Segment {
	return Segment{
		Start: Point{X: 1, Y: 2},
		End:   Point{X: 3, Y: 4},
		Color: "#000000",
		Width: 4,
	}
}
