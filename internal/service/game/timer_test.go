package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedSettings() Settings {
	return Settings{
		RoundDuration: 90 * time.Second,
		GraceDelay:    5 * time.Second,
	}
}

func TestTimer_DisabledWithoutDuration(t *testing.T) {
	tr := newTestRoom(t, []string{"bob"})
	require.NoError(t, tr.StartGame("alice"))

	assert.Zero(t, tr.timers.count())
	assert.True(t, tr.roundEndsAt().IsZero())
}

func TestTimer_ExpiryRevealsWordThenAdvances(t *testing.T) {
	tr := newTestRoom(t, []string{"bob", "carol"}, withSettings(timedSettings()))
	require.NoError(t, tr.StartGame("alice"))
	require.Equal(t, 1, tr.timers.count())
	assert.False(t, tr.roundEndsAt().IsZero())

	expire, d := tr.timers.latest()
	assert.Equal(t, 90*time.Second, d)

	word := tr.secretWord()
	tr.outbox.Reset()
	expire()

	for _, id := range []string{"alice", "bob", "carol"} {
		up, ok := tr.outbox.Last(transportOf(id), RESP_ROUND_TIME_UP)
		require.True(t, ok, id)
		n := up.Data.(RoundTimeUpNotification)
		assert.Equal(t, word, n.Word)
		assert.Equal(t, 1, n.Round)
		assert.Equal(t, "alice", n.DrawerID)
	}

	// 揭晓之后到下一回合之前，不能再画；说话可以，但不计分
	assert.ErrorIs(t, tr.Draw(transportOf("alice"), testSegment()), ErrTurnOver)
	require.NoError(t, tr.SubmitGuess("bob", word))
	assert.Zero(t, tr.player("bob").Score)
	for _, id := range []string{"alice", "bob", "carol"} {
		resp, ok := tr.outbox.Last(transportOf(id), RESP_NEW_MESSAGE)
		require.True(t, ok, id)
		assert.False(t, resp.Data.(Message).IsCorrect)
	}
	assert.Equal(t, 1, tr.Snapshot().CurrentRound)

	require.Equal(t, 2, tr.timers.count())
	advance, grace := tr.timers.latest()
	assert.Equal(t, 5*time.Second, grace)

	advance()

	snap := tr.Snapshot()
	assert.Equal(t, 2, snap.CurrentRound)
	assert.Equal(t, "bob", snap.CurrentDrawer)
	assert.Equal(t, 3, tr.timers.count(), "new turn arms a new timer")
}

func TestTimer_StaleExpiryIsIgnored(t *testing.T) {
	tr := newTestRoom(t, []string{"bob"}, withSettings(timedSettings()))
	require.NoError(t, tr.StartGame("alice"))
	stale, _ := tr.timers.latest()

	require.NoError(t, tr.NextRound())
	tr.outbox.Reset()

	stale()

	assert.Empty(t, tr.outbox.For(transportOf("alice")))
	assert.Equal(t, 2, tr.Snapshot().CurrentRound)
	assert.NoError(t, tr.SubmitGuess("alice", "still open"))
}

func TestTimer_StaleGraceIsIgnored(t *testing.T) {
	tr := newTestRoom(t, []string{"bob", "carol"}, withSettings(timedSettings()), withRounds(10))
	require.NoError(t, tr.StartGame("alice"))

	expire, _ := tr.timers.latest()
	expire()
	advance, _ := tr.timers.latest()

	// 宽限期内画手手动进入下一回合
	require.NoError(t, tr.NextRound())
	advance()

	assert.Equal(t, 2, tr.Snapshot().CurrentRound)
	assert.Equal(t, "bob", tr.Snapshot().CurrentDrawer)
}

func TestTimer_RaceWithDrawerAdvancesOnce(t *testing.T) {
	for i := range 50 {
		tr := newTestRoom(t, []string{"bob", "carol"}, withSettings(timedSettings()), withRounds(10))
		require.NoError(t, tr.StartGame("alice"))

		expire, _ := tr.timers.latest()
		expire()
		advance, _ := tr.timers.latest()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			advance()
		}()
		go func() {
			defer wg.Done()
			// 输掉竞争时画手已经换人，请求会被拒绝
			_ = tr.NextRoundBy("alice")
		}()
		wg.Wait()

		assert.Equal(t, 2, tr.Snapshot().CurrentRound, "iteration %d", i)
		tr.checkInvariants(t)
	}
}

func TestTimer_LastRoundExpiryEndsGame(t *testing.T) {
	tr := newTestRoom(t, []string{"bob"}, withSettings(timedSettings()), withRounds(1))
	require.NoError(t, tr.StartGame("alice"))

	expire, _ := tr.timers.latest()
	expire()
	advance, _ := tr.timers.latest()
	advance()

	assert.Equal(t, STATUS_COMPLETED, tr.Status())
	_, ok := tr.outbox.Last(transportOf("bob"), RESP_GAME_OVER)
	assert.True(t, ok)
}

func TestTimer_ClosedRoomIgnoresCallbacks(t *testing.T) {
	tr := newTestRoom(t, []string{"bob"}, withSettings(timedSettings()))
	require.NoError(t, tr.StartGame("alice"))
	expire, _ := tr.timers.latest()

	tr.Close()
	tr.outbox.Reset()
	expire()

	assert.Empty(t, tr.outbox.For(transportOf("alice")))
}
