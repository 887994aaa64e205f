package game

import "go.uber.org/zap"

// armTimerLocked schedules the time-up for the turn that just began. Each
// callback carries the turn it was armed for and does nothing once the room
// has moved on, so a late timer can never advance a turn twice.
func (r *Room) armTimerLocked() {
	r.stopTimerLocked()

	d := r.settings.RoundDuration
	if d <= 0 {
		return
	}

	gen := r.turn
	r.roundEndsAt = r.roundStartedAt.Add(d)
	r.timer = r.afterFunc(d, func() {
		r.expire(gen)
	})
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// expire reveals the word and schedules the advance after the grace delay.
func (r *Room) expire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || gen != r.turn || r.status != STATUS_ACTIVE || r.turnOver {
		return
	}

	r.turnOver = true
	r.roundEndsAt = r.now()

	zap.L().Info(
		"Round time up",
		zap.String("room_id", r.id),
		zap.Int("round", r.currentRound),
	)

	r.publishLocked(r.players, Event{
		Type:     RESP_ROUND_TIME_UP,
		Audience: Everyone(),
		Data: RoundTimeUpNotification{
			Round:    r.currentRound,
			DrawerID: r.currentDrawer,
			Word:     r.currentWord,
		},
	})

	r.timer = r.afterFunc(r.settings.GraceDelay, func() {
		r.advanceAfterGrace(gen)
	})
}

func (r *Room) advanceAfterGrace(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || gen != r.turn || r.status != STATUS_ACTIVE {
		return
	}

	r.timer = nil
	r.advanceLocked()
}
