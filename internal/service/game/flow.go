package game

import (
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StartGame moves a waiting room to its first turn with a random drawer.
func (r *Room) StartGame(requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}

	requester := r.playerLocked(requesterID)
	if requester == nil || !requester.IsHost {
		return ErrNotHost
	}
	if r.status != STATUS_WAITING {
		return ErrInvalidState
	}
	if len(r.players) < MIN_PLAYERS_TO_START {
		return ErrNotEnoughPlayers
	}

	first := r.players[r.randIntN(len(r.players))]

	r.status = STATUS_ACTIVE
	r.currentRound = 1
	r.gameStartedAt = r.now()
	clear(r.usedWords)
	r.beginTurnLocked(first.ID)

	zap.L().Info(
		"Game started",
		zap.String("room_id", r.id),
		zap.String("drawer", first.ID),
		zap.Int("players", len(r.players)),
		zap.Int("max_rounds", r.maxRounds),
	)

	r.publishLocked(r.players, stateEvent(RESP_GAME_STARTED, r.viewLocked(), Everyone()))

	return nil
}

// SubmitGuess records a guess and scores it when it matches the word. Once a
// player has guessed, or the turn's time is up, further messages are still
// logged but never score.
func (r *Room) SubmitGuess(playerID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}

	guesser := r.playerLocked(playerID)
	if guesser == nil {
		return ErrPlayerNotFound
	}
	if r.status != STATUS_ACTIVE {
		return ErrInvalidState
	}
	if playerID == r.currentDrawer {
		return ErrDrawerCannotGuess
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyGuess
	}

	r.nextMsgID++
	msg := Message{
		ID:        r.nextMsgID,
		UserID:    guesser.ID,
		Sender:    guesser.Name,
		Content:   text,
		Timestamp: r.now(),
	}

	switch {
	case r.turnOver:
		// 词已经公布，之后的消息只是聊天，不计分
		r.appendMessageLocked(msg)
		r.publishLocked(r.players, Event{
			Type:     RESP_NEW_MESSAGE,
			Audience: Everyone(),
			Data:     msg,
		})

	case r.guessed[playerID]:
		// 已经猜中的人可能会把词说出来，只给知道答案的人看
		r.appendMessageLocked(msg)
		r.publishLocked(r.players, Event{
			Type:     RESP_NEW_MESSAGE,
			Audience: Only(r.insidersLocked()...),
			Data:     msg,
		})

	default:
		msg.IsCorrect = strings.EqualFold(trimmed, r.currentWord)
		r.appendMessageLocked(msg)

		if msg.IsCorrect {
			// 分数和通知在同一把锁里完成，观察者看不到中间状态
			guesser.Score += CORRECT_GUESS_POINTS
			if drawer := r.playerLocked(r.currentDrawer); drawer != nil {
				drawer.Score += DRAWER_POINTS
			}
			r.guessed[playerID] = true

			zap.L().Info(
				"Correct guess",
				zap.String("room_id", r.id),
				zap.String("player_id", playerID),
				zap.Int("round", r.currentRound),
			)
		}

		r.publishLocked(r.players, guessEvents(msg, r.currentDrawer, r.playerViewsLocked())...)
	}

	return nil
}

// insidersLocked lists who knows the current word: the drawer and everyone
// who already guessed it.
func (r *Room) insidersLocked() []string {
	ids := []string{r.currentDrawer}
	for _, p := range r.players {
		if r.guessed[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// NextRound ends the current turn. After the last round the game completes
// and the room stops accepting game operations.
func (r *Room) NextRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}

	switch r.status {
	case STATUS_COMPLETED:
		return ErrGameCompleted
	case STATUS_WAITING:
		return ErrInvalidState
	}

	r.advanceLocked()
	return nil
}

// NextRoundBy is NextRound on behalf of a player. While the game runs only the
// current drawer may end the turn, so a request that lost the race against
// the round timer finds a different drawer and is rejected.
func (r *Room) NextRoundBy(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.playerLocked(playerID) == nil {
		return ErrPlayerNotFound
	}

	switch r.status {
	case STATUS_COMPLETED:
		return ErrGameCompleted
	case STATUS_WAITING:
		return ErrInvalidState
	}

	if playerID != r.currentDrawer {
		return ErrNotDrawer
	}

	r.advanceLocked()
	return nil
}

// Draw appends a stroke and echoes it to everybody except its author. While a
// game is running only the current drawer may draw.
func (r *Room) Draw(transport string, seg Segment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	author, err := r.canvasOwnerLocked(transport)
	if err != nil {
		return err
	}

	if r.settings.MaxSegments > 0 && len(r.lines) >= r.settings.MaxSegments {
		return ErrCanvasFull
	}

	seg.DrawerID = author.ID
	r.lines = append(r.lines, seg)

	r.publishLocked(r.players, Event{
		Type:     RESP_DRAW_UPDATE,
		Audience: AllBut(author.ID),
		Data:     seg,
	})

	return nil
}

func (r *Room) ClearCanvas(transport string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.canvasOwnerLocked(transport); err != nil {
		return err
	}

	r.lines = nil

	r.publishLocked(r.players, Event{
		Type:     RESP_CANVAS_CLEARED,
		Audience: Everyone(),
		Data:     struct{}{},
	})

	return nil
}

// canvasOwnerLocked resolves who may touch the canvas through transport.
// In the lobby any member may doodle; during a game only the drawer, and only
// until the turn's time is up.
func (r *Room) canvasOwnerLocked(transport string) (*Player, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}

	p := r.playerByTransportLocked(transport)
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	switch r.status {
	case STATUS_COMPLETED:
		return nil, ErrGameCompleted
	case STATUS_ACTIVE:
		if p.ID != r.currentDrawer {
			return nil, ErrNotDrawer
		}
		if r.turnOver {
			return nil, ErrTurnOver
		}
	}

	return p, nil
}

// advanceLocked is the single turn transition shared by the drawer's
// next_round request and the round timer.
func (r *Room) advanceLocked() {
	if r.currentRound >= r.maxRounds {
		r.completeLocked()

		zap.L().Info(
			"Game over",
			zap.String("room_id", r.id),
			zap.Int("rounds", r.currentRound),
		)

		r.publishLocked(r.players, stateEvent(RESP_GAME_OVER, r.viewLocked(), Everyone()))
		return
	}

	// 轮换按当前成员列表重新计算，中途离开的人自然被跳过
	idx := r.indexLocked(r.currentDrawer)
	next := r.players[(idx+1)%len(r.players)]

	r.currentRound++
	r.beginTurnLocked(next.ID)

	zap.L().Info(
		"Round started",
		zap.String("room_id", r.id),
		zap.Int("round", r.currentRound),
		zap.String("drawer", next.ID),
	)

	r.publishLocked(r.players, stateEvent(RESP_ROUND_STARTED, r.viewLocked(), Everyone()))
}

// beginTurnLocked sets up a fresh turn for drawerID and arms the timer.
func (r *Room) beginTurnLocked(drawerID string) {
	r.turn++
	r.turnOver = false

	r.currentDrawer = drawerID
	r.currentWord = r.words.Draw(r.usedWords)
	r.usedWords[r.currentWord] = struct{}{}

	r.lines = nil
	clear(r.guessed)

	r.roundStartedAt = r.now()
	r.roundEndsAt = time.Time{}

	r.armTimerLocked()
}

func (r *Room) completeLocked() {
	r.turn++
	r.turnOver = true
	r.stopTimerLocked()

	r.status = STATUS_COMPLETED
	r.gameEndedAt = r.now()
	r.roundEndsAt = time.Time{}
}

func (r *Room) appendMessageLocked(msg Message) {
	r.messages = append(r.messages, msg)

	if limit := r.settings.MaxMessages; limit > 0 && len(r.messages) > limit {
		r.messages = slices.Clone(r.messages[len(r.messages)-limit:])
	}
}
