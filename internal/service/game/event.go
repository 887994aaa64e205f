package game

import "slices"

type audienceKind int

const (
	audienceEveryone audienceKind = iota
	audienceOnly
	audienceAllBut
)

// Audience selects which room members receive an event.
type Audience struct {
	kind audienceKind
	ids  []string
}

func Everyone() Audience {
	return Audience{kind: audienceEveryone}
}

func Only(ids ...string) Audience {
	return Audience{kind: audienceOnly, ids: ids}
}

func AllBut(ids ...string) Audience {
	return Audience{kind: audienceAllBut, ids: ids}
}

func (a Audience) Includes(playerID string) bool {
	switch a.kind {
	case audienceOnly:
		return slices.Contains(a.ids, playerID)
	case audienceAllBut:
		return !slices.Contains(a.ids, playerID)
	default:
		return true
	}
}

// Event is something a room operation produced. Data is sent as is unless
// view is set, in which case every viewer gets its own payload.
type Event struct {
	Type     string
	Audience Audience
	Data     any

	view func(viewerID string) any
}

// Outbox delivers a rendered response to a single connection.
type Outbox interface {
	Send(transport string, resp ResponseWrapper)
}

// Render returns what viewerID receives for ev, if anything.
func Render(ev Event, viewerID string) (ResponseWrapper, bool) {
	if !ev.Audience.Includes(viewerID) {
		return ResponseWrapper{}, false
	}

	data := ev.Data
	if ev.view != nil {
		data = ev.view(viewerID)
	}

	return WrapResponse(ev.Type, data), true
}

// stateEvent wraps a room snapshot. The secret word is kept only for the
// drawer until the game is over.
func stateEvent(respType string, snap RoomView, audience Audience) Event {
	return Event{
		Type:     respType,
		Audience: audience,
		view: func(viewerID string) any {
			v := snap
			if v.Status != STATUS_COMPLETED && viewerID != v.CurrentDrawer {
				v.CurrentWord = ""
			}
			return v
		},
	}
}

// guessEvents decides who sees a guess. A wrong guess is public. A correct
// guess is only shown verbatim to its author and the drawer; everybody gets a
// word-free notification instead.
func guessEvents(msg Message, drawerID string, players []PlayerView) []Event {
	if !msg.IsCorrect {
		return []Event{{
			Type:     RESP_NEW_MESSAGE,
			Audience: Everyone(),
			Data:     msg,
		}}
	}

	return []Event{
		{
			Type:     RESP_NEW_MESSAGE,
			Audience: Only(msg.UserID, drawerID),
			Data:     msg,
		},
		{
			Type:     RESP_CORRECT_GUESS,
			Audience: Everyone(),
			Data: CorrectGuessNotification{
				GuesserID:   msg.UserID,
				GuesserName: msg.Sender,
				DrawerID:    drawerID,
				Players:     players,
			},
		},
	}
}
