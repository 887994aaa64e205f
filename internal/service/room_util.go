package service

import (
	"encoding/binary"
	"time"

	"pictoblitz-be/internal/service/game"

	"github.com/google/uuid"
)

const (
	ROOM_ID_LENGTH   = 6
	ROOM_ID_ALPHABET = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// 36^6 个 ID 足够用，重试上限只是为了不死循环
	MAX_ROOM_ID_ATTEMPTS = 16
)

// newRoomID draws a 6 character uppercase base36 id from uuid entropy.
func newRoomID() string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])

	buf := make([]byte, ROOM_ID_LENGTH)
	for i := range buf {
		buf[i] = ROOM_ID_ALPHABET[n%uint64(len(ROOM_ID_ALPHABET))]
		n /= uint64(len(ROOM_ID_ALPHABET))
	}

	return string(buf)
}

// 房间可以被回收：已经清空，或者对局结束超过 ttl
func isRoomExpired(room *game.Room, ttl time.Duration, now time.Time) bool {
	if room == nil || room.Closed() || room.PlayerCount() == 0 {
		return true
	}

	if ttl <= 0 || room.Status() != game.STATUS_COMPLETED {
		return false
	}

	return now.Sub(room.GameEndedAt()) > ttl
}
