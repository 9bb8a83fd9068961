package realtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomKeySymmetry(t *testing.T) {
	req := require.New(t)

	for a := int64(1); a <= 30; a++ {
		for b := int64(1); b <= 30; b++ {
			req.Equal(RoomKey(a, b), RoomKey(b, a), "key must not depend on argument order")
		}
	}
}

func TestRoomKeyInjective(t *testing.T) {
	req := require.New(t)

	// Разные неупорядоченные пары не должны сталкиваться
	seen := make(map[string][2]int64)
	for a := int64(1); a <= 50; a++ {
		for b := a; b <= 50; b++ {
			key := RoomKey(a, b)
			if prev, ok := seen[key]; ok {
				req.Failf("collision", "pairs %v and [%d %d] map to %q", prev, a, b, key)
			}
			seen[key] = [2]int64{a, b}
		}
	}
}

func TestRoomKeySelfRoom(t *testing.T) {
	req := require.New(t)

	req.Equal(RoomKey(7, 7), RoomKey(7, 7))
	for b := int64(1); b <= 20; b++ {
		if b == 7 {
			continue
		}
		req.NotEqual(RoomKey(7, 7), RoomKey(7, b), "self room must differ from any pair room")
	}
}
