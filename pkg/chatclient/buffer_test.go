package chatclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func msg(id int64, text string) Message {
	return Message{
		ID:        id,
		Text:      text,
		SenderID:  1,
		ReceiverID: 2,
		CreatedAt: time.Unix(id, 0),
	}
}

func TestBufferUpsertAppends(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(1, "a"))
	b.Upsert(msg(2, "b"))

	got := b.Messages()
	req.Len(got, 2)
	req.Equal("a", got[0].Text)
	req.Equal("b", got[1].Text)
}

func TestBufferUpsertIsIdempotent(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(1, "a"))
	b.Upsert(msg(1, "a"))

	req.Equal(1, b.Len(), "applying the same event twice must equal applying it once")
	req.Equal("a", b.Messages()[0].Text)
}

func TestBufferUpsertReplacesInPlace(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(1, "a"))
	b.Upsert(msg(2, "b"))
	b.Upsert(msg(1, "a-edited"))

	got := b.Messages()
	req.Len(got, 2)
	// Отредактированное сообщение не меняет позицию
	req.Equal("a-edited", got[0].Text)
	req.Equal("b", got[1].Text)
}

func TestBufferRemove(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(1, "a"))
	b.Upsert(msg(2, "b"))
	b.Remove(1)

	got := b.Messages()
	req.Len(got, 1)
	req.Equal("b", got[0].Text)
}

func TestBufferRemoveAbsentIsNoop(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(1, "a"))
	b.Remove(99)

	req.Equal(1, b.Len())
	req.True(b.Contains(1))
}

func TestBufferReset(t *testing.T) {
	req := require.New(t)
	b := NewBuffer()

	b.Upsert(msg(9, "stale"))
	b.Reset([]Message{msg(1, "a"), msg(2, "b")})

	got := b.Messages()
	req.Len(got, 2)
	req.False(b.Contains(9))
	req.Equal("a", got[0].Text)
}
