package realtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"messenger/pkg/logger"
)

type fakeSub struct {
	id   string
	full bool

	mu       sync.Mutex
	payloads [][]byte
}

func newFakeSub(id string) *fakeSub {
	return &fakeSub{id: id}
}

func (f *fakeSub) ID() string { return f.id }

func (f *fakeSub) Send(payload []byte) bool {
	if f.full {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return true
}

func (f *fakeSub) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func startBroker(t *testing.T) *Broker {
	t.Helper()
	b := NewBroker(logger.New("error"))
	go b.Run()
	t.Cleanup(b.Stop)
	return b
}

func TestBrokerPublishToEmptyRoomIsNoop(t *testing.T) {
	b := startBroker(t)

	// Не должно ни паниковать, ни блокироваться
	b.Publish("1:2", []byte("hello"), nil)
}

func TestBrokerJoinIsIdempotent(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	sub := newFakeSub("a")

	b.Join(sub, "1:2")
	b.Join(sub, "1:2")
	b.Publish("1:2", []byte("once"), nil)

	req.Len(sub.received(), 1, "double join must not cause double delivery")
}

func TestBrokerFanOutToAllMembers(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	subA := newFakeSub("a")
	subB := newFakeSub("b")
	subC := newFakeSub("c")

	b.Join(subA, "1:2")
	b.Join(subB, "1:2")
	b.Join(subC, "3:4")

	b.Publish("1:2", []byte("hi"), nil)

	req.Len(subA.received(), 1)
	req.Len(subB.received(), 1)
	req.Empty(subC.received(), "other rooms must not receive the event")
}

func TestBrokerPreservesPublishOrder(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	sub := newFakeSub("a")
	b.Join(sub, "1:2")

	payloads := []string{"m1", "m2", "m3", "m4"}
	for _, p := range payloads {
		b.Publish("1:2", []byte(p), nil)
	}

	got := sub.received()
	req.Len(got, len(payloads))
	for i, p := range payloads {
		req.Equal(p, string(got[i]))
	}
}

func TestBrokerRejectsPublishFromNonMember(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	member := newFakeSub("member")
	outsider := newFakeSub("outsider")

	b.Join(member, "1:2")

	b.Publish("1:2", []byte("spoofed"), outsider)
	req.Empty(member.received(), "origin outside the room must not reach members")

	b.Join(outsider, "1:2")
	b.Publish("1:2", []byte("legit"), outsider)
	req.Len(member.received(), 1)
}

func TestBrokerDetachRemovesFromAllRooms(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	sub := newFakeSub("a")
	witness := newFakeSub("w")

	b.Join(sub, "1:2")
	b.Join(sub, "1:3")
	b.Join(witness, "1:2")

	b.Detach(sub)

	b.Publish("1:2", []byte("x"), nil)
	b.Publish("1:3", []byte("y"), nil)

	req.Empty(sub.received())
	req.Len(witness.received(), 1, "remaining members keep receiving")
}

func TestBrokerDropsSubscriberWithFullBuffer(t *testing.T) {
	req := require.New(t)
	b := startBroker(t)
	stuck := newFakeSub("stuck")
	stuck.full = true
	healthy := newFakeSub("ok")

	b.Join(stuck, "1:2")
	b.Join(healthy, "1:2")

	b.Publish("1:2", []byte("first"), nil)
	// После неудачной доставки подписчик отцеплен
	stuck.full = false
	b.Publish("1:2", []byte("second"), nil)

	req.Empty(stuck.received())
	req.Len(healthy.received(), 2)
}
