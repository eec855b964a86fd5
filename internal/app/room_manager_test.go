package app

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Nexus/internal/domain"
)

func TestCreateJoinLeave(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")
	h.connect("b")

	id, err := h.rooms.CreateRoom("a", "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("abc123"), id)

	var created string
	h.payload(t, "a", domain.EventRoomCreated, &created)
	assert.Equal(t, "abc123", created)

	require.NoError(t, h.rooms.JoinRoom("b", "abc123"))

	var joined string
	h.payload(t, "a", domain.EventUserJoined, &joined)
	assert.Equal(t, "b", joined)
	// The joiner is never told about itself.
	assert.Empty(t, h.events(t, "b"))

	assert.Equal(t, []domain.RoomID{"abc123"}, h.reg.RoomsOf("b"))

	assert.True(t, h.rooms.LeaveRoom("b", "abc123"))
	var left string
	h.payload(t, "a", domain.EventUserLeft, &left)
	assert.Equal(t, "b", left)
	assert.Empty(t, h.reg.RoomsOf("b"))
}

func TestCreateRoomGeneratesID(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")

	id, err := h.rooms.CreateRoom("a", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	var created string
	h.payload(t, "a", domain.EventRoomCreated, &created)
	assert.Equal(t, string(id), created)
}

func TestJoinUnknownRoom(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("c")

	err := h.rooms.JoinRoom("c", "nope")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	var msg string
	h.payload(t, "c", domain.EventError, &msg)
	assert.Equal(t, "Room does not exist", msg)
	assert.Empty(t, h.reg.RoomsOf("c"))
}

func TestLastLeaveRemovesRoom(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")
	h.connect("c")

	_, err := h.rooms.CreateRoom("a", "r")
	require.NoError(t, err)
	assert.True(t, h.rooms.LeaveRoom("a", "r"))

	_, ok := h.rooms.Room("r")
	assert.False(t, ok)
	assert.Empty(t, h.rooms.List())
	assert.ErrorIs(t, h.rooms.JoinRoom("c", "r"), domain.ErrRoomNotFound)

	// A fresh create after the room vanished starts a new empty room.
	_, err = h.rooms.CreateRoom("c", "r")
	require.NoError(t, err)
	room, ok := h.rooms.Room("r")
	require.True(t, ok)
	assert.Equal(t, []domain.ConnectionID{"c"}, room.Members())
}

func TestLeaveWithoutMembershipIsNoop(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")
	h.connect("b")
	_, err := h.rooms.CreateRoom("a", "r")
	require.NoError(t, err)
	h.reset()

	assert.False(t, h.rooms.LeaveRoom("b", "r"))
	assert.False(t, h.rooms.LeaveRoom("b", "missing"))
	assert.Empty(t, h.events(t, "a"))
}

func TestEleventhJoinIsRejected(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("m0")
	_, err := h.rooms.CreateRoom("m0", "r")
	require.NoError(t, err)
	for i := 1; i < domain.DefaultRoomCapacity; i++ {
		sid := domain.ConnectionID(fmt.Sprintf("m%d", i))
		h.connect(sid)
		require.NoError(t, h.rooms.JoinRoom(sid, "r"))
	}
	h.reset()

	h.connect("late")
	assert.ErrorIs(t, h.rooms.JoinRoom("late", "r"), domain.ErrRoomFull)

	var msg string
	h.payload(t, "late", domain.EventError, &msg)
	assert.Equal(t, "Room is full", msg)
	assert.Empty(t, h.events(t, "m0"))

	room, ok := h.rooms.Room("r")
	require.True(t, ok)
	assert.Equal(t, domain.DefaultRoomCapacity, room.MemberCount())
}

func TestCreateExistingFullRoom(t *testing.T) {
	h := newHarness(t, nil, 1)
	h.connect("a")
	h.connect("b")
	_, err := h.rooms.CreateRoom("a", "r")
	require.NoError(t, err)

	_, err = h.rooms.CreateRoom("b", "r")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	assert.Equal(t, []string{domain.EventError}, h.events(t, "b"))
}

func TestRejoinIsIdempotent(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")
	h.connect("b")
	_, err := h.rooms.CreateRoom("a", "r")
	require.NoError(t, err)
	require.NoError(t, h.rooms.JoinRoom("b", "r"))
	h.reset()

	require.NoError(t, h.rooms.JoinRoom("b", "r"))
	assert.Empty(t, h.events(t, "a"))

	room, _ := h.rooms.Room("r")
	assert.Equal(t, []domain.ConnectionID{"a", "b"}, room.Members())
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("owner")
	_, err := h.rooms.CreateRoom("owner", "r")
	require.NoError(t, err)

	const joiners = 15
	sids := make([]domain.ConnectionID, joiners)
	for i := range sids {
		sids[i] = domain.ConnectionID(fmt.Sprintf("j%02d", i))
		h.connect(sids[i])
	}

	var ok, full atomic.Int32
	var wg conc.WaitGroup
	for _, sid := range sids {
		wg.Go(func() {
			switch err := h.rooms.JoinRoom(sid, "r"); {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrRoomFull):
				full.Add(1)
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, domain.DefaultRoomCapacity-1, ok.Load())
	assert.EqualValues(t, joiners-(domain.DefaultRoomCapacity-1), full.Load())

	room, _ := h.rooms.Room("r")
	assert.Equal(t, domain.DefaultRoomCapacity, room.MemberCount())
	assert.Len(t, h.conns["owner"].Named(t, h.reg.Codec(), domain.EventUserJoined), domain.DefaultRoomCapacity-1)
}

func TestConcurrentJoinsOnFreshRoom(t *testing.T) {
	h := newHarness(t, nil, 0)
	const clients = 15
	sids := make([]domain.ConnectionID, clients)
	for i := range sids {
		sids[i] = domain.ConnectionID(fmt.Sprintf("c%02d", i))
		h.connect(sids[i])
	}

	var ok, full atomic.Int32
	var wg conc.WaitGroup
	for _, sid := range sids {
		wg.Go(func() {
			_, err := h.rooms.CreateRoom(sid, "r")
			if err == nil {
				ok.Add(1)
			} else if errors.Is(err, domain.ErrRoomFull) {
				full.Add(1)
			}
		})
	}
	wg.Wait()

	assert.EqualValues(t, domain.DefaultRoomCapacity, ok.Load())
	assert.EqualValues(t, clients-domain.DefaultRoomCapacity, full.Load())
}

func TestJoinLeaveNotificationsKeepOrder(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("observer")
	_, err := h.rooms.CreateRoom("observer", "r")
	require.NoError(t, err)

	const members, cycles = 8, 10
	sids := make([]domain.ConnectionID, members)
	for i := range sids {
		sids[i] = domain.ConnectionID(fmt.Sprintf("m%d", i))
		h.connect(sids[i])
	}

	var wg conc.WaitGroup
	for _, sid := range sids {
		wg.Go(func() {
			for range cycles {
				if err := h.rooms.JoinRoom(sid, "r"); err != nil {
					t.Errorf("join %s: %v", sid, err)
					return
				}
				h.rooms.LeaveRoom(sid, "r")
			}
		})
	}
	wg.Wait()

	// Per member, the observer must see joined/left strictly alternating.
	seq := make(map[string][]string)
	for _, env := range h.conns["observer"].Envelopes(t, h.reg.Codec()) {
		if env.Event != domain.EventUserJoined && env.Event != domain.EventUserLeft {
			continue
		}
		var who string
		require.NoError(t, h.reg.Codec().Unmarshal(env.Data, &who))
		seq[who] = append(seq[who], env.Event)
	}
	require.Len(t, seq, members)
	for who, events := range seq {
		require.Len(t, events, 2*cycles, who)
		for i, ev := range events {
			want := domain.EventUserJoined
			if i%2 == 1 {
				want = domain.EventUserLeft
			}
			require.Equal(t, want, ev, "%s event %d", who, i)
		}
	}

	room, ok := h.rooms.Room("r")
	require.True(t, ok)
	assert.Equal(t, []domain.ConnectionID{"observer"}, room.Members())
}

func TestBroadcastToRoomExcludes(t *testing.T) {
	h := newHarness(t, nil, 0)
	h.connect("a")
	h.connect("b")
	h.connect("c")
	_, _ = h.rooms.CreateRoom("a", "r")
	require.NoError(t, h.rooms.JoinRoom("b", "r"))
	require.NoError(t, h.rooms.JoinRoom("c", "r"))
	h.reset()

	n := h.rooms.BroadcastToRoom("r", "custom", map[string]int{"x": 1}, "b")
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"custom"}, h.events(t, "a"))
	assert.Empty(t, h.events(t, "b"))
	assert.Equal(t, []string{"custom"}, h.events(t, "c"))

	assert.Zero(t, h.rooms.BroadcastToRoom("missing", "custom", nil, ""))
}

func TestListRooms(t *testing.T) {
	h := newHarness(t, nil, 4)
	h.connect("a")
	h.connect("b")
	_, _ = h.rooms.CreateRoom("a", "zeta")
	_, _ = h.rooms.CreateRoom("b", "alpha")
	require.NoError(t, h.rooms.JoinRoom("a", "alpha"))

	list := h.rooms.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.RoomID("alpha"), list[0].ID)
	assert.Equal(t, 2, list[0].MemberCount)
	assert.Equal(t, 4, list[0].Capacity)
	assert.Equal(t, domain.RoomID("zeta"), list[1].ID)
}
