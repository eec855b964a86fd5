package app

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManager owns the room table and enforces membership and capacity.
// Each room has its own lock; the table lock only guards the map.
type RoomManager struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomID]core.RoomService
	capacity int
	reg      *Registry
}

func NewRoomManager(reg *Registry, capacity int) *RoomManager {
	if capacity <= 0 {
		capacity = domain.DefaultRoomCapacity
	}
	return &RoomManager{
		rooms:    make(map[domain.RoomID]core.RoomService),
		capacity: capacity,
		reg:      reg,
	}
}

func (m *RoomManager) Capacity() int { return m.capacity }

// Room returns a live room. Rooms without members are reported as absent.
func (m *RoomManager) Room(id domain.RoomID) (core.RoomService, bool) {
	m.mu.RLock()
	room, ok := m.rooms[id]
	m.mu.RUnlock()
	if !ok || room.Closed() {
		return nil, false
	}
	return room, true
}

func (m *RoomManager) getOrCreate(id domain.RoomID) core.RoomService {
	m.mu.RLock()
	room, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok && !room.Closed() {
		return room
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if room, ok = m.rooms[id]; ok && !room.Closed() {
		return room
	}
	room = core.NewRoomService(id, m.capacity)
	m.rooms[id] = room
	log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room created")
	return room
}

// forget removes room from the table if it is still the registered instance.
func (m *RoomManager) forget(room core.RoomService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.rooms[room.ID()]; ok && cur == room {
		delete(m.rooms, room.ID())
		log.Info().Str("module", "app.rooms").Str("room", string(room.ID())).Msg("room removed")
	}
}

// CreateRoom adds sid to id, creating the room when absent. An empty id gets a
// generated one. Creating an existing room is a join without the user-joined
// fan-out; capacity still applies. The caller receives room-created or error.
func (m *RoomManager) CreateRoom(sid domain.ConnectionID, id domain.RoomID) (domain.RoomID, error) {
	if id == "" {
		id = domain.NewRoomID()
	}
	for {
		room := m.getOrCreate(id)
		added, err := room.Add(sid, nil)
		if errors.Is(err, domain.ErrRoomNotFound) {
			// Emptied between lookup and add; drop the stale instance and retry.
			m.forget(room)
			continue
		}
		if err != nil {
			m.fail(sid, id, err)
			return id, err
		}
		if added {
			m.reg.addRoom(sid, id)
		}
		m.reg.TrySend(sid, domain.EventRoomCreated, id)
		log.Info().Str("module", "app.rooms").Str("conn", string(sid)).Str("room", string(id)).Bool("added", added).Msg("create room")
		return id, nil
	}
}

// JoinRoom admits sid into an existing room and tells every other member.
func (m *RoomManager) JoinRoom(sid domain.ConnectionID, id domain.RoomID) error {
	room, ok := m.Room(id)
	if !ok {
		m.fail(sid, id, domain.ErrRoomNotFound)
		return domain.ErrRoomNotFound
	}
	added, err := room.Add(sid, func(others []domain.ConnectionID) {
		m.fanOut(others, domain.EventUserJoined, sid)
	})
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			m.forget(room)
		}
		m.fail(sid, id, err)
		return err
	}
	if added {
		m.reg.addRoom(sid, id)
	}
	log.Info().Str("module", "app.rooms").Str("conn", string(sid)).Str("room", string(id)).Bool("added", added).Msg("join room")
	return nil
}

// LeaveRoom drops sid from id and tells the remaining members. Absent
// membership is a no-op.
func (m *RoomManager) LeaveRoom(sid domain.ConnectionID, id domain.RoomID) bool {
	m.reg.removeRoom(sid, id)
	m.mu.RLock()
	room, ok := m.rooms[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	removed, closed := room.Remove(sid, func(remaining []domain.ConnectionID) {
		m.fanOut(remaining, domain.EventUserLeft, sid)
	})
	if closed {
		m.forget(room)
	}
	if removed {
		log.Info().Str("module", "app.rooms").Str("conn", string(sid)).Str("room", string(id)).Bool("closed", closed).Msg("leave room")
	}
	return removed
}

// BroadcastToRoom delivers event to every member except exclude.
func (m *RoomManager) BroadcastToRoom(id domain.RoomID, event string, payload any, exclude domain.ConnectionID) int {
	room, ok := m.Room(id)
	if !ok {
		return 0
	}
	frame, err := core.Encode(m.reg.Codec(), event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").Str("room", string(id)).Msg("encode broadcast")
		return 0
	}
	sent := 0
	room.Each(exclude, func(sid domain.ConnectionID) {
		if m.reg.Deliver(sid, frame) {
			sent++
		}
	})
	log.Debug().Str("module", "app.rooms").Str("room", string(id)).Str("event", event).Int("sent_to", sent).Msg("broadcast result")
	return sent
}

// List returns live rooms ordered by id.
func (m *RoomManager) List() []core.RoomInfo {
	m.mu.RLock()
	rooms := make([]core.RoomService, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		n := r.MemberCount()
		if n == 0 {
			continue
		}
		out = append(out, core.RoomInfo{ID: r.ID(), MemberCount: n, Capacity: r.Capacity()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return strings.Compare(string(a.ID), string(b.ID)) })
	return out
}

func (m *RoomManager) fanOut(to []domain.ConnectionID, event string, payload any) {
	frame, err := core.Encode(m.reg.Codec(), event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").Str("event", event).Msg("encode fan-out")
		return
	}
	for _, sid := range to {
		m.reg.Deliver(sid, frame)
	}
}

func (m *RoomManager) fail(sid domain.ConnectionID, id domain.RoomID, err error) {
	log.Info().Err(err).Str("module", "app.rooms").Str("conn", string(sid)).Str("room", string(id)).Msg("room request rejected")
	m.reg.TrySend(sid, domain.EventError, domain.ErrorMessage(err))
}
