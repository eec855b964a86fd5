package core

import (
	"slices"
	"sync"

	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never touches transport resources.
type roomImpl struct {
	id       domain.RoomID
	capacity int

	mu      sync.RWMutex
	members []domain.ConnectionID
	closed  bool
}

func NewRoomService(id domain.RoomID, capacity int) RoomService {
	if capacity <= 0 {
		capacity = domain.DefaultRoomCapacity
	}
	return &roomImpl{
		id:       id,
		capacity: capacity,
		members:  make([]domain.ConnectionID, 0, capacity),
	}
}

func (r *roomImpl) ID() domain.RoomID { return r.id }
func (r *roomImpl) Capacity() int     { return r.capacity }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Members() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.members)
}

func (r *roomImpl) Has(sid domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.members, sid)
}

func (r *roomImpl) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *roomImpl) Add(sid domain.ConnectionID, onAdded func(others []domain.ConnectionID)) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, domain.ErrRoomNotFound
	}
	if slices.Contains(r.members, sid) {
		return false, nil
	}
	if len(r.members) >= r.capacity {
		return false, domain.ErrRoomFull
	}
	others := slices.Clone(r.members)
	r.members = append(r.members, sid)
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(sid)).Int("members", len(r.members)).Msg("member added")
	if onAdded != nil {
		onAdded(others)
	}
	return true, nil
}

func (r *roomImpl) Remove(sid domain.ConnectionID, onRemoved func(remaining []domain.ConnectionID)) (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.members, sid)
	if i < 0 {
		return false, r.closed
	}
	r.members = slices.Delete(r.members, i, i+1)
	if len(r.members) == 0 {
		r.closed = true
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.id)).Str("conn", string(sid)).Int("members", len(r.members)).Msg("member removed")
	if onRemoved != nil && len(r.members) > 0 {
		onRemoved(slices.Clone(r.members))
	}
	return true, r.closed
}

// Each takes the write lock so broadcasts stay ordered with joins and leaves.
func (r *roomImpl) Each(exclude domain.ConnectionID, fn func(sid domain.ConnectionID)) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sid := range r.members {
		if sid == exclude {
			continue
		}
		fn(sid)
		n++
	}
	return n
}
