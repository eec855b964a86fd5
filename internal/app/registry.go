package app

import (
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Account     domain.AccountID
	ClientToken string
	Rooms       map[domain.RoomID]struct{}
	Signal      core.SignalConnection
}

// ConnSnapshot is a read-only view of one registered connection.
type ConnSnapshot struct {
	ID          domain.ConnectionID `json:"id"`
	Account     domain.AccountID    `json:"account,omitempty"`
	ClientToken string              `json:"-"`
	Rooms       []domain.RoomID     `json:"rooms"`
}

// Registry is the single source of truth for live connections: their
// outbound endpoint, optional account and room memberships.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*connEntry

	codec  core.Codec
	policy Policy
}

func NewRegistry(codec core.Codec, policy Policy) *Registry {
	if codec == nil {
		codec = core.JSONCodec{}
	}
	if policy == nil {
		policy = DropPolicy{}
	}
	return &Registry{
		conns:  make(map[domain.ConnectionID]*connEntry),
		codec:  codec,
		policy: policy,
	}
}

func (r *Registry) Codec() core.Codec { return r.codec }

// Register creates an empty record for sid bound to its outbound endpoint.
func (r *Registry) Register(sid domain.ConnectionID, signal core.SignalConnection, clientToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[sid] = &connEntry{
		ClientToken: clientToken,
		Rooms:       make(map[domain.RoomID]struct{}),
		Signal:      signal,
	}
	log.Info().Str("module", "app.registry").Str("conn", string(sid)).Str("client", clientToken).Msg("registered connection")
}

// Identify binds sid to account, last write wins. It returns the account
// previously held, if any, so callers can move the notification subscription.
func (r *Registry) Identify(sid domain.ConnectionID, account domain.AccountID) (domain.AccountID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return "", false
	}
	prev := e.Account
	e.Account = account
	log.Info().Str("module", "app.registry").Str("conn", string(sid)).Str("account", string(account)).Msg("identified connection")
	return prev, true
}

func (r *Registry) AccountOf(sid domain.ConnectionID) (domain.AccountID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok || e.Account == "" {
		return "", false
	}
	return e.Account, true
}

// Unregister purges the record. Unknown ids are a no-op.
func (r *Registry) Unregister(sid domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[sid]; !ok {
		return false
	}
	delete(r.conns, sid)
	log.Info().Str("module", "app.registry").Str("conn", string(sid)).Msg("unregistered connection")
	return true
}

func (r *Registry) Has(sid domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[sid]
	return ok
}

// RoomsOf returns the rooms sid belongs to, sorted. Empty for unknown ids.
func (r *Registry) RoomsOf(sid domain.ConnectionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok {
		return nil
	}
	return slices.Sorted(maps.Keys(e.Rooms))
}

func (r *Registry) Snapshot(sid domain.ConnectionID) (ConnSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[sid]
	if !ok {
		return ConnSnapshot{}, false
	}
	return ConnSnapshot{
		ID:          sid,
		Account:     e.Account,
		ClientToken: e.ClientToken,
		Rooms:       slices.Sorted(maps.Keys(e.Rooms)),
	}, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func (r *Registry) addRoom(sid domain.ConnectionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return false
	}
	e.Rooms[room] = struct{}{}
	return true
}

func (r *Registry) removeRoom(sid domain.ConnectionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[sid]; ok {
		delete(e.Rooms, room)
	}
}

// TrySend encodes payload and hands it to sid's outbound buffer. It reports
// whether the destination was known and accepted the frame; callers only
// use the result for logging.
func (r *Registry) TrySend(sid domain.ConnectionID, event string, payload any) bool {
	frame, err := core.Encode(r.codec, event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("conn", string(sid)).Msg("encode frame")
		return false
	}
	return r.Deliver(sid, frame)
}

// Deliver hands an already encoded frame to sid.
func (r *Registry) Deliver(sid domain.ConnectionID, frame core.Frame) bool {
	r.mu.RLock()
	e, ok := r.conns[sid]
	r.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "app.registry").Str("conn", string(sid)).Msg("drop frame: unknown connection")
		return false
	}
	err := e.Signal.TrySend(frame)
	if err == nil {
		return true
	}
	if errors.Is(err, domain.ErrBackpressure) {
		switch r.policy.OnBackPressure(sid) {
		case KickConnection:
			log.Warn().Str("module", "app.registry").Str("conn", string(sid)).Msg("outbound buffer full, closing connection")
			e.Signal.Close()
		case DropFrame:
			log.Warn().Str("module", "app.registry").Str("conn", string(sid)).Msg("outbound buffer full, frame dropped")
		}
		return false
	}
	log.Debug().Err(err).Str("module", "app.registry").Str("conn", string(sid)).Msg("drop frame")
	return false
}
