package orch

import (
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// OnDisconnect tears sid down. Rooms are left first so user-left still
// reaches the remaining members, then the subscription goes, then the record.
// Safe to call more than once.
func (o *Orchestrator) OnDisconnect(sid domain.ConnectionID) {
	rooms := o.Registry.RoomsOf(sid)
	for _, room := range rooms {
		o.Rooms.LeaveRoom(sid, room)
	}
	if account, ok := o.Registry.AccountOf(sid); ok {
		o.Notifier.Unsubscribe(account, sid)
	}
	if o.Registry.Unregister(sid) {
		log.Info().Str("module", "orch").Str("conn", string(sid)).Int("rooms_left", len(rooms)).Msg("disconnected")
	}
}
