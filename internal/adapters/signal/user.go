package signal

import (
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleJoinUserRoom is the identify step: it binds the connection to an
// account and subscribes it to that account's notifications.
func (ctl *SignalWSController) handleJoinUserRoom(sid domain.ConnectionID, env core.Envelope) {
	var raw string
	if !ctl.decode(sid, env, &raw) {
		return
	}
	account, err := domain.ParseAccountID(raw)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad account id")
		ctl.sendError(sid, err)
		return
	}
	ctl.Orch.Identify(sid, account)
}

func (ctl *SignalWSController) handleWhoAmI(sid domain.ConnectionID) {
	snap, ok := ctl.Orch.Registry.Snapshot(sid)
	if !ok {
		return
	}
	ctl.send(sid, domain.EventWhoAmI, snap)
}
