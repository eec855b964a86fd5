package signal

import (
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomID decodes the bare room key payload. create-room may omit it.
func (ctl *SignalWSController) roomID(sid domain.ConnectionID, env core.Envelope, optional bool) (domain.RoomID, bool) {
	if optional && len(env.Data) == 0 {
		return "", true
	}
	var raw string
	if !ctl.decode(sid, env, &raw) {
		return "", false
	}
	id, err := domain.ParseRoomID(raw)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad room id")
		ctl.sendError(sid, err)
		return "", false
	}
	return id, true
}

func (ctl *SignalWSController) handleCreateRoom(sid domain.ConnectionID, env core.Envelope) {
	id, ok := ctl.roomID(sid, env, true)
	if !ok {
		return
	}
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Msg("create-room rate limited")
		ctl.sendError(sid, domain.ErrRateLimited)
		return
	}
	// Failures are reported to the caller by the room manager.
	_, _ = ctl.Orch.Rooms.CreateRoom(sid, id)
}

func (ctl *SignalWSController) handleJoinRoom(sid domain.ConnectionID, env core.Envelope) {
	id, ok := ctl.roomID(sid, env, false)
	if !ok {
		return
	}
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Msg("join-room rate limited")
		ctl.sendError(sid, domain.ErrRateLimited)
		return
	}
	_ = ctl.Orch.Rooms.JoinRoom(sid, id)
}

func (ctl *SignalWSController) handleLeaveRoom(sid domain.ConnectionID, env core.Envelope) {
	id, ok := ctl.roomID(sid, env, false)
	if !ok {
		return
	}
	ctl.Orch.Rooms.LeaveRoom(sid, id)
}
