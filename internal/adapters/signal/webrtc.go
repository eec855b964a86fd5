package signal

import (
	"github.com/dkeye/Nexus/internal/app"
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

type relayPayload struct {
	Offer     core.Opaque         `json:"offer,omitempty"`
	Answer    core.Opaque         `json:"answer,omitempty"`
	Candidate core.Opaque         `json:"candidate,omitempty"`
	To        domain.ConnectionID `json:"to"`
}

func (p relayPayload) blob(kind app.SignalKind) core.Opaque {
	switch kind {
	case app.SignalOffer:
		return p.Offer
	case app.SignalAnswer:
		return p.Answer
	default:
		return p.Candidate
	}
}

type togglePayload struct {
	RoomID  domain.RoomID `json:"roomId"`
	Enabled bool          `json:"enabled"`
}

// handleRelay forwards offer/answer/ice-candidate to the named peer without
// reading the blob. An absent peer is not reported back.
func (ctl *SignalWSController) handleRelay(sid domain.ConnectionID, env core.Envelope) {
	kind, err := app.ParseSignalKind(env.Event)
	if err != nil {
		return
	}
	var p relayPayload
	if !ctl.decode(sid, env, &p) {
		return
	}
	if p.To == "" {
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Str("event", env.Event).Msg("relay without destination")
		return
	}
	ctl.Orch.Relay.Relay(kind, p.blob(kind), sid, p.To)
}

func (ctl *SignalWSController) handleToggle(sid domain.ConnectionID, env core.Envelope, video bool) {
	var p togglePayload
	if !ctl.decode(sid, env, &p) {
		return
	}
	kind := app.MediaAudio
	if video {
		kind = app.MediaVideo
	}
	ctl.Orch.Relay.ToggleMedia(kind, p.RoomID, sid, p.Enabled)
}
