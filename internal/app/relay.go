package app

import (
	"fmt"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/rs/zerolog/log"
)

// SignalKind is a point-to-point negotiation message.
type SignalKind string

const (
	SignalOffer        SignalKind = domain.EventOffer
	SignalAnswer       SignalKind = domain.EventAnswer
	SignalICECandidate SignalKind = domain.EventICECandidate
)

// payloadKey is the field carrying the opaque blob, both inbound and outbound.
func (k SignalKind) payloadKey() string {
	if k == SignalICECandidate {
		return "candidate"
	}
	return string(k)
}

type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

func (k MediaKind) event() string {
	if k == MediaVideo {
		return domain.EventUserToggleVideo
	}
	return domain.EventUserToggleAudio
}

type MediaToggle struct {
	ConnectionID domain.ConnectionID `json:"connectionId"`
	Enabled      bool                `json:"enabled"`
}

// Relay forwards negotiation payloads by destination identity. Delivery is
// at most once: unknown or gone destinations drop silently.
type Relay struct {
	reg   *Registry
	rooms *RoomManager
}

func NewRelay(reg *Registry, rooms *RoomManager) *Relay {
	return &Relay{reg: reg, rooms: rooms}
}

func (r *Relay) Relay(kind SignalKind, payload core.Opaque, from, to domain.ConnectionID) bool {
	switch kind {
	case SignalOffer, SignalAnswer, SignalICECandidate:
	default:
		log.Warn().Str("module", "app.relay").Str("kind", string(kind)).Msg("unknown signal kind")
		return false
	}
	msg := map[string]any{
		kind.payloadKey(): payload,
		"from":            from,
	}
	ok := r.reg.TrySend(to, string(kind), msg)
	log.Debug().Str("module", "app.relay").Str("kind", string(kind)).Str("from", string(from)).Str("to", string(to)).Bool("delivered", ok).Msg("relay")
	return ok
}

// ToggleMedia tells the other members of room that from switched a track.
func (r *Relay) ToggleMedia(kind MediaKind, room domain.RoomID, from domain.ConnectionID, enabled bool) int {
	return r.rooms.BroadcastToRoom(room, kind.event(), MediaToggle{ConnectionID: from, Enabled: enabled}, from)
}

func ParseSignalKind(event string) (SignalKind, error) {
	switch SignalKind(event) {
	case SignalOffer, SignalAnswer, SignalICECandidate:
		return SignalKind(event), nil
	}
	return "", fmt.Errorf("not a signal event: %q", event)
}
