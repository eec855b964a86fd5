package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errBadPayload = errors.New("bad payload")

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	msgType := websocket.TextMessage
	if ctl.Orch.Registry.Codec().Binary() {
		msgType = websocket.BinaryMessage
	}

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(ctl.cfg.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(msgType, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

// readPump is the only reader of the connection; inbound events of one
// connection are therefore handled strictly in order.
func (ctl *SignalWSController) readPump(sid domain.ConnectionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("readPump closing")
		ctl.Orch.OnDisconnect(sid)
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(sid, data)
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnectionID, data []byte) {
	env, err := core.Decode(ctl.Orch.Registry.Codec(), data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("bad frame")
		ctl.sendError(sid, errBadPayload)
		return
	}

	switch env.Event {
	case domain.EventCreateRoom:
		ctl.handleCreateRoom(sid, env)
	case domain.EventJoinRoom:
		ctl.handleJoinRoom(sid, env)
	case domain.EventLeaveRoom:
		ctl.handleLeaveRoom(sid, env)
	case domain.EventOffer, domain.EventAnswer, domain.EventICECandidate:
		ctl.handleRelay(sid, env)
	case domain.EventToggleAudio:
		ctl.handleToggle(sid, env, false)
	case domain.EventToggleVideo:
		ctl.handleToggle(sid, env, true)
	case domain.EventJoinUserRoom:
		ctl.handleJoinUserRoom(sid, env)
	case domain.EventWhoAmI:
		ctl.handleWhoAmI(sid)
	case domain.EventPing:
		ctl.handlePing(sid)
	default:
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Str("event", env.Event).Msg("unknown signal")
	}
}

// decode unpacks the event payload into v, answering the sender on failure.
func (ctl *SignalWSController) decode(sid domain.ConnectionID, env core.Envelope, v any) bool {
	if len(env.Data) == 0 {
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Str("event", env.Event).Msg("missing payload")
		ctl.sendError(sid, errBadPayload)
		return false
	}
	if err := ctl.Orch.Registry.Codec().Unmarshal(env.Data, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Str("event", env.Event).Msg("bad payload")
		ctl.sendError(sid, errBadPayload)
		return false
	}
	return true
}
