package signal

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/dkeye/Nexus/internal/app/orch"
	"github.com/dkeye/Nexus/internal/config"
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

type SignalWSController struct {
	Orch     *orch.Orchestrator
	cfg      config.WSConfig
	limiter  *RoomRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	ctl := &SignalWSController{
		Orch:    o,
		cfg:     cfg.WS,
		limiter: NewRoomRateLimiter(cfg.Rooms.RateLimit, cfg.Rooms.RateInterval),
	}
	ctl.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.WS.AllowedOrigins),
	}
	return ctl
}

// originChecker allows every origin when none are configured.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// WsSignalConn is the outbound half of one websocket. Frames queue on a
// bounded channel drained by writePump.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(conn *websocket.Conn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return domain.ErrConnectionClosed
	}
	select {
	case c.send <- f:
	default:
		return domain.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal upgrades the request and serves the connection until it ends.
// A panic in one connection's pumps resurfaces here, where gin.Recovery
// contains it after the disconnect cascade already ran.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.cfg.ReadLimit > 0 {
		ws.SetReadLimit(ctl.cfg.ReadLimit)
	}

	conn := newWsSignalConn(ws, ctl.cfg.SendBuffer)
	sid := ctl.Orch.Connect(conn, c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("conn", string(sid)).Str("remote", ws.RemoteAddr().String()).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup
	wg.Go(func() { ctl.writePump(ctx, conn) })
	wg.Go(func() {
		defer cancel()
		ctl.readPump(sid, conn)
	})
	wg.Wait()
}

func (ctl *SignalWSController) send(sid domain.ConnectionID, event string, payload any) {
	ctl.Orch.Registry.TrySend(sid, event, payload)
}

func (ctl *SignalWSController) sendError(sid domain.ConnectionID, err error) {
	ctl.send(sid, domain.EventError, domain.ErrorMessage(err))
}
