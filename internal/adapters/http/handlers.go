package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dkeye/Nexus/internal/adapters/rtc"
	"github.com/dkeye/Nexus/internal/app/orch"
	"github.com/dkeye/Nexus/internal/config"
	"github.com/dkeye/Nexus/internal/core"
	"github.com/dkeye/Nexus/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type handlers struct {
	orch *orch.Orchestrator
	cfg  *config.Config
}

type NotifyRequest struct {
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}

type RoomResponse struct {
	ID       domain.RoomID         `json:"id"`
	Capacity int                   `json:"capacity"`
	Members  []domain.ConnectionID `json:"members"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": h.orch.Registry.Count(),
		"time":        time.Now().Unix(),
	})
}

func (h *handlers) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.Rooms.List()})
}

func (h *handlers) getRoom(c *gin.Context) {
	room, ok := h.orch.Rooms.Room(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrorMessage(domain.ErrRoomNotFound)})
		return
	}
	c.JSON(http.StatusOK, RoomResponse{
		ID:       room.ID(),
		Capacity: room.Capacity(),
		Members:  room.Members(),
	})
}

func (h *handlers) iceServers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"iceServers": rtc.Configuration(h.cfg.ICE.Servers).ICEServers})
}

// notify lets services outside this process reach a user's live connections.
func (h *handlers) notify(c *gin.Context) {
	account, err := domain.ParseAccountID(c.Param("accountId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification"})
		return
	}
	if domain.IsProtocolEvent(req.Event) {
		log.Warn().Str("module", "adapters.http").Str("account", string(account)).Str("event", req.Event).Msg("notify with reserved event rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "reserved event"})
		return
	}
	var payload any
	if len(req.Data) > 0 {
		payload = core.Opaque(req.Data)
		// Other wire formats need the body re-encoded by their codec.
		if h.orch.Registry.Codec().Name() != core.FormatJSON {
			var v any
			if err := json.Unmarshal(req.Data, &v); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification data"})
				return
			}
			payload = v
		}
	}
	delivered := h.orch.Notifier.Notify(account, req.Event, payload)
	log.Info().Str("module", "adapters.http").Str("account", string(account)).Str("event", req.Event).Int("delivered", delivered).Msg("notify")
	c.JSON(http.StatusAccepted, gin.H{"delivered": delivered})
}

// NotifyAuth requires "Authorization: Bearer <token>" when token is set.
func NotifyAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
