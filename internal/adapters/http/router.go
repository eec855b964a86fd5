package http

import (
	"context"

	"github.com/dkeye/Nexus/internal/adapters/signal"
	"github.com/dkeye/Nexus/internal/app/orch"
	"github.com/dkeye/Nexus/internal/config"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// ClientTokenMiddleware keeps a per-browser token in the session cookie so
// log lines of several tabs of one browser can be correlated.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		token, _ := session.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			session.Set(clientTokenKey, token)
			if err := session.Save(); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions("NexusSessions", store))

	h := &handlers{orch: o, cfg: cfg}
	r.GET("/health", h.health)

	ctrl := signal.NewSignalWSController(o, cfg)
	r.GET("/ws", ClientTokenMiddleware(), func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/:id", h.getRoom)
	api.GET("/ice-servers", h.iceServers)
	if cfg.Notify.Token == "" {
		log.Warn().Str("module", "adapters.http").Msg("notify.token is empty, notify endpoint accepts unauthenticated requests")
	}
	api.POST("/accounts/:accountId/notify", NotifyAuth(cfg.Notify.Token), h.notify)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}
