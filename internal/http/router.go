package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/pinpanclub/pinpanclub-backend/internal/http/handlers"
	httpMW "github.com/pinpanclub/pinpanclub-backend/internal/http/middleware"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	RealtimeHandler *httpH.RealtimeHandler
	EventHandler    *httpH.EventHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("pinpanclub-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.Identify())
	}

	// Realtime
	if cfg.RealtimeHandler != nil {
		api.GET("/realtime/ws", cfg.RealtimeHandler.Stream)
		api.GET("/realtime/stats", cfg.RealtimeHandler.Stats)
		api.GET("/realtime/rooms", cfg.RealtimeHandler.Rooms)
	}

	// Bus surface for producer modules and operators
	if cfg.EventHandler != nil {
		ev := api.Group("/events")
		if cfg.AuthMiddleware != nil {
			ev.Use(cfg.AuthMiddleware.RequireAuth())
		}
		ev.POST("", cfg.EventHandler.Publish)
		ev.GET("/history", cfg.EventHandler.History)
		ev.GET("/subscribers", cfg.EventHandler.Subscribers)
	}

	return r
}
