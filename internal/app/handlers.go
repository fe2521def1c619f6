package app

import (
	"github.com/pinpanclub/pinpanclub-backend/internal/events"
	"github.com/pinpanclub/pinpanclub-backend/internal/http"
	httpH "github.com/pinpanclub/pinpanclub-backend/internal/http/handlers"
	httpMW "github.com/pinpanclub/pinpanclub-backend/internal/http/middleware"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Realtime *httpH.RealtimeHandler
	Event    *httpH.EventHandler
}

func wireHandlers(log *logger.Logger, bus *events.Bus, registry *realtime.Registry) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Realtime: httpH.NewRealtimeHandler(log, registry),
		Event:    httpH.NewEventHandler(log, bus),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		AuthMiddleware:  middleware.Auth,
		HealthHandler:   handlers.Health,
		RealtimeHandler: handlers.Realtime,
		EventHandler:    handlers.Event,
	})
}
