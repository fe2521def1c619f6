package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pinpanclub/pinpanclub-backend/internal/events"
	httpx "github.com/pinpanclub/pinpanclub-backend/internal/http"
	"github.com/pinpanclub/pinpanclub-backend/internal/notify"
	"github.com/pinpanclub/pinpanclub-backend/internal/observability"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

// App owns the one bus and one registry of the process and hands them
// to every module explicitly; nothing in the codebase reaches for a
// global.
type App struct {
	Log      *logger.Logger
	Cfg      Config
	Bus      *events.Bus
	Registry *realtime.Registry
	Emitter  *notify.Emitter
	Server   *httpx.Server

	pusher       notify.Pusher
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig()

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "pinpanclub-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	bus := events.NewBus(log, events.Config{
		HistoryCapacity: cfg.BusHistoryCapacity,
		MaxConcurrent:   cfg.BusMaxConcurrent,
		HandlerTimeout:  cfg.BusHandlerTimeout,
	})
	registry := realtime.NewRegistry(log, cfg.ClientQueueSize)

	var pusher notify.Pusher = notify.NoopPusher{}
	if cfg.RedisAddr != "" {
		p, perr := notify.NewRedisPusher(log)
		if perr != nil {
			log.Warn("push queue unavailable; continuing without push", "error", perr)
		} else {
			pusher = p
		}
	}

	emitter := notify.NewEmitter(log, registry, pusher)
	notify.RegisterBridges(bus, emitter)

	handlerset := wireHandlers(log, bus, registry)
	middleware := wireMiddleware(log, cfg)
	server := wireRouter(log, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Bus:          bus,
		Registry:     registry,
		Emitter:      emitter,
		Server:       server,
		pusher:       pusher,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Start() {
	if a == nil {
		return
	}
	a.Bus.Start()
}

func (a *App) Run(addr string) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Bus.Shutdown()
	if closer, ok := a.pusher.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
