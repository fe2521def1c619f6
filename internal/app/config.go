package app

import (
	"time"

	"github.com/pinpanclub/pinpanclub-backend/internal/events"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/envutil"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	JWTSecretKey string

	BusHistoryCapacity int
	BusMaxConcurrent   int
	BusHandlerTimeout  time.Duration

	ClientQueueSize int

	// RedisAddr enables the push-notification queue when set.
	RedisAddr string
}

func LoadConfig() Config {
	return Config{
		Port:               envutil.Str("PORT", "8080"),
		Environment:        envutil.Str("APP_ENV", "development"),
		Version:            envutil.Str("APP_VERSION", "dev"),
		JWTSecretKey:       envutil.Str("JWT_SECRET_KEY", "defaultsecret"),
		BusHistoryCapacity: envutil.Int("BUS_HISTORY_CAPACITY", events.DefaultHistoryCapacity),
		BusMaxConcurrent:   envutil.Int("BUS_MAX_CONCURRENT", events.DefaultMaxConcurrent),
		BusHandlerTimeout:  envutil.Duration("BUS_HANDLER_TIMEOUT", events.DefaultHandlerTimeout),
		ClientQueueSize:    envutil.Int("WS_CLIENT_QUEUE_SIZE", realtime.DefaultQueueSize),
		RedisAddr:          envutil.Str("REDIS_ADDR", ""),
	}
}
