package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

// PushNote is the envelope handed to the external push-notification
// worker. Delivery is best-effort; a failure here never fails the
// action that produced it.
type PushNote struct {
	UserID string                 `json:"user_id"`
	Type   string                 `json:"type"`
	Text   realtime.LocalizedText `json:"text"`
	Data   map[string]any         `json:"data,omitempty"`
	SentAt time.Time              `json:"sent_at"`
}

type Pusher interface {
	Push(ctx context.Context, note PushNote) error
}

// NoopPusher is used when no push backend is configured.
type NoopPusher struct{}

func (NoopPusher) Push(ctx context.Context, note PushNote) error { return nil }

// RedisPusher queues notes onto a Redis list consumed by the push
// worker process.
type redisPusher struct {
	log   *logger.Logger
	rdb   *goredis.Client
	queue string
}

func NewRedisPusher(log *logger.Logger) (Pusher, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	queue := strings.TrimSpace(os.Getenv("PUSH_QUEUE"))
	if queue == "" {
		queue = "push:queue"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisPusher{
		log:   log.With("component", "RedisPusher"),
		rdb:   rdb,
		queue: queue,
	}, nil
}

func (p *redisPusher) Push(ctx context.Context, note PushNote) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis pusher not initialized")
	}
	raw, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return p.rdb.LPush(ctx, p.queue, raw).Err()
}

func (p *redisPusher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
