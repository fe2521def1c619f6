package events

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

// Subscriber consumes events whose type matches Pattern. Handle is
// invoked concurrently with other subscribers of the same event; a
// returned error (or panic) is logged and never reaches the publisher.
type Subscriber interface {
	Pattern() string
	Handle(ctx context.Context, evt Event) error
}

// CriticalSubscriber marks a subscriber that mirrors state into systems
// where a swallowed failure could hide a consistency bug (ledgers,
// external boards). Its failures are logged at error level; it still
// never blocks the bus.
type CriticalSubscriber interface {
	Critical() bool
}

type Config struct {
	HistoryCapacity int
	MaxConcurrent   int
	HandlerTimeout  time.Duration
}

const (
	DefaultHistoryCapacity = 1000
	DefaultMaxConcurrent   = 16
	DefaultHandlerTimeout  = 5 * time.Second
)

// Bus is the process-wide mediator between event producers and
// consumers. One instance per process, injected explicitly at wiring
// time; there is no package-level singleton.
type Bus struct {
	log *logger.Logger
	cfg Config

	mu   sync.RWMutex
	subs map[string][]Subscriber

	hist     *history
	running  atomic.Bool
	inflight sync.WaitGroup
}

func NewBus(log *logger.Logger, cfg Config) *Bus {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = DefaultHandlerTimeout
	}
	return &Bus{
		log:  log.With("component", "EventBus"),
		cfg:  cfg,
		subs: make(map[string][]Subscriber),
		hist: newHistory(cfg.HistoryCapacity),
	}
}

func (b *Bus) Start() {
	b.running.Store(true)
	b.log.Info("event bus started")
}

// Shutdown stops accepting publishes and waits for in-flight dispatch
// to drain.
func (b *Bus) Shutdown() {
	b.running.Store(false)
	b.inflight.Wait()
	b.log.Info("event bus stopped")
}

// Subscribe registers sub under its own pattern. Duplicate
// registrations are allowed and each fires independently.
func (b *Bus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pattern := sub.Pattern()
	b.subs[pattern] = append(b.subs[pattern], sub)
	b.log.Debug("subscriber registered", "pattern", pattern)
}

// Unsubscribe removes one registration matching sub's pattern and
// identity; no-op when absent.
func (b *Bus) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	pattern := sub.Pattern()
	list := b.subs[pattern]
	for i, s := range list {
		if s == sub {
			b.subs[pattern] = append(list[:i:i], list[i+1:]...)
			if len(b.subs[pattern]) == 0 {
				delete(b.subs, pattern)
			}
			b.log.Debug("subscriber removed", "pattern", pattern)
			return
		}
	}
}

// Publish records evt in history and dispatches it concurrently to
// every subscription whose pattern matches at publish time. It returns
// once every matched handler has completed, failed, or overrun its
// timeout. Publishing while stopped drops the event with a warning.
func (b *Bus) Publish(ctx context.Context, evt Event) {
	if !b.running.Load() {
		b.log.Warn("publish while bus not running; event dropped",
			"event_type", evt.EventType, "event_id", evt.EventID, "source", evt.SourceModule)
		return
	}
	b.inflight.Add(1)
	defer b.inflight.Done()

	b.hist.Add(evt)

	b.mu.RLock()
	var matched []Subscriber
	for pattern, list := range b.subs {
		if Match(pattern, evt.EventType) {
			matched = append(matched, list...)
		}
	}
	b.mu.RUnlock()

	if len(matched) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(b.cfg.MaxConcurrent)
	for _, sub := range matched {
		sub := sub
		g.Go(func() error {
			b.dispatch(ctx, sub, evt)
			return nil
		})
	}
	_ = g.Wait()
}

// dispatch runs one handler under the per-handler timeout. A handler
// that neither returns nor honors its context within the timeout is
// abandoned so a hung subscriber cannot stall Publish.
func (b *Bus) dispatch(ctx context.Context, sub Subscriber, evt Event) {
	hctx, cancel := context.WithTimeout(ctx, b.cfg.HandlerTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- sub.Handle(hctx, evt)
	}()

	select {
	case err := <-done:
		if err != nil {
			b.logHandlerFailure(sub, evt, err)
		}
	case <-hctx.Done():
		b.log.Error("subscriber timed out; abandoning",
			"pattern", sub.Pattern(), "event_type", evt.EventType, "event_id", evt.EventID,
			"timeout", b.cfg.HandlerTimeout)
	}
}

func (b *Bus) logHandlerFailure(sub Subscriber, evt Event, err error) {
	fields := []interface{}{
		"pattern", sub.Pattern(),
		"event_type", evt.EventType,
		"event_id", evt.EventID,
		"error", err,
	}
	if cs, ok := sub.(CriticalSubscriber); ok && cs.Critical() {
		b.log.Error("critical subscriber failed", fields...)
		return
	}
	b.log.Warn("subscriber failed", fields...)
}

// History returns up to limit of the most recent buffered events,
// optionally filtered by pattern, oldest first.
func (b *Bus) History(pattern string, limit int) []Event {
	return b.hist.Recent(pattern, limit)
}

// Subscribers reports the current registration count per pattern.
func (b *Bus) Subscribers() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int, len(b.subs))
	for pattern, list := range b.subs {
		out[pattern] = len(list)
	}
	return out
}

// Running reports whether the bus currently accepts publishes.
func (b *Bus) Running() bool {
	return b.running.Load()
}
