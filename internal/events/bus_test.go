package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newRunningBus(t *testing.T, cfg Config) *Bus {
	t.Helper()
	bus := NewBus(mustTestLogger(t), cfg)
	bus.Start()
	t.Cleanup(bus.Shutdown)
	return bus
}

type countingSub struct {
	pattern string
	calls   atomic.Int64

	mu   sync.Mutex
	seen []Event
}

func (s *countingSub) Pattern() string { return s.pattern }

func (s *countingSub) Handle(ctx context.Context, evt Event) error {
	s.calls.Add(1)
	s.mu.Lock()
	s.seen = append(s.seen, evt)
	s.mu.Unlock()
	return nil
}

type failingSub struct {
	pattern string
	panics  bool
}

func (s *failingSub) Pattern() string { return s.pattern }

func (s *failingSub) Handle(ctx context.Context, evt Event) error {
	if s.panics {
		panic("handler blew up")
	}
	return errors.New("handler failed")
}

type blockingSub struct {
	pattern string
	release chan struct{}
}

func (s *blockingSub) Pattern() string { return s.pattern }

func (s *blockingSub) Handle(ctx context.Context, evt Event) error {
	<-s.release
	return nil
}

func TestPublishInvokesEachMatchingSubscriptionOnce(t *testing.T) {
	bus := newRunningBus(t, Config{})

	wildcard := &countingSub{pattern: "pinpanclub.*"}
	exact := &countingSub{pattern: "pinpanclub.match.created"}
	unrelated := &countingSub{pattern: "store.*"}
	bus.Subscribe(wildcard)
	bus.Subscribe(exact)
	bus.Subscribe(unrelated)

	bus.Publish(context.Background(), New("pinpanclub.match.created", "pinpanclub", nil))

	if got := wildcard.calls.Load(); got != 1 {
		t.Fatalf("wildcard subscriber calls = %d, want 1", got)
	}
	if got := exact.calls.Load(); got != 1 {
		t.Fatalf("exact subscriber calls = %d, want 1", got)
	}
	if got := unrelated.calls.Load(); got != 0 {
		t.Fatalf("unrelated subscriber calls = %d, want 0", got)
	}
}

func TestHandlerFailureDoesNotBlockOtherSubscribers(t *testing.T) {
	bus := newRunningBus(t, Config{})

	bus.Subscribe(&failingSub{pattern: "store.*"})
	bus.Subscribe(&failingSub{pattern: "store.*", panics: true})
	healthy := &countingSub{pattern: "store.order.created"}
	bus.Subscribe(healthy)

	bus.Publish(context.Background(), New("store.order.created", "store", nil))

	if got := healthy.calls.Load(); got != 1 {
		t.Fatalf("healthy subscriber calls = %d, want 1", got)
	}
}

func TestLateSubscriptionDoesNotReceiveEarlierEvent(t *testing.T) {
	bus := newRunningBus(t, Config{})

	bus.Publish(context.Background(), New("store.order.created", "store", nil))

	late := &countingSub{pattern: "store.*"}
	bus.Subscribe(late)

	if got := late.calls.Load(); got != 0 {
		t.Fatalf("late subscriber calls = %d, want 0", got)
	}
}

func TestDuplicateRegistrationFiresIndependently(t *testing.T) {
	bus := newRunningBus(t, Config{})

	sub := &countingSub{pattern: "wallet.*"}
	bus.Subscribe(sub)
	bus.Subscribe(sub)

	bus.Publish(context.Background(), New("wallet.topup", "wallet", nil))

	if got := sub.calls.Load(); got != 2 {
		t.Fatalf("duplicate registration calls = %d, want 2", got)
	}
}

func TestUnsubscribeRemovesExactIdentity(t *testing.T) {
	bus := newRunningBus(t, Config{})

	keep := &countingSub{pattern: "wallet.*"}
	drop := &countingSub{pattern: "wallet.*"}
	bus.Subscribe(keep)
	bus.Subscribe(drop)
	bus.Unsubscribe(drop)

	// removing a subscriber that is not registered is a no-op
	bus.Unsubscribe(&countingSub{pattern: "wallet.*"})

	bus.Publish(context.Background(), New("wallet.topup", "wallet", nil))

	if got := keep.calls.Load(); got != 1 {
		t.Fatalf("kept subscriber calls = %d, want 1", got)
	}
	if got := drop.calls.Load(); got != 0 {
		t.Fatalf("removed subscriber calls = %d, want 0", got)
	}
	if got := bus.Subscribers()["wallet.*"]; got != 1 {
		t.Fatalf("subscriber count = %d, want 1", got)
	}
}

func TestPublishWhileStoppedDropsEvent(t *testing.T) {
	bus := NewBus(mustTestLogger(t), Config{})

	sub := &countingSub{pattern: "*"}
	bus.Subscribe(sub)

	bus.Publish(context.Background(), New("store.order.created", "store", nil))

	if got := sub.calls.Load(); got != 0 {
		t.Fatalf("subscriber calls = %d, want 0 (bus stopped)", got)
	}
	if got := len(bus.History("", 10)); got != 0 {
		t.Fatalf("history length = %d, want 0 (dropped event must not be buffered)", got)
	}
}

func TestHistoryBoundEvictsOldestFirst(t *testing.T) {
	bus := newRunningBus(t, Config{HistoryCapacity: 1000})

	for i := 0; i < 1001; i++ {
		evt := New("store.order.created", "store", map[string]any{"seq": i})
		bus.Publish(context.Background(), evt)
	}

	all := bus.History("", 2000)
	if len(all) != 1000 {
		t.Fatalf("history length = %d, want 1000", len(all))
	}
	if got := all[0].Payload["seq"]; got != 1 {
		t.Fatalf("oldest buffered seq = %v, want 1 (seq 0 evicted)", got)
	}
	if got := all[len(all)-1].Payload["seq"]; got != 1000 {
		t.Fatalf("newest buffered seq = %v, want 1000", got)
	}
}

func TestHistoryFilterAndLimit(t *testing.T) {
	bus := newRunningBus(t, Config{})

	for i := 0; i < 3; i++ {
		bus.Publish(context.Background(), New(fmt.Sprintf("store.order.%d", i), "store", nil))
		bus.Publish(context.Background(), New("wallet.topup", "wallet", nil))
	}

	store := bus.History("store.*", 10)
	if len(store) != 3 {
		t.Fatalf("filtered history length = %d, want 3", len(store))
	}
	if store[0].EventType != "store.order.0" || store[2].EventType != "store.order.2" {
		t.Fatalf("filtered history out of order: %s .. %s", store[0].EventType, store[2].EventType)
	}

	limited := bus.History("", 2)
	if len(limited) != 2 {
		t.Fatalf("limited history length = %d, want 2", len(limited))
	}
	if limited[1].EventType != "wallet.topup" {
		t.Fatalf("limited history should end with the newest event, got %s", limited[1].EventType)
	}
}

func TestHungSubscriberDoesNotStallPublish(t *testing.T) {
	bus := newRunningBus(t, Config{HandlerTimeout: 50 * time.Millisecond})

	hung := &blockingSub{pattern: "store.*", release: make(chan struct{})}
	defer close(hung.release)
	healthy := &countingSub{pattern: "store.*"}
	bus.Subscribe(hung)
	bus.Subscribe(healthy)

	start := time.Now()
	bus.Publish(context.Background(), New("store.order.created", "store", nil))
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Fatalf("publish blocked for %v on a hung subscriber", elapsed)
	}
	if got := healthy.calls.Load(); got != 1 {
		t.Fatalf("healthy subscriber calls = %d, want 1", got)
	}
}

func TestSubscribersIntrospection(t *testing.T) {
	bus := newRunningBus(t, Config{})

	bus.Subscribe(&countingSub{pattern: "store.*"})
	bus.Subscribe(&countingSub{pattern: "store.*"})
	bus.Subscribe(&countingSub{pattern: "*"})

	counts := bus.Subscribers()
	if counts["store.*"] != 2 {
		t.Fatalf("store.* count = %d, want 2", counts["store.*"])
	}
	if counts["*"] != 1 {
		t.Fatalf("* count = %d, want 1", counts["*"])
	}
}
