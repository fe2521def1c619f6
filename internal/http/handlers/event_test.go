package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pinpanclub/pinpanclub-backend/internal/events"
)

func eventTestRouter(t *testing.T) (*gin.Engine, *events.Bus) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := mustTestLogger(t)

	bus := events.NewBus(log, events.Config{})
	bus.Start()
	t.Cleanup(bus.Shutdown)

	h := NewEventHandler(log, bus)
	r := gin.New()
	r.POST("/api/events", h.Publish)
	r.GET("/api/events/history", h.History)
	r.GET("/api/events/subscribers", h.Subscribers)
	return r, bus
}

func TestPublishAcceptsAndRecordsEvent(t *testing.T) {
	r, bus := eventTestRouter(t)

	body := `{"event_type":"store.order.submitted","source_module":"store","payload":{"order_id":"o1"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.EventID == "" {
		t.Fatal("expected an event_id in the response")
	}

	got := bus.History("store.*", 10)
	if len(got) != 1 || got[0].EventID != resp.EventID {
		t.Fatalf("history = %+v, want the accepted event", got)
	}
}

func TestPublishRejectsBadEventType(t *testing.T) {
	r, _ := eventTestRouter(t)

	for _, body := range []string{
		`{"source_module":"store","payload":{}}`,
		`{"event_type":"store.*","source_module":"store"}`,
		`{"event_type":"store order","source_module":"store"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/events", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d for %s, want 400", rec.Code, body)
		}
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	r, _ := eventTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events/history?limit=zero", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSubscribersCounts(t *testing.T) {
	r, bus := eventTestRouter(t)
	bus.Subscribe(staticSub{pattern: "wallet.*"})
	bus.Subscribe(staticSub{pattern: "wallet.*"})

	req := httptest.NewRequest(http.MethodGet, "/api/events/subscribers", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Subscribers map[string]int `json:"subscribers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Subscribers["wallet.*"] != 2 {
		t.Fatalf("subscribers = %v, want 2 on wallet.*", body.Subscribers)
	}
}

type staticSub struct{ pattern string }

func (s staticSub) Pattern() string { return s.pattern }

func (s staticSub) Handle(_ context.Context, _ events.Event) error { return nil }
