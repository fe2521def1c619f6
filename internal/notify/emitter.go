package notify

import (
	"context"
	"time"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

// Emitter translates typed domain actions into registry deliveries and
// optional push-notification dispatch. Pure routing: no persistence,
// no business rules beyond who sees what.
type Emitter struct {
	log      *logger.Logger
	registry *realtime.Registry
	pusher   Pusher
}

func NewEmitter(log *logger.Logger, registry *realtime.Registry, pusher Pusher) *Emitter {
	if pusher == nil {
		pusher = NoopPusher{}
	}
	return &Emitter{
		log:      log.With("component", "Emitter"),
		registry: registry,
		pusher:   pusher,
	}
}

type Order struct {
	OrderID string
	UserID  string
	Total   string
	Items   int
}

// OrderSubmitted notifies store staff and admins of every new order;
// the buyer sees their own.
func (e *Emitter) OrderSubmitted(ctx context.Context, o Order) {
	msg := realtime.Message{
		Type: "store.order.created",
		Payload: map[string]any{
			"order_id": o.OrderID,
			"user_id":  o.UserID,
			"total":    o.Total,
			"items":    o.Items,
		},
		Text: text("order_submitted", o.OrderID, o.Total),
	}
	e.registry.BroadcastToRoom(realtime.RoomAdmin, msg)
	e.registry.BroadcastToRoom(realtime.RoomStore, msg)
	e.registry.SendToUser(o.UserID, msg)
}

type OrderStatus struct {
	OrderID string
	UserID  string
	Status  string
}

func (e *Emitter) OrderStatusChanged(ctx context.Context, s OrderStatus) {
	msg := realtime.Message{
		Type: "store.order.status_changed",
		Payload: map[string]any{
			"order_id": s.OrderID,
			"user_id":  s.UserID,
			"status":   s.Status,
		},
		Text: text("order_status_changed", s.OrderID, s.Status),
	}
	e.registry.BroadcastToRoom(realtime.RoomAdmin, msg)
	e.registry.SendToUser(s.UserID, msg)
	e.push(ctx, s.UserID, msg)
}

type TopUp struct {
	UserID  string
	Amount  string
	Balance string
}

// WalletTopUp: admins see every top-up, the affected user only their
// own transaction.
func (e *Emitter) WalletTopUp(ctx context.Context, tu TopUp) {
	msg := realtime.Message{
		Type: "wallet.topup",
		Payload: map[string]any{
			"user_id": tu.UserID,
			"amount":  tu.Amount,
			"balance": tu.Balance,
		},
		Text: text("wallet_topup", tu.Amount, tu.Balance),
	}
	e.registry.BroadcastToRoom(realtime.RoomAdmin, msg)
	e.registry.BroadcastToRoom(realtime.RoomWallet, msg)
	e.registry.SendToUser(tu.UserID, msg)
	e.push(ctx, tu.UserID, msg)
}

type AccessRequest struct {
	RequestID string
	UserID    string
	Status    string
}

func (e *Emitter) AccessRequestUpdated(ctx context.Context, ar AccessRequest) {
	msg := realtime.Message{
		Type: "access.request.updated",
		Payload: map[string]any{
			"request_id": ar.RequestID,
			"user_id":    ar.UserID,
			"status":     ar.Status,
		},
		Text: text("access_request_updated", ar.Status),
	}
	e.registry.BroadcastToRoom(realtime.RoomAdmin, msg)
	e.registry.SendToUser(ar.UserID, msg)
	e.push(ctx, ar.UserID, msg)
}

type Match struct {
	MatchID string
	PlayerA string
	PlayerB string
	Table   string
}

func (e *Emitter) MatchCreated(ctx context.Context, m Match) {
	msg := realtime.Message{
		Type: "pinpanclub.match.created",
		Payload: map[string]any{
			"match_id": m.MatchID,
			"player_a": m.PlayerA,
			"player_b": m.PlayerB,
			"table":    m.Table,
		},
		Text: text("match_created", m.PlayerA, m.PlayerB, m.Table),
	}
	e.registry.BroadcastToRoom(realtime.RoomPinPanClub, msg)
}

type TableStatus struct {
	TableID string
	Status  string
}

func (e *Emitter) TableStatusChanged(ctx context.Context, ts TableStatus) {
	msg := realtime.Message{
		Type: "pinpanclub.table.status_changed",
		Payload: map[string]any{
			"table_id": ts.TableID,
			"status":   ts.Status,
		},
		Text: text("table_status_changed", ts.TableID, ts.Status),
	}
	e.registry.BroadcastToRoom(realtime.RoomPinPanClub, msg)
}

// push dispatches a best-effort notification to the affected user. A
// failure is logged, never propagated.
func (e *Emitter) push(ctx context.Context, userID string, msg realtime.Message) {
	if userID == "" || msg.Text == nil {
		return
	}
	note := PushNote{
		UserID: userID,
		Type:   msg.Type,
		Text:   *msg.Text,
		Data:   msg.Payload,
		SentAt: time.Now().UTC(),
	}
	if err := e.pusher.Push(ctx, note); err != nil {
		e.log.Warn("push dispatch failed", "user_id", userID, "type", msg.Type, "error", err)
	}
}
