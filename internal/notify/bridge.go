package notify

import (
	"context"
	"fmt"

	"github.com/pinpanclub/pinpanclub-backend/internal/events"
)

// The bridges subscribe to domain events and route them through the
// emitter, so producer modules never talk to rooms or connections
// directly.

// RegisterBridges wires every bridge into the bus. Called once at
// start-up.
func RegisterBridges(bus *events.Bus, emitter *Emitter) {
	bus.Subscribe(&storeBridge{emitter: emitter})
	bus.Subscribe(&walletBridge{emitter: emitter})
	bus.Subscribe(&accessBridge{emitter: emitter})
	bus.Subscribe(&clubBridge{emitter: emitter})
}

type storeBridge struct {
	emitter *Emitter
}

func (b *storeBridge) Pattern() string { return "store.*" }

func (b *storeBridge) Handle(ctx context.Context, evt events.Event) error {
	switch evt.EventType {
	case "store.order.created":
		b.emitter.OrderSubmitted(ctx, Order{
			OrderID: payloadString(evt, "order_id"),
			UserID:  payloadString(evt, "user_id"),
			Total:   payloadString(evt, "total"),
			Items:   payloadInt(evt, "items"),
		})
	case "store.order.status_changed":
		b.emitter.OrderStatusChanged(ctx, OrderStatus{
			OrderID: payloadString(evt, "order_id"),
			UserID:  payloadString(evt, "user_id"),
			Status:  payloadString(evt, "status"),
		})
	}
	return nil
}

type walletBridge struct {
	emitter *Emitter
}

func (b *walletBridge) Pattern() string { return "wallet.*" }

// Critical: wallet events mirror ledger state; a swallowed failure
// here could hide a balance inconsistency.
func (b *walletBridge) Critical() bool { return true }

func (b *walletBridge) Handle(ctx context.Context, evt events.Event) error {
	if evt.EventType != "wallet.topup" {
		return nil
	}
	userID := payloadString(evt, "user_id")
	if userID == "" {
		return fmt.Errorf("wallet event %s missing user_id", evt.EventID)
	}
	b.emitter.WalletTopUp(ctx, TopUp{
		UserID:  userID,
		Amount:  payloadString(evt, "amount"),
		Balance: payloadString(evt, "balance"),
	})
	return nil
}

type accessBridge struct {
	emitter *Emitter
}

func (b *accessBridge) Pattern() string { return "access.*" }

func (b *accessBridge) Handle(ctx context.Context, evt events.Event) error {
	if evt.EventType != "access.request.updated" {
		return nil
	}
	b.emitter.AccessRequestUpdated(ctx, AccessRequest{
		RequestID: payloadString(evt, "request_id"),
		UserID:    payloadString(evt, "user_id"),
		Status:    payloadString(evt, "status"),
	})
	return nil
}

type clubBridge struct {
	emitter *Emitter
}

func (b *clubBridge) Pattern() string { return "pinpanclub.*" }

func (b *clubBridge) Handle(ctx context.Context, evt events.Event) error {
	switch evt.EventType {
	case "pinpanclub.match.created":
		b.emitter.MatchCreated(ctx, Match{
			MatchID: payloadString(evt, "match_id"),
			PlayerA: payloadString(evt, "player_a"),
			PlayerB: payloadString(evt, "player_b"),
			Table:   payloadString(evt, "table"),
		})
	case "pinpanclub.table.status_changed":
		b.emitter.TableStatusChanged(ctx, TableStatus{
			TableID: payloadString(evt, "table_id"),
			Status:  payloadString(evt, "status"),
		})
	}
	return nil
}

func payloadString(evt events.Event, key string) string {
	if evt.Payload == nil {
		return ""
	}
	if s, ok := evt.Payload[key].(string); ok {
		return s
	}
	return ""
}

func payloadInt(evt events.Event, key string) int {
	if evt.Payload == nil {
		return 0
	}
	switch v := evt.Payload[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		// JSON numbers decode as float64
		return int(v)
	}
	return 0
}
