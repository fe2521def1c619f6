package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

const (
	// per-frame send bound; a stalled client trips this instead of
	// blocking the room
	writeWait = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4096
)

// clientFrame is the only client->server shape: room membership
// commands.
type clientFrame struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// ServeWS registers conn against the registry and pumps frames over ws
// until the client disconnects or a send fails. It blocks for the
// lifetime of the connection (call it from the HTTP handler goroutine).
func ServeWS(log *logger.Logger, registry *Registry, ws *websocket.Conn, conn *Conn) {
	log = log.With("conn_id", conn.ID)
	registry.Register(conn)

	go writePump(log, registry, ws, conn)
	readPump(log, registry, ws, conn)
}

func readPump(log *logger.Logger, registry *Registry, ws *websocket.Conn, conn *Conn) {
	defer func() {
		registry.Unregister(conn.ID)
		_ = ws.Close()
	}()

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Warn("bad client frame", "error", err)
			continue
		}
		if !KnownRoom(frame.Room) {
			log.Warn("client referenced unknown room", "room", frame.Room)
			continue
		}
		switch frame.Action {
		case "join":
			registry.JoinRoom(conn.ID, frame.Room)
		case "leave":
			registry.LeaveRoom(conn.ID, frame.Room)
		default:
			log.Warn("unknown client action", "action", frame.Action)
		}
	}
}

func writePump(log *logger.Logger, registry *Registry, ws *websocket.Conn, conn *Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		registry.Unregister(conn.ID)
		_ = ws.Close()
	}()

	for {
		select {
		case <-conn.Done():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-conn.Outbound:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(msg); err != nil {
				log.Warn("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
