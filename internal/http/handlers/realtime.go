package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/pinpanclub/pinpanclub-backend/internal/platform/ctxutil"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
	"github.com/pinpanclub/pinpanclub-backend/internal/realtime"
)

type RealtimeHandler struct {
	Log      *logger.Logger
	Registry *realtime.Registry

	upgrader websocket.Upgrader
}

func NewRealtimeHandler(log *logger.Logger, registry *realtime.Registry) *RealtimeHandler {
	return &RealtimeHandler{
		Log:      log,
		Registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browser origins are already filtered by the CORS layer;
			// the handshake itself accepts any client
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Stream upgrades the request to a websocket session and serves it
// until disconnect. Anonymous clients are admitted; a valid token
// binds the connection to its user for SendToUser delivery.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID := ""
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		userID = rd.UserID
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := h.Registry.NewConn(userID)
	h.Log.Info("websocket session open", "conn_id", conn.ID, "user_id", userID)
	realtime.ServeWS(h.Log, h.Registry, ws, conn)
	h.Log.Info("websocket session closed", "conn_id", conn.ID)
}

func (h *RealtimeHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Registry.Stats())
}

func (h *RealtimeHandler) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": realtime.Rooms()})
}
