package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pinpanclub/pinpanclub-backend/internal/events"
	"github.com/pinpanclub/pinpanclub-backend/internal/http/response"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/apierr"
	"github.com/pinpanclub/pinpanclub-backend/internal/platform/logger"
)

// EventHandler is the HTTP producer/introspection surface of the bus,
// used by external sync adapters and operators.
type EventHandler struct {
	Log *logger.Logger
	Bus *events.Bus
}

func NewEventHandler(log *logger.Logger, bus *events.Bus) *EventHandler {
	return &EventHandler{Log: log, Bus: bus}
}

type publishRequest struct {
	EventType    string         `json:"event_type" binding:"required"`
	SourceModule string         `json:"source_module" binding:"required"`
	Payload      map[string]any `json:"payload"`
	Priority     *int           `json:"priority"`
}

func (h *EventHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "bad_request", err))
		return
	}
	if strings.TrimSpace(req.EventType) == "" || strings.ContainsAny(req.EventType, "* ") {
		response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "bad_event_type",
			fmt.Errorf("event_type must be a concrete dot-namespaced name")))
		return
	}

	evt := events.New(req.EventType, req.SourceModule, req.Payload)
	if req.Priority != nil {
		evt.Priority = events.Priority(*req.Priority)
	}
	h.Bus.Publish(c.Request.Context(), evt)

	// the bus never surfaces dispatch failures to producers; accepted
	// means accepted, not delivered
	c.JSON(http.StatusAccepted, gin.H{"event_id": evt.EventID})
}

func (h *EventHandler) History(c *gin.Context) {
	pattern := c.Query("pattern")
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit <= 0 {
			response.RespondAPIError(c, apierr.New(http.StatusBadRequest, "bad_limit",
				fmt.Errorf("limit must be a positive integer")))
			return
		}
	}
	response.RespondOK(c, gin.H{"events": h.Bus.History(pattern, limit)})
}

func (h *EventHandler) Subscribers(c *gin.Context) {
	response.RespondOK(c, gin.H{"subscribers": h.Bus.Subscribers()})
}
