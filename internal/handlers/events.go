package handlers

import (
	"net/http"

	"github.com/dimitrije/folio-api/internal/sse"
	"github.com/dimitrije/folio-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type EventsHandler struct {
	hub    EventHubInterface
	logger *zap.Logger
}

func NewEventsHandler(hub EventHubInterface, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub:    hub,
		logger: logger,
	}
}

// Stream keeps the connection open and forwards every change notification
// until the client goes away or the hub shuts down.
func (h *EventsHandler) Stream(c *drift.Context) {
	clientID := uuid.New().String()
	client := sse.NewClient(clientID)

	if !h.hub.Register(client) {
		_ = c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "event stream unavailable"})
		return
	}
	defer h.hub.Unregister(client)

	stream := c.SSE()

	if err := stream.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	h.logger.Debug("event stream opened", zap.String("client_id", clientID))

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := stream.Send(string(msg), "message", ""); err != nil {
				h.logger.Debug("event stream write failed", zap.String("client_id", clientID), zap.Error(err))
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
