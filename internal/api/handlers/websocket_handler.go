package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/extension"
	"github.com/sga-feedback/backend/pkg/logger"
)

// MessageHandler carries extension runtime messages over a WebSocket. Each
// inbound message gets exactly one response with the same id.
type MessageHandler struct {
	router *extension.Router
}

func NewMessageHandler(router *extension.Router) *MessageHandler {
	return &MessageHandler{
		router: router,
	}
}

// Upgrade rejects plain HTTP requests on the WebSocket route.
func (h *MessageHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *MessageHandler) HandleConnection(c *websocket.Conn) {
	connID := uuid.NewString()
	logger.Info("WebSocket connection established", zap.String("conn_id", connID))

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed", zap.String("conn_id", connID))
	}()

	for {
		var msg extension.Message
		if err := c.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("Failed to read WebSocket message", zap.String("conn_id", connID), zap.Error(err))
			}
			return
		}

		logger.Debug("Dispatching message",
			zap.String("conn_id", connID),
			zap.String("id", msg.ID),
			zap.String("action", msg.Action),
		)

		resp := h.router.Dispatch(context.Background(), msg)
		if err := c.WriteJSON(resp); err != nil {
			logger.Error("Failed to write WebSocket response", zap.String("conn_id", connID), zap.Error(err))
			return
		}
	}
}
