package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/settings"
	"github.com/sga-feedback/backend/pkg/logger"
)

type SettingsHandler struct {
	settings *settings.Store
}

func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{settings: store}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(h.settings.Get(c.UserContext()))
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req struct {
		WebhookURL         *string `json:"webhookUrl"`
		ShowFloatingButton *bool   `json:"showFloatingButton"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx := c.UserContext()

	if req.WebhookURL != nil {
		if err := settings.ValidateWebhookURL(*req.WebhookURL); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if err := h.settings.SetWebhookURL(ctx, *req.WebhookURL); err != nil {
			logger.Error("Failed to store webhook URL", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store settings",
			})
		}
		logger.Info("Webhook URL updated", zap.String("webhook_url", *req.WebhookURL))
	}

	if req.ShowFloatingButton != nil {
		if err := h.settings.SetShowFloatingButton(ctx, *req.ShowFloatingButton); err != nil {
			logger.Error("Failed to store floating button setting", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to store settings",
			})
		}
	}

	return c.JSON(h.settings.Get(ctx))
}
