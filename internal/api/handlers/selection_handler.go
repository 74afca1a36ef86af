package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/selection"
	"github.com/sga-feedback/backend/pkg/logger"
)

type SelectionHandler struct{}

func NewSelectionHandler() *SelectionHandler {
	return &SelectionHandler{}
}

// Extract reports the selected text of a page snapshot and whether the page
// is a document the extension supports.
func (h *SelectionHandler) Extract(c *fiber.Ctx) error {
	var req struct {
		selection.Snapshot
		PageURL string `json:"pageUrl"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	provider := selection.StaticProvider{Snapshot: req.Snapshot}

	return c.JSON(fiber.Map{
		"selectedText": provider.SelectedText(c.UserContext()),
		"supported":    feedback.IsSupportedSource(req.PageURL),
	})
}
