package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/delivery"
	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/history"
	"github.com/sga-feedback/backend/internal/metrics"
	"github.com/sga-feedback/backend/pkg/logger"
)

type Submitter interface {
	SubmitFeedback(ctx context.Context, req feedback.Request) delivery.Result
}

type HistoryReader interface {
	Entries(ctx context.Context) ([]history.Entry, error)
}

type FeedbackHandler struct {
	submitter Submitter
	history   HistoryReader
}

func NewFeedbackHandler(submitter Submitter, history HistoryReader) *FeedbackHandler {
	return &FeedbackHandler{
		submitter: submitter,
		history:   history,
	}
}

// Submit is the form path: the request is validated before submission and
// validation messages are returned for display.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	requestID := uuid.NewString()

	req, err := feedback.DecodeJSON(c.Body())
	if err != nil {
		logger.Error("Failed to parse request body", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(delivery.Result{
			Success: false,
			Error:   "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		field := "type"
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			field = verr.Field
		}
		metrics.ValidationFailures.WithLabelValues(field).Inc()
		logger.Info("Feedback rejected by validation",
			zap.String("request_id", requestID),
			zap.String("field", field),
			zap.Error(err),
		)
		return c.Status(fiber.StatusBadRequest).JSON(delivery.Result{
			Success: false,
			Error:   err.Error(),
		})
	}

	if !feedback.IsSupportedSource(req.SourceURL) {
		logger.Debug("Feedback from unsupported source", zap.String("request_id", requestID), zap.String("source_url", req.SourceURL))
	}

	res := h.submitter.SubmitFeedback(c.UserContext(), req)
	if !res.Success {
		return c.Status(fiber.StatusBadGateway).JSON(res)
	}

	return c.JSON(res)
}

func (h *FeedbackHandler) GetHistory(c *fiber.Ctx) error {
	entries, err := h.history.Entries(c.UserContext())
	if err != nil {
		logger.Error("Failed to read feedback history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read feedback history",
		})
	}

	return c.JSON(fiber.Map{
		"history": entries,
		"count":   len(entries),
	})
}
