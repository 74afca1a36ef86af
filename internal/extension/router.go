// Package extension dispatches the runtime messages the browser extension
// exchanges with its background worker.
package extension

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/delivery"
	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/selection"
	"github.com/sga-feedback/backend/internal/storage"
	"github.com/sga-feedback/backend/pkg/logger"
	"github.com/sga-feedback/backend/pkg/utils"
)

const (
	ActionSubmitFeedback    = "submitFeedback"
	ActionShowFeedbackPanel = "showFeedbackPanel"
	ActionGetSelectedText   = "getSelectedText"
	ActionOpenPopup         = "openPopup"
)

type Message struct {
	ID           string              `json:"id,omitempty"`
	Action       string              `json:"action"`
	Data         map[string]any      `json:"data,omitempty"`
	SelectedText string              `json:"selectedText,omitempty"`
	Snapshot     *selection.Snapshot `json:"snapshot,omitempty"`
}

type Response struct {
	ID           string  `json:"id,omitempty"`
	Success      *bool   `json:"success,omitempty"`
	Error        string  `json:"error,omitempty"`
	SelectedText *string `json:"selectedText,omitempty"`
}

type Submitter interface {
	SubmitFeedback(ctx context.Context, req feedback.Request) delivery.Result
}

type Router struct {
	submitter Submitter
	local     storage.Store
	now       func() time.Time
}

func NewRouter(submitter Submitter, local storage.Store) *Router {
	return &Router{submitter: submitter, local: local, now: time.Now}
}

// Dispatch handles one message. The response echoes the message id.
func (r *Router) Dispatch(ctx context.Context, msg Message) Response {
	resp := r.dispatch(ctx, msg)
	resp.ID = msg.ID
	return resp
}

func (r *Router) dispatch(ctx context.Context, msg Message) Response {
	switch msg.Action {
	case ActionSubmitFeedback:
		// The form already validated; decode leniently like the worker does.
		res := r.submitter.SubmitFeedback(ctx, feedback.Decode(msg.Data))
		return Response{Success: boolPtr(res.Success), Error: res.Error}

	case ActionShowFeedbackPanel:
		if err := r.rememberSelection(ctx, msg.SelectedText); err != nil {
			logger.Error("Failed to store selected text", zap.Error(err))
			return failure(err.Error())
		}
		return success()

	case ActionGetSelectedText:
		var snap selection.Snapshot
		if msg.Snapshot != nil {
			snap = *msg.Snapshot
		}
		text := selection.StaticProvider{Snapshot: snap}.SelectedText(ctx)
		return Response{SelectedText: &text}

	case ActionOpenPopup:
		// Browsers do not let a worker open the popup; the user has to click
		// the toolbar icon.
		logger.Info("Popup requested; user must click the extension icon")
		return success()

	default:
		return failure(fmt.Sprintf("unknown action: %s", msg.Action))
	}
}

func (r *Router) rememberSelection(ctx context.Context, text string) error {
	if err := storage.SetJSON(ctx, r.local, storage.KeySelectedText, text); err != nil {
		return err
	}
	if err := storage.SetJSON(ctx, r.local, storage.KeySelectedTextAt, r.now().UnixMilli()); err != nil {
		return err
	}
	logger.Debug("Selection stored for feedback panel", zap.String("text_digest", utils.Digest(text)))
	return nil
}

func success() Response {
	return Response{Success: boolPtr(true)}
}

func failure(msg string) Response {
	return Response{Success: boolPtr(false), Error: msg}
}

func boolPtr(b bool) *bool { return &b }
