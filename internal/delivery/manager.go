// Package delivery sends canonical feedback payloads to the configured
// webhook and records successful deliveries in the local history.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/history"
	"github.com/sga-feedback/backend/internal/metrics"
	"github.com/sga-feedback/backend/internal/webhook"
	"github.com/sga-feedback/backend/pkg/circuitbreaker"
	"github.com/sga-feedback/backend/pkg/logger"
	"github.com/sga-feedback/backend/pkg/utils"
)

// Result is what the caller sees. Error is set only when Success is false
// and is suitable for showing to the user verbatim.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type Sender interface {
	Post(ctx context.Context, endpoint string, payload any) error
}

type EndpointResolver interface {
	WebhookURL(ctx context.Context) string
}

type HistoryWriter interface {
	Append(ctx context.Context, payload feedback.Payload, at time.Time) (history.Entry, int, error)
}

type Manager struct {
	sender    Sender
	endpoints EndpointResolver
	history   HistoryWriter
	breakers  *circuitbreaker.Registry
	now       func() time.Time
}

type Option func(*Manager)

// WithBreakers guards each endpoint with a circuit breaker. An open circuit
// fails the submission without sending anything.
func WithBreakers(r *circuitbreaker.Registry) Option {
	return func(m *Manager) { m.breakers = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(sender Sender, endpoints EndpointResolver, hist HistoryWriter, opts ...Option) *Manager {
	m := &Manager{
		sender:    sender,
		endpoints: endpoints,
		history:   hist,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SubmitFeedback normalizes req and submits it.
func (m *Manager) SubmitFeedback(ctx context.Context, req feedback.Request) Result {
	return m.Submit(ctx, feedback.Normalize(req, m.now()))
}

// Submit makes exactly one delivery attempt. On success the payload is
// prepended to the history; a history failure is logged and does not change
// the result. No error or panic escapes: every failure becomes a Result.
func (m *Manager) Submit(ctx context.Context, payload feedback.Payload) (result Result) {
	kind := metrics.KindLabel(string(payload.Kind()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Feedback submission panicked", zap.Any("panic", r), zap.String("kind", kind))
			metrics.SubmissionsTotal.WithLabelValues(kind, metrics.StatusFailed).Inc()
			result = Result{Success: false, Error: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	endpoint := m.endpoints.WebhookURL(ctx)

	logger.Info("Submitting feedback",
		zap.String("kind", kind),
		zap.String("endpoint", endpoint),
		zap.String("text_digest", utils.Digest(payload.SelectedText)),
	)

	start := time.Now()
	err := m.deliver(ctx, endpoint, payload)
	status := classify(err)
	metrics.DeliveryDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.SubmissionsTotal.WithLabelValues(kind, status).Inc()

	if err != nil {
		logger.Error("Feedback delivery failed",
			zap.Error(err),
			zap.String("status", status),
			zap.String("endpoint", endpoint),
		)
		return Result{Success: false, Error: err.Error()}
	}

	logger.Info("Feedback delivered", zap.String("kind", kind), zap.Duration("latency", time.Since(start)))

	m.recordHistory(ctx, payload)
	return Result{Success: true}
}

func (m *Manager) deliver(ctx context.Context, endpoint string, payload feedback.Payload) error {
	post := func() error { return m.sender.Post(ctx, endpoint, payload) }
	if m.breakers == nil {
		return post()
	}
	return m.breakers.Get(endpoint).Execute(post)
}

func (m *Manager) recordHistory(ctx context.Context, payload feedback.Payload) {
	defer func() {
		if r := recover(); r != nil {
			metrics.HistoryWriteFailures.Inc()
			logger.Error("History write panicked", zap.Any("panic", r))
		}
	}()

	entry, n, err := m.history.Append(ctx, payload, m.now())
	if err != nil {
		metrics.HistoryWriteFailures.Inc()
		logger.Error("Error storing feedback history", zap.Error(err))
		return
	}

	metrics.HistoryEntries.Set(float64(n))
	logger.Debug("Feedback history updated", zap.String("entry_id", entry.ID), zap.Int("entries", n))
}

func classify(err error) string {
	var rej *webhook.RejectionError
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case errors.As(err, &rej):
		return metrics.StatusRejected
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		return metrics.StatusOpen
	default:
		return metrics.StatusFailed
	}
}
