// Package settings owns the user-editable extension settings: the webhook
// endpoint override and the floating button toggle.
package settings

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/sga-feedback/backend/internal/storage"
	"github.com/sga-feedback/backend/pkg/logger"
)

type Settings struct {
	WebhookURL         string `json:"webhookUrl"`
	ShowFloatingButton bool   `json:"showFloatingButton"`
}

type Store struct {
	store      storage.Store
	defaultURL string
}

func NewStore(store storage.Store, defaultURL string) *Store {
	return &Store{store: store, defaultURL: defaultURL}
}

func (s *Store) DefaultWebhookURL() string {
	return s.defaultURL
}

// WebhookURL resolves the delivery endpoint. It never fails: an absent,
// empty or unreadable override resolves to the default.
func (s *Store) WebhookURL(ctx context.Context) string {
	var u string
	ok, err := storage.GetJSON(ctx, s.store, storage.KeyWebhookURL, &u)
	if err != nil {
		logger.Warn("Failed to read webhook URL, using default", zap.Error(err))
		return s.defaultURL
	}
	if !ok || strings.TrimSpace(u) == "" {
		return s.defaultURL
	}
	return u
}

func (s *Store) SetWebhookURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if err := ValidateWebhookURL(rawURL); err != nil {
		return err
	}
	return storage.SetJSON(ctx, s.store, storage.KeyWebhookURL, rawURL)
}

// ShowFloatingButton defaults to true when unset or unreadable.
func (s *Store) ShowFloatingButton(ctx context.Context) bool {
	show := true
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyShowFloatingButton, &show); err != nil {
		logger.Warn("Failed to read floating button setting", zap.Error(err))
		return true
	}
	return show
}

func (s *Store) SetShowFloatingButton(ctx context.Context, show bool) error {
	return storage.SetJSON(ctx, s.store, storage.KeyShowFloatingButton, show)
}

func (s *Store) Get(ctx context.Context) Settings {
	return Settings{
		WebhookURL:         s.WebhookURL(ctx),
		ShowFloatingButton: s.ShowFloatingButton(ctx),
	}
}

// Install writes the default settings on first run. It reports whether this
// was a first install; existing settings are left alone.
func (s *Store) Install(ctx context.Context) (bool, error) {
	_, ok, err := s.store.Get(ctx, storage.KeyWebhookURL)
	if err != nil {
		return false, fmt.Errorf("failed to check settings: %w", err)
	}
	if ok {
		return false, nil
	}

	if err := storage.SetJSON(ctx, s.store, storage.KeyWebhookURL, s.defaultURL); err != nil {
		return false, err
	}
	if err := s.SetShowFloatingButton(ctx, true); err != nil {
		return false, err
	}

	logger.Info("Default settings installed", zap.String("webhook_url", s.defaultURL))
	return true, nil
}

// ValidateWebhookURL accepts absolute http and https URLs with a host.
func ValidateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid webhook URL: scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid webhook URL: missing host")
	}
	return nil
}
