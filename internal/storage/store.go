// Package storage defines the key-value store shared by settings and
// feedback history.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys of the persisted state.
const (
	KeyWebhookURL         = "webhookUrl"
	KeyShowFloatingButton = "showFloatingButton"
	KeyFeedbackHistory    = "feedbackHistory"
	KeySelectedText       = "selectedText"
	KeySelectedTextAt     = "selectedTextAt"
)

// Store is a process-wide key-value store. Values are opaque bytes; callers
// store JSON.
type Store interface {
	// Get returns ok=false when key has never been set.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// GetJSON decodes the value at key into v. It reports ok=false when the key
// is absent and leaves v untouched.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
