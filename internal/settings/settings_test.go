package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sga-feedback/backend/internal/storage"
	"github.com/sga-feedback/backend/internal/storage/memory"
)

const defaultURL = "https://hooks.example/default"

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("storage offline")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("storage offline")
}

func TestWebhookURLFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := NewStore(mem, defaultURL)

	assert.Equal(t, defaultURL, s.WebhookURL(ctx))

	require.NoError(t, storage.SetJSON(ctx, mem, storage.KeyWebhookURL, ""))
	assert.Equal(t, defaultURL, s.WebhookURL(ctx))

	require.NoError(t, mem.Set(ctx, storage.KeyWebhookURL, []byte("not json")))
	assert.Equal(t, defaultURL, s.WebhookURL(ctx))

	assert.Equal(t, defaultURL, NewStore(failingStore{}, defaultURL).WebhookURL(ctx))
}

func TestSetWebhookURL(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), defaultURL)

	require.NoError(t, s.SetWebhookURL(ctx, "  https://hooks.example/custom "))
	assert.Equal(t, "https://hooks.example/custom", s.WebhookURL(ctx))

	assert.Error(t, s.SetWebhookURL(ctx, "ftp://hooks.example"))
	assert.Error(t, s.SetWebhookURL(ctx, "https://"))
	assert.Error(t, s.SetWebhookURL(ctx, "::"))
	assert.Equal(t, "https://hooks.example/custom", s.WebhookURL(ctx))
}

func TestShowFloatingButton(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), defaultURL)

	assert.True(t, s.ShowFloatingButton(ctx))
	require.NoError(t, s.SetShowFloatingButton(ctx, false))
	assert.False(t, s.ShowFloatingButton(ctx))
	assert.Equal(t, Settings{WebhookURL: defaultURL, ShowFloatingButton: false}, s.Get(ctx))
}

func TestInstallOnlyOnFirstRun(t *testing.T) {
	ctx := context.Background()
	s := NewStore(memory.New(), defaultURL)

	first, err := s.Install(ctx)
	require.NoError(t, err)
	assert.True(t, first)
	assert.Equal(t, defaultURL, s.WebhookURL(ctx))
	assert.True(t, s.ShowFloatingButton(ctx))

	require.NoError(t, s.SetWebhookURL(ctx, "https://hooks.example/mine"))
	again, err := s.Install(ctx)
	require.NoError(t, err)
	assert.False(t, again)
	assert.Equal(t, "https://hooks.example/mine", s.WebhookURL(ctx))
}

func TestInstallPropagatesStoreErrors(t *testing.T) {
	_, err := NewStore(failingStore{}, defaultURL).Install(context.Background())
	assert.Error(t, err)
}
