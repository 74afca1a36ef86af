package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sga-feedback/backend/internal/storage"
)

func newTestClient(t *testing.T, path string) *Client {
	t.Helper()
	c, err := NewClient(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.InitSchema(context.Background()))
	return c
}

func TestClientGetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t, ":memory:")

	_, ok, err := c.Get(ctx, storage.KeyFeedbackHistory)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, storage.KeyFeedbackHistory, []byte(`[]`)))
	require.NoError(t, c.Set(ctx, storage.KeyFeedbackHistory, []byte(`[{"id":"a"}]`)))

	got, ok, err := c.Get(ctx, storage.KeyFeedbackHistory)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `[{"id":"a"}]`, string(got))
}

func TestClientPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "feedback.db")

	c, err := NewClient(path)
	require.NoError(t, err)
	require.NoError(t, c.InitSchema(ctx))
	require.NoError(t, storage.SetJSON(ctx, c, storage.KeyWebhookURL, "https://hooks.example/x"))
	require.NoError(t, c.Close())

	reopened := newTestClient(t, path)
	var url string
	ok, err := storage.GetJSON(ctx, reopened, storage.KeyWebhookURL, &url)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://hooks.example/x", url)
}
