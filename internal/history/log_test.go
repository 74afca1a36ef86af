package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/storage"
	"github.com/sga-feedback/backend/internal/storage/memory"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func payload(expected string) feedback.Payload {
	return feedback.Normalize(feedback.Request{
		Common:  feedback.Common{Timestamp: "2024-01-01T00:00:00Z"},
		Details: feedback.Relative{ExpectedOutput: expected},
	}, baseTime)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Bool(1), args.Error(2)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func TestEntriesEmptyWhenMissing(t *testing.T) {
	log := NewLog(memory.New(), true)

	entries, err := log.Entries(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)

	n, err := log.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	log := NewLog(memory.New(), true)

	first, n, err := log.Append(ctx, payload("one"), baseTime)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	second, n, err := log.Append(ctx, payload("two"), baseTime.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := log.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	assert.Equal(t, "two", *entries[0].ExpectedOutput)
	assert.Equal(t, "2024-01-01T00:00:01.000Z", entries[0].SubmittedAt)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestAppendBoundsLog(t *testing.T) {
	ctx := context.Background()
	log := NewLog(memory.New(), true)

	var ids []string
	for i := 0; i < MaxEntries; i++ {
		e, _, err := log.Append(ctx, payload(fmt.Sprintf("n%d", i)), baseTime.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	entries, err := log.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	oldest := entries[MaxEntries-1].ID
	assert.Equal(t, ids[0], oldest)

	latest, n, err := log.Append(ctx, payload("overflow"), baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, MaxEntries, n)

	entries, err = log.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, latest.ID, entries[0].ID)
	for _, e := range entries {
		assert.NotEqual(t, oldest, e.ID)
	}
}

func TestEntryJSONIsFlat(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	log := NewLog(store, false)

	_, _, err := log.Append(ctx, payload("fix"), baseTime)
	require.NoError(t, err)

	var raw []map[string]any
	ok, err := storage.GetJSON(ctx, store, storage.KeyFeedbackHistory, &raw)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, raw, 1)

	keys := make([]string, 0, len(raw[0]))
	for k := range raw[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"selectedText", "sourceUrl", "timestamp", "expectedOutput", "comment", "id", "submittedAt"}, keys)
}

func TestAppendReadFailureLeavesStoreUntouched(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, storage.KeyFeedbackHistory).Return(nil, false, errors.New("disk gone"))

	_, _, err := NewLog(store, true).Append(context.Background(), payload("x"), baseTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendWriteFailure(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, storage.KeyFeedbackHistory).Return(nil, false, nil)
	store.On("Set", mock.Anything, storage.KeyFeedbackHistory, mock.Anything).Return(errors.New("quota exceeded"))

	_, _, err := NewLog(store, true).Append(context.Background(), payload("x"), baseTime)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write history")
	store.AssertExpectations(t)
}

func TestSerializedAppendsKeepEveryEntry(t *testing.T) {
	ctx := context.Background()
	log := NewLog(memory.New(), true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := log.Append(ctx, payload(fmt.Sprintf("c%d", i)), baseTime)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := log.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 20)

	seen := map[string]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}
