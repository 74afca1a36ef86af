// Package history keeps the bounded, newest-first log of successfully
// delivered feedback.
package history

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/sga-feedback/backend/internal/feedback"
	"github.com/sga-feedback/backend/internal/storage"
)

// MaxEntries bounds the log; appending to a full log drops the oldest entry.
const MaxEntries = 50

// Entry is a delivered payload plus its local id and submission time.
type Entry struct {
	feedback.Payload
	ID          string `json:"id"`
	SubmittedAt string `json:"submittedAt"`
}

// Log reads and writes the history stored under storage.KeyFeedbackHistory.
//
// Append is a read-modify-write. When serialize is false, two overlapping
// appends can lose one entry (last writer wins). When true, appends within
// this process are serialized; writers in other processes sharing the same
// store can still race.
type Log struct {
	store     storage.Store
	serialize bool
	mu        sync.Mutex

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewLog(store storage.Store, serialize bool) *Log {
	return &Log{
		store:     store,
		serialize: serialize,
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Entries returns the stored log, newest first. A missing log is empty.
func (l *Log) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if _, err := storage.GetJSON(ctx, l.store, storage.KeyFeedbackHistory, &entries); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (l *Log) Len(ctx context.Context) (int, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Append records payload as delivered at the given time and returns the new
// entry. The stored log never exceeds MaxEntries.
func (l *Log) Append(ctx context.Context, payload feedback.Payload, at time.Time) (Entry, int, error) {
	if l.serialize {
		l.mu.Lock()
		defer l.mu.Unlock()
	}

	entries, err := l.Entries(ctx)
	if err != nil {
		return Entry{}, 0, err
	}

	id, err := l.newID(at)
	if err != nil {
		return Entry{}, 0, err
	}

	entry := Entry{
		Payload:     payload,
		ID:          id,
		SubmittedAt: feedback.FormatTime(at),
	}

	entries = prepend(entries, entry)

	if err := storage.SetJSON(ctx, l.store, storage.KeyFeedbackHistory, entries); err != nil {
		return Entry{}, 0, fmt.Errorf("failed to write history: %w", err)
	}

	return entry, len(entries), nil
}

// newID returns a ULID: a millisecond timestamp followed by random bits,
// monotonic within one millisecond.
func (l *Log) newID(at time.Time) (string, error) {
	l.entropyMu.Lock()
	defer l.entropyMu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at), l.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate entry id: %w", err)
	}
	return id.String(), nil
}

func prepend(entries []Entry, entry Entry) []Entry {
	out := make([]Entry, 0, MaxEntries)
	out = append(out, entry)
	for _, e := range entries {
		if len(out) == MaxEntries {
			break
		}
		out = append(out, e)
	}
	return out
}
