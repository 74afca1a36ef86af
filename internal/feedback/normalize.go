package feedback

import (
	"strings"
	"time"
)

// Normalize builds the canonical payload for req. It never fails: missing
// strings become "", a missing timestamp becomes now, and an unknown kind
// yields only the common fields.
func Normalize(req Request, now time.Time) Payload {
	p := Payload{
		SelectedText: req.SelectedText,
		SourceURL:    req.SourceURL,
		Timestamp:    req.Timestamp,
	}
	if p.Timestamp == "" {
		p.Timestamp = FormatTime(now)
	}

	switch d := req.Details.(type) {
	case Relative:
		p.ExpectedOutput = stringPtr(strings.TrimSpace(d.ExpectedOutput))
		p.Comment = stringPtr(strings.TrimSpace(d.Comment))
	case Absolute:
		p.Rating = intPtr(d.Rating)
		p.Comment = stringPtr(strings.TrimSpace(d.Comment))
	}

	return p
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
