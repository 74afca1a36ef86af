// Package selection finds the text a user has selected in the document
// editor. The editor does not expose the selection through one API, so
// several layers of a page snapshot are probed in turn.
package selection

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sga-feedback/backend/pkg/logger"
)

const (
	overlaySelector = ".kix-selection-overlay"
	lineSelector    = ".kix-lineview-content"
)

// Snapshot is what the page reports about its current selection.
type Snapshot struct {
	// WindowSelection is the top-level document selection.
	WindowSelection string `json:"windowSelection"`
	// FrameSelection is the selection inside the editor's text-event iframe.
	FrameSelection string `json:"frameSelection"`
	// HTML is the rendered editor markup.
	HTML string `json:"html"`
}

type Provider interface {
	SelectedText(ctx context.Context) string
}

// StaticProvider serves the selection of a fixed snapshot.
type StaticProvider struct {
	Snapshot Snapshot
}

func (p StaticProvider) SelectedText(context.Context) string {
	return Extract(p.Snapshot)
}

// Extract returns the first non-empty selection found, trimmed: the window
// selection, then the iframe selection, then the rendered lines when a
// selection overlay is present. It returns "" when nothing is selected.
func Extract(s Snapshot) string {
	if text := strings.TrimSpace(s.WindowSelection); text != "" {
		return text
	}
	if text := strings.TrimSpace(s.FrameSelection); text != "" {
		return text
	}
	if strings.TrimSpace(s.HTML) == "" {
		return ""
	}

	text, err := fromRenderedLines(s.HTML)
	if err != nil {
		logger.Warn("Failed to parse editor snapshot", zap.Error(err))
		return ""
	}
	return text
}

func fromRenderedLines(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	if doc.Find(overlaySelector).Length() == 0 {
		return "", nil
	}

	var b strings.Builder
	doc.Find(lineSelector).Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); text != "" {
			b.WriteString(text)
			b.WriteByte(' ')
		}
	})

	return strings.TrimSpace(b.String()), nil
}
