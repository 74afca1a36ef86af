package selection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

const editorHTML = `<html><body>
<div class="kix-appview-editor">
  <div class="kix-selection-overlay"></div>
  <div class="kix-lineview"><span class="kix-lineview-content">Quarterly report</span></div>
  <div class="kix-lineview"><span class="kix-lineview-content"></span></div>
  <div class="kix-lineview"><span class="kix-lineview-content">Revenue grew</span></div>
</div>
</body></html>`

func TestExtractPrefersWindowSelection(t *testing.T) {
	got := Extract(Snapshot{WindowSelection: "  Intro \n", FrameSelection: "frame", HTML: editorHTML})
	assert.Equal(t, "Intro", got)
}

func TestExtractFallsBackToFrame(t *testing.T) {
	got := Extract(Snapshot{WindowSelection: "   ", FrameSelection: " Heading ", HTML: editorHTML})
	assert.Equal(t, "Heading", got)
}

func TestExtractFromRenderedLines(t *testing.T) {
	got := Extract(Snapshot{HTML: editorHTML})
	assert.Equal(t, "Quarterly report Revenue grew", got)
}

func TestExtractWithoutOverlayIsEmpty(t *testing.T) {
	html := `<div><span class="kix-lineview-content">Not selected</span></div>`
	assert.Equal(t, "", Extract(Snapshot{HTML: html}))
	assert.Equal(t, "", Extract(Snapshot{}))
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{Snapshot: Snapshot{FrameSelection: "abc"}}
	assert.Equal(t, "abc", p.SelectedText(context.Background()))
}
