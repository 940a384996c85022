// Package clip provides the system-backed implementations of the selection
// buffers the monitor watches. Build constraints select the implementation:
//
//	clip_poll.go  — desktop platforms via golang.design/x/clipboard, polling
//	clip_other.go — headless / unsupported platform stub
//
// The underlying library exposes only the general clipboard selection, so
// the primary-selection buffer is a silent stub on every platform; the
// monitor and syncer treat it like a buffer that never changes.
package clip

import (
	"image"
	"strings"

	"go.klb.dev/clipd/internal/item"
)

// stubBuffer is a selection buffer with no platform backing. It never
// produces change notifications, always reads empty and discards writes.
type stubBuffer struct {
	source  item.Source
	changed chan struct{}
}

func newStub(source item.Source) *stubBuffer {
	return &stubBuffer{source: source, changed: make(chan struct{})}
}

func (b *stubBuffer) Source() item.Source      { return b.source }
func (b *stubBuffer) URIs() []string           { return nil }
func (b *stubBuffer) Image() image.Image       { return nil }
func (b *stubBuffer) Text() string             { return "" }
func (b *stubBuffer) Write(_ *item.Item)       {}
func (b *stubBuffer) Changed() <-chan struct{} { return b.changed }

// parseURIList interprets text consisting entirely of file:// URIs, one per
// line, as a URI list. File managers on X11 expose copied files this way,
// alongside a richer target the clipboard library cannot read; any other
// line shape means the text is ordinary text.
func parseURIList(text string) []string {
	if text == "" {
		return nil
	}
	var uris []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "file://") {
			return nil
		}
		uris = append(uris, line)
	}
	return uris
}
