//go:build linux || darwin || windows

package clip

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
	"time"

	"golang.design/x/clipboard"

	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/monitor"
)

const pollInterval = 250 * time.Millisecond

// Buffers returns the system clipboard buffer and the primary-selection
// buffer. clipboard.Init is called here rather than in init() so that CLI
// sub-commands that never touch the clipboard don't trigger the display
// probe. Without a display both buffers degrade to silent stubs.
func Buffers() (cb, primary monitor.Buffer) {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newStub(item.SourceClipboard), newStub(item.SourcePrimary)
	}
	b := &pollBuffer{
		source:  item.SourceClipboard,
		changed: make(chan struct{}, 1),
	}
	go b.poll()
	// The library has no primary-selection support; see the package comment.
	return b, newStub(item.SourcePrimary)
}

// pollBuffer adapts golang.design/x/clipboard to the monitor.Buffer
// interface. The library has no ownership-change notification on any
// platform we target, so changes are detected by polling and surfaced as
// synthetic notifications.
type pollBuffer struct {
	source   item.Source
	changed  chan struct{}
	lastText []byte
	lastImg  []byte
}

func (b *pollBuffer) poll() {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for range t.C {
		text := clipboard.Read(clipboard.FmtText)
		img := clipboard.Read(clipboard.FmtImage)
		if bytes.Equal(text, b.lastText) && bytes.Equal(img, b.lastImg) {
			continue
		}
		b.lastText = text
		b.lastImg = img
		select {
		case b.changed <- struct{}{}:
		default:
		}
	}
}

func (b *pollBuffer) Source() item.Source { return b.source }

func (b *pollBuffer) URIs() []string {
	return parseURIList(string(clipboard.Read(clipboard.FmtText)))
}

func (b *pollBuffer) Image() image.Image {
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		slog.Debug("clipboard image not decodable", "err", err)
		return nil
	}
	return img
}

func (b *pollBuffer) Text() string {
	return string(clipboard.Read(clipboard.FmtText))
}

// Write replaces the buffer contents. The write comes back around as a
// change notification on the next poll; the monitor's per-buffer checksum
// state suppresses the echo.
func (b *pollBuffer) Write(it *item.Item) {
	switch it.Kind {
	case item.KindImage:
		data, err := it.PNG()
		if err != nil {
			slog.Error("cannot encode image for clipboard", "err", err)
			return
		}
		clipboard.Write(clipboard.FmtImage, data)
	default:
		// Text and file lists both travel as text; the URI list round-trips
		// through its newline-joined form.
		clipboard.Write(clipboard.FmtText, []byte(it.Text))
	}
}

func (b *pollBuffer) Changed() <-chan struct{} { return b.changed }
