// Package monitor watches the two system selection buffers (the general
// clipboard and the mouse primary selection), classifies new content,
// filters it against the configured preferences and deduplicates it against
// the immediately preceding content of the same buffer.
//
// All notifications are serialised onto a single goroutine: once one begins
// processing it runs to completion before the next is accepted, so the
// per-buffer state needs no locking.
package monitor

import (
	"image"
	"log/slog"
	"regexp"

	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/settings"
)

// Buffer is one selection target. Content is queried in strict priority
// order — URIs, then image, then text — and implementations are expected to
// resolve each call lazily so that lower-priority representations are never
// inspected once a higher one is found.
type Buffer interface {
	// Source identifies which selection this buffer is.
	Source() item.Source

	// URIs returns the file URI list on the buffer, or nil.
	URIs() []string

	// Image returns the raster image on the buffer, or nil.
	Image() image.Image

	// Text returns the text on the buffer, or "".
	Text() string

	// Write replaces the buffer contents with the item's payload.
	Write(it *item.Item)

	// Changed delivers a signal for every ownership change of the buffer.
	// The channel is never closed.
	Changed() <-chan struct{}
}

// Event is what the monitor emits: either a freshly captured item, or a
// notice that a buffer lost all content (an external application cleared it).
type Event struct {
	Item    *item.Item
	Emptied bool
	Source  item.Source
}

// Monitor is the capture state machine. Not safe for concurrent Start/Stop;
// both are expected on the owning goroutine.
type Monitor struct {
	clipboard Buffer
	primary   Buffer
	cfg       *settings.Settings
	events    chan Event

	// lastSeen holds, per buffer, the checksum of the most recent content
	// emitted for it. Survives Stop so a restart still suppresses unchanged
	// content.
	lastSeen [2]string

	// exclude pattern compilation cache; an uncompilable pattern is treated
	// as no pattern and warned about once.
	excludeSrc string
	excludeRe  *regexp.Regexp

	running bool
	stop    chan struct{}
	done    chan struct{}
}

// New builds a monitor over the two buffers. Events are delivered on the
// channel returned by Events once Start is called.
func New(clipboard, primary Buffer, cfg *settings.Settings) *Monitor {
	return &Monitor{
		clipboard: clipboard,
		primary:   primary,
		cfg:       cfg,
		events:    make(chan Event, 64),
	}
}

// Events returns the event channel. It is never closed.
func (m *Monitor) Events() <-chan Event { return m.events }

// Start begins observing both buffers. It first runs one synchronous check
// of the general clipboard so content present at launch is captured; that
// initial check is deliberately not gated by use-primary-selection. Calling
// Start while running is a no-op.
func (m *Monitor) Start() {
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	m.check(m.clipboard)

	go m.run()
	slog.Info("selection monitor started")
}

// Stop ceases observation. Per-buffer dedup state is kept, so a later Start
// still suppresses content that has not changed in the meantime. Calling
// Stop while stopped is a no-op.
func (m *Monitor) Stop() {
	if !m.running {
		return
	}
	close(m.stop)
	<-m.done
	m.running = false
	slog.Info("selection monitor stopped")
}

func (m *Monitor) run() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case <-m.clipboard.Changed():
			m.check(m.clipboard)
		case <-m.primary.Changed():
			if !m.cfg.UsePrimarySelection {
				continue
			}
			m.check(m.primary)
		}
	}
}

// check classifies the buffer's current content and emits at most one event.
// Priority: URI list, then image, then text; the first representation found
// wins. A buffer with none of the three has been emptied externally.
func (m *Monitor) check(b Buffer) {
	src := b.Source()

	if uris := b.URIs(); len(uris) > 0 {
		if !m.cfg.SaveFiles {
			return
		}
		if it, err := item.NewFiles(uris, src); err == nil {
			m.emit(it)
		}
		return
	}

	if img := b.Image(); img != nil {
		if !m.cfg.SaveImages {
			return
		}
		if it, err := item.NewImage(img, src); err == nil {
			m.emit(it)
		}
		return
	}

	if text := b.Text(); text != "" {
		if m.excluded(text) {
			return
		}
		if it, err := item.NewText(text, src); err == nil {
			m.emit(it)
		}
		return
	}

	m.events <- Event{Emptied: true, Source: src}
}

// emit suppresses the item when its checksum matches the last content seen
// on the same buffer, which is how re-announcements (read-backs, sync
// echoes) are kept out of the history.
func (m *Monitor) emit(it *item.Item) {
	if it.Checksum == m.lastSeen[it.Source] {
		return
	}
	m.lastSeen[it.Source] = it.Checksum
	m.events <- Event{Item: it, Source: it.Source}
}

func (m *Monitor) excluded(text string) bool {
	pat := m.cfg.ExcludePattern
	if pat == "" {
		return false
	}
	if pat != m.excludeSrc {
		re, err := regexp.Compile(pat)
		if err != nil {
			slog.Warn("exclude-pattern does not compile, ignoring", "pattern", pat, "err", err)
		}
		m.excludeSrc = pat
		m.excludeRe = re
	}
	return m.excludeRe != nil && m.excludeRe.MatchString(text)
}
