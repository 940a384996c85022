// Package syncer is the policy layer on top of the selection monitor: it
// persists captured items, mirrors them across the two buffers when
// synchronisation is enabled, and restores the most recent history entry
// when a buffer is emptied externally.
package syncer

import (
	"fmt"
	"log/slog"

	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/monitor"
	"go.klb.dev/clipd/internal/settings"
	"go.klb.dev/clipd/internal/storage"
)

// Syncer consumes monitor events and issues storage and buffer commands.
type Syncer struct {
	store     *storage.Store
	clipboard monitor.Buffer
	primary   monitor.Buffer
	cfg       *settings.Settings
}

func New(store *storage.Store, clipboard, primary monitor.Buffer, cfg *settings.Settings) *Syncer {
	return &Syncer{store: store, clipboard: clipboard, primary: primary, cfg: cfg}
}

// Run consumes events until the channel is drained. Call in a goroutine;
// it returns when events is closed.
func (s *Syncer) Run(events <-chan monitor.Event) {
	for ev := range events {
		s.Handle(ev)
	}
}

// Handle processes a single monitor event.
func (s *Syncer) Handle(ev monitor.Event) {
	if ev.Emptied {
		s.restore(ev.Source)
		return
	}
	if ev.Item == nil {
		return
	}

	if err := s.store.Add(ev.Item); err != nil {
		// Not retried; the next capture will try again.
		slog.Error("persist failed", "label", ev.Item.Label, "err", err)
	}

	if s.cfg.SyncSelections {
		s.buffer(ev.Source.Other()).Write(ev.Item)
	}
}

// restore writes the most recent stored item back into the emptied buffer,
// so the buffer never reports truly empty once history exists.
func (s *Syncer) restore(src item.Source) {
	if !s.cfg.KeepContent {
		return
	}
	items, err := s.store.Items(1)
	if err != nil {
		slog.Error("restore lookup failed", "err", err)
		return
	}
	if len(items) == 0 {
		return
	}
	slog.Debug("restoring buffer content", "buffer", src, "label", items[0].Label)
	s.buffer(src).Write(items[0])
}

// Select is the history-selection path: the chosen item goes to the general
// clipboard and its history position is refreshed.
func (s *Syncer) Select(id int64) error {
	it, err := s.store.ByID(id)
	if err != nil {
		return err
	}
	if it == nil {
		return fmt.Errorf("no item with id %d", id)
	}
	s.clipboard.Write(it)
	return s.store.Add(it)
}

// SelectChecksum selects by content identity instead of row id.
func (s *Syncer) SelectChecksum(sum string) error {
	it, err := s.store.ByChecksum(sum)
	if err != nil {
		return err
	}
	if it == nil {
		return fmt.Errorf("no item with checksum %s", sum)
	}
	s.clipboard.Write(it)
	return s.store.Add(it)
}

func (s *Syncer) buffer(src item.Source) monitor.Buffer {
	if src == item.SourcePrimary {
		return s.primary
	}
	return s.clipboard
}
