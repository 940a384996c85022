package syncer

import (
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/monitor"
	"go.klb.dev/clipd/internal/settings"
	"go.klb.dev/clipd/internal/storage"
)

// writeRecorder implements monitor.Buffer just far enough to observe writes.
type writeRecorder struct {
	source  item.Source
	written []*item.Item
	changed chan struct{}
}

func newWriteRecorder(source item.Source) *writeRecorder {
	return &writeRecorder{source: source, changed: make(chan struct{})}
}

func (b *writeRecorder) Source() item.Source      { return b.source }
func (b *writeRecorder) URIs() []string           { return nil }
func (b *writeRecorder) Image() image.Image       { return nil }
func (b *writeRecorder) Text() string             { return "" }
func (b *writeRecorder) Write(it *item.Item)      { b.written = append(b.written, it) }
func (b *writeRecorder) Changed() <-chan struct{} { return b.changed }

func newTestSyncer(t *testing.T, cfg *settings.Settings) (*Syncer, *storage.Store, *writeRecorder, *writeRecorder) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cb := newWriteRecorder(item.SourceClipboard)
	pr := newWriteRecorder(item.SourcePrimary)
	return New(store, cb, pr, cfg), store, cb, pr
}

func TestHandlePersistsItem(t *testing.T) {
	s, store, cb, pr := newTestSyncer(t, settings.Defaults())

	it, err := item.NewText("captured", item.SourcePrimary)
	require.NoError(t, err)
	s.Handle(monitor.Event{Item: it, Source: it.Source})

	got, err := store.ByChecksum(it.Checksum)
	require.NoError(t, err)
	require.NotNil(t, got)

	// sync-selections is off by default: no mirroring.
	assert.Empty(t, cb.written)
	assert.Empty(t, pr.written)
}

func TestHandleMirrorsToOtherBuffer(t *testing.T) {
	cfg := settings.Defaults()
	cfg.SyncSelections = true
	s, _, cb, pr := newTestSyncer(t, cfg)

	fromPrimary, _ := item.NewText("from primary", item.SourcePrimary)
	s.Handle(monitor.Event{Item: fromPrimary, Source: item.SourcePrimary})
	require.Len(t, cb.written, 1)
	assert.Empty(t, pr.written)
	assert.Equal(t, "from primary", cb.written[0].Text)

	fromClipboard, _ := item.NewText("from clipboard", item.SourceClipboard)
	s.Handle(monitor.Event{Item: fromClipboard, Source: item.SourceClipboard})
	require.Len(t, pr.written, 1)
	assert.Equal(t, "from clipboard", pr.written[0].Text)
}

func TestEmptiedRestoresMostRecent(t *testing.T) {
	s, store, cb, _ := newTestSyncer(t, settings.Defaults())

	now := int64(0)
	store.Now = func() time.Time { now++; return time.Unix(now, 0) }

	older, _ := item.NewText("older", item.SourceClipboard)
	newer, _ := item.NewText("newer", item.SourceClipboard)
	require.NoError(t, store.Add(older))
	require.NoError(t, store.Add(newer))

	s.Handle(monitor.Event{Emptied: true, Source: item.SourceClipboard})

	require.Len(t, cb.written, 1)
	assert.Equal(t, "newer", cb.written[0].Text)
}

func TestEmptiedRestoresIntoOriginatingBuffer(t *testing.T) {
	s, store, cb, pr := newTestSyncer(t, settings.Defaults())

	it, _ := item.NewText("kept", item.SourcePrimary)
	require.NoError(t, store.Add(it))

	s.Handle(monitor.Event{Emptied: true, Source: item.SourcePrimary})

	assert.Empty(t, cb.written)
	require.Len(t, pr.written, 1)
	assert.Equal(t, "kept", pr.written[0].Text)
}

func TestEmptiedKeepContentDisabled(t *testing.T) {
	cfg := settings.Defaults()
	cfg.KeepContent = false
	s, store, cb, _ := newTestSyncer(t, cfg)

	it, _ := item.NewText("kept", item.SourceClipboard)
	require.NoError(t, store.Add(it))

	s.Handle(monitor.Event{Emptied: true, Source: item.SourceClipboard})
	assert.Empty(t, cb.written)
}

func TestEmptiedWithEmptyHistory(t *testing.T) {
	s, _, cb, _ := newTestSyncer(t, settings.Defaults())
	s.Handle(monitor.Event{Emptied: true, Source: item.SourceClipboard})
	assert.Empty(t, cb.written)
}

func TestSelectWritesClipboardAndTouches(t *testing.T) {
	s, store, cb, _ := newTestSyncer(t, settings.Defaults())

	now := int64(0)
	store.Now = func() time.Time { now++; return time.Unix(now, 0) }

	chosen, _ := item.NewText("chosen", item.SourceClipboard)
	other, _ := item.NewText("other", item.SourceClipboard)
	require.NoError(t, store.Add(chosen))
	require.NoError(t, store.Add(other))

	require.NoError(t, s.Select(chosen.ID))

	require.Len(t, cb.written, 1)
	assert.Equal(t, "chosen", cb.written[0].Text)

	items, err := store.Items(10)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "chosen", items[0].Text, "selection refreshes the history position")
}

func TestSelectUnknownID(t *testing.T) {
	s, _, _, _ := newTestSyncer(t, settings.Defaults())
	assert.Error(t, s.Select(12345))
}

func TestSelectChecksum(t *testing.T) {
	s, store, cb, _ := newTestSyncer(t, settings.Defaults())

	it, _ := item.NewText("by identity", item.SourceClipboard)
	require.NoError(t, store.Add(it))

	require.NoError(t, s.SelectChecksum(it.Checksum))
	require.Len(t, cb.written, 1)
	assert.Equal(t, "by identity", cb.written[0].Text)

	assert.Error(t, s.SelectChecksum("deadbeef"))
}
