package monitor

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/settings"
)

// fakeBuffer is an in-memory Buffer whose content the test script sets
// between change notifications.
type fakeBuffer struct {
	mu      sync.Mutex
	source  item.Source
	uris    []string
	img     image.Image
	text    string
	written []*item.Item
	changed chan struct{}
}

func newFakeBuffer(source item.Source) *fakeBuffer {
	return &fakeBuffer{source: source, changed: make(chan struct{}, 8)}
}

func (b *fakeBuffer) Source() item.Source { return b.source }

func (b *fakeBuffer) URIs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uris
}

func (b *fakeBuffer) Image() image.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.img
}

func (b *fakeBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *fakeBuffer) Write(it *item.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.written = append(b.written, it)
}

func (b *fakeBuffer) Changed() <-chan struct{} { return b.changed }

func (b *fakeBuffer) set(uris []string, img image.Image, text string) {
	b.mu.Lock()
	b.uris, b.img, b.text = uris, img, text
	b.mu.Unlock()
}

func (b *fakeBuffer) announce() { b.changed <- struct{}{} }

func newTestMonitor(cfg *settings.Settings) (*fakeBuffer, *fakeBuffer, *Monitor) {
	cb := newFakeBuffer(item.SourceClipboard)
	pr := newFakeBuffer(item.SourcePrimary)
	return cb, pr, New(cb, pr, cfg)
}

func waitEvent(t *testing.T, m *Monitor) Event {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for monitor event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case ev := <-m.Events():
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestInitialCheckCapturesExistingClipboard(t *testing.T) {
	cb, _, m := newTestMonitor(settings.Defaults())
	cb.set(nil, nil, "already there")

	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "already there", ev.Item.Text)
	assert.Equal(t, item.SourceClipboard, ev.Source)
}

func TestDuplicateNotificationsProduceOneEvent(t *testing.T) {
	cb, _, m := newTestMonitor(settings.Defaults())
	m.Start()
	defer m.Stop()

	// Empty at start.
	ev := waitEvent(t, m)
	assert.True(t, ev.Emptied)

	cb.set(nil, nil, "same content")
	cb.announce()
	ev = waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "same content", ev.Item.Text)

	cb.announce()
	assertNoEvent(t, m)

	cb.set(nil, nil, "different content")
	cb.announce()
	ev = waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "different content", ev.Item.Text)
}

func TestBuffersDeduplicateIndependently(t *testing.T) {
	cb, pr, m := newTestMonitor(settings.Defaults())
	cb.set(nil, nil, "shared")
	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m)
	assert.Equal(t, item.SourceClipboard, ev.Source)

	// The same content on the other buffer is not a duplicate: the two
	// buffers evolve independently.
	pr.set(nil, nil, "shared")
	pr.announce()
	ev = waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, item.SourcePrimary, ev.Source)
}

func TestPriorityURIsOverImageOverText(t *testing.T) {
	cb, _, m := newTestMonitor(settings.Defaults())
	cb.set([]string{"file:///a"}, image.NewRGBA(image.Rect(0, 0, 1, 1)), "degenerate text")

	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, item.KindFiles, ev.Item.Kind)

	cb.set(nil, image.NewRGBA(image.Rect(0, 0, 2, 2)), "degenerate text")
	cb.announce()
	ev = waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, item.KindImage, ev.Item.Kind)

	cb.set(nil, nil, "plain text")
	cb.announce()
	ev = waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, item.KindText, ev.Item.Kind)
}

func TestImagesDisabledDropsSilently(t *testing.T) {
	cfg := settings.Defaults()
	cfg.SaveImages = false
	cb, _, m := newTestMonitor(cfg)
	cb.set(nil, image.NewRGBA(image.Rect(0, 0, 3, 3)), "")

	m.Start()
	defer m.Stop()

	assertNoEvent(t, m)
}

func TestFilesDisabledDropsSilently(t *testing.T) {
	cfg := settings.Defaults()
	cfg.SaveFiles = false
	cb, _, m := newTestMonitor(cfg)
	cb.set([]string{"file:///a", "file:///b"}, nil, "")

	m.Start()
	defer m.Stop()

	assertNoEvent(t, m)
}

func TestExcludePattern(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ExcludePattern = "secret"
	cb, _, m := newTestMonitor(cfg)
	cb.set(nil, nil, "my secret key")

	m.Start()
	defer m.Stop()

	assertNoEvent(t, m)

	cb.set(nil, nil, "hello")
	cb.announce()
	ev := waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "hello", ev.Item.Text)
}

func TestInvalidExcludePatternPassesContent(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ExcludePattern = "([unclosed"
	cb, _, m := newTestMonitor(cfg)
	cb.set(nil, nil, "content goes through")

	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m)
	require.NotNil(t, ev.Item)
	assert.Equal(t, "content goes through", ev.Item.Text)
}

func TestEmptyBufferEmitsEmptied(t *testing.T) {
	cb, _, m := newTestMonitor(settings.Defaults())
	cb.set(nil, nil, "something")
	m.Start()
	defer m.Stop()
	waitEvent(t, m)

	cb.set(nil, nil, "")
	cb.announce()
	ev := waitEvent(t, m)
	assert.True(t, ev.Emptied)
	assert.Equal(t, item.SourceClipboard, ev.Source)
}

func TestFilteredContentDoesNotTouchDedupState(t *testing.T) {
	cfg := settings.Defaults()
	cfg.ExcludePattern = "secret"
	cb, _, m := newTestMonitor(cfg)
	cb.set(nil, nil, "hello")
	m.Start()
	defer m.Stop()
	waitEvent(t, m)

	cb.set(nil, nil, "a secret")
	cb.announce()
	assertNoEvent(t, m)

	// hello is still the last seen content for the buffer.
	cb.set(nil, nil, "hello")
	cb.announce()
	assertNoEvent(t, m)
}

func TestPrimarySelectionDisabled(t *testing.T) {
	cfg := settings.Defaults()
	cfg.UsePrimarySelection = false
	_, pr, m := newTestMonitor(cfg)
	m.Start()
	defer m.Stop()

	ev := waitEvent(t, m) // initial clipboard check: empty
	assert.True(t, ev.Emptied)

	pr.set(nil, nil, "primary text")
	pr.announce()
	assertNoEvent(t, m)
}

func TestStartStopIdempotentAndStatePreserved(t *testing.T) {
	cb, _, m := newTestMonitor(settings.Defaults())
	cb.set(nil, nil, "persistent")

	m.Start()
	m.Start() // no-op
	ev := waitEvent(t, m)
	require.NotNil(t, ev.Item)

	m.Stop()
	m.Stop() // no-op

	// Restarting re-checks the clipboard; unchanged content stays suppressed.
	m.Start()
	defer m.Stop()
	assertNoEvent(t, m)
}
