//go:build !linux && !darwin && !windows

package clip

import (
	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/monitor"
)

// Buffers returns no-op buffers for platforms without clipboard support.
func Buffers() (cb, primary monitor.Buffer) {
	return newStub(item.SourceClipboard), newStub(item.SourcePrimary)
}
