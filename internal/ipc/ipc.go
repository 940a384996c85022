// Package ipc provides the local Unix-socket control channel that CLI
// sub-commands (history, search, select, ...) use to talk to a running
// clipd daemon.
package ipc

import (
	"net"
	"os"
	"path/filepath"
)

// SocketPath returns the control socket path.
//
//   - $CLIPD_SOCKET when set
//   - $XDG_RUNTIME_DIR/clipd.sock when available
//   - $TMPDIR/clipd.sock otherwise
func SocketPath() string {
	if s := os.Getenv("CLIPD_SOCKET"); s != "" {
		return s
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "clipd.sock")
	}
	return filepath.Join(os.TempDir(), "clipd.sock")
}

// IsRunning reports whether a daemon appears to be listening on the control
// socket. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := net.Dial("unix", SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the control socket path, removing any
// stale socket file from a previous (crashed) run first.
func Listen() (net.Listener, error) {
	path := SocketPath()
	_ = os.Remove(path)
	return net.Listen("unix", path)
}

// Dial connects to the control socket.
func Dial() (net.Conn, error) {
	return net.Dial("unix", SocketPath())
}
