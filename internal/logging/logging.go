// Package logging configures the global slog logger for clipd.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Setup installs the global slog logger. format is one of "auto", "text" or
// "json"; "auto" picks the human-readable handler when stderr is a terminal.
// Unknown level strings fall back to info. Call once after flag parsing.
func Setup(format, level string) {
	w := os.Stderr

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "text", "tint", "human":
		h = textHandler(w, l)
	case "json":
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
	default: // auto
		if IsTTY(w) {
			h = textHandler(w, l)
		} else {
			h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})
		}
	}
	slog.SetDefault(slog.New(h))
}

func textHandler(w io.Writer, level slog.Level) slog.Handler {
	return tinter.NewHandler(w, &tinter.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
	})
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
