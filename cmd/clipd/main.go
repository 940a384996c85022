// clipd: clipboard history for the desktop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go.klb.dev/clipd/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "clipd",
		Short: "Clipboard history daemon",
		Long: `clipd watches the clipboard and primary selections, keeps a
deduplicated history in a local SQLite database, and restores the latest
entry when an application exits and takes the selection with it.

Run "clipd daemon" in your session startup. Use "clipd history/search/
select/remove/clear/status" to talk to the running daemon over its
control socket.

Config file search order (first found wins):
  /etc/clipd/clipd.toml
  $HOME/.config/clipd/clipd.toml
  path supplied via --config

All flags can be set via CLIPD_<FLAG> env vars or config-file keys.
See "clipd daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newSearchCmd(),
		newSelectCmd(),
		newRemoveCmd(),
		newClearCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipd %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, format, level string) {
	if level == "" {
		if interactive {
			level = "debug"
		} else {
			level = "info"
		}
	}
	logging.Setup(format, level)
}
