package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/clipd/internal/clip"
	"go.klb.dev/clipd/internal/ipc"
	"go.klb.dev/clipd/internal/item"
	"go.klb.dev/clipd/internal/message"
	"go.klb.dev/clipd/internal/monitor"
	"go.klb.dev/clipd/internal/settings"
	"go.klb.dev/clipd/internal/storage"
	"go.klb.dev/clipd/internal/syncer"
	"go.klb.dev/clipd/internal/wire"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()
	settings.BindDefaults(v)

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the clipboard monitor and history store",
		Long: `Starts the clipd daemon: polls the clipboard and primary selections,
records every new capture in the history database, and answers the other
sub-commands over a local control socket.

Config file search order:
  /etc/clipd/clipd.toml
  $HOME/.config/clipd/clipd.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPD_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.String("db", defaultDBPath(), "path to the history database")
	f.Int("history-size", settings.DefaultHistorySize, "maximum entries returned by history/search (1-500)")
	f.Bool("use-primary-selection", true, "track the mouse (primary) selection as well")
	f.Bool("sync-selections", false, "mirror every capture into the other selection buffer")
	f.Bool("save-images", true, "record image captures")
	f.Bool("save-files", true, "record file-manager copies (file:// URI lists)")
	f.Bool("keep-content", true, "restore the latest entry when a selection owner exits")
	f.String("exclude-pattern", "", "regular expression; matching text is never recorded")
	f.Bool("hidden", false, "session-autostart compatibility flag; has no effect")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	cfg := settings.FromViper(v)
	dbPath := v.GetString("db")

	slog.Info("clipd daemon starting",
		"version", Version,
		"db", dbPath,
		"primary", cfg.UsePrimarySelection,
		"sync", cfg.SyncSelections,
		"history_size", cfg.HistorySize,
	)
	if v.GetBool("hidden") {
		slog.Debug("started with --hidden (autostart compatibility)")
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	store.SetListener(logListener{})

	cb, primary := clip.Buffers()
	mon := monitor.New(cb, primary, cfg)
	sync := syncer.New(store, cb, primary, cfg)

	mon.Start()
	defer mon.Stop()
	go sync.Run(mon.Events())

	// Control socket for the history/search/select/... CLI tools.
	ln, err := ipc.Listen()
	if err != nil {
		slog.Warn("control socket unavailable", "err", err)
	} else {
		slog.Info("control socket listening", "path", ipc.SocketPath())
		ctl := &control{store: store, sync: sync, cfg: cfg}
		go ctl.serve(ln)
		defer ln.Close()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	slog.Info("shutting down", "signal", s.String())
	return nil
}

// logListener surfaces history mutations in the daemon log.
type logListener struct{}

func (logListener) ItemAdded(it *item.Item) {
	slog.Info("item added", "id", it.ID, "kind", it.Kind, "label", it.Label)
}

func (logListener) ItemRemoved(id int64) { slog.Info("item removed", "id", id) }

func (logListener) Cleared() { slog.Info("history cleared") }

// control answers requests on the local socket. One request per connection.
type control struct {
	store *storage.Store
	sync  *syncer.Syncer
	cfg   *settings.Settings
}

func (c *control) serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go c.handle(conn)
	}
}

func (c *control) handle(conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	msg, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("control read failed", "err", err)
		return
	}
	if err := wc.WriteMsg(c.dispatch(msg)); err != nil {
		slog.Debug("control write failed", "err", err)
	}
}

func (c *control) dispatch(msg *message.Message) *message.Message {
	switch msg.Type {
	case message.TypeList:
		items, err := c.store.Items(c.limit(msg.Limit))
		if err != nil {
			return message.Errorf("list: %v", err)
		}
		return itemsResponse(items)

	case message.TypeSearch:
		items, err := c.store.Search(msg.Query, c.limit(msg.Limit))
		if err != nil {
			return message.Errorf("search: %v", err)
		}
		return itemsResponse(items)

	case message.TypeSelect:
		var err error
		if msg.ID != 0 {
			err = c.sync.Select(msg.ID)
		} else {
			err = c.sync.SelectChecksum(msg.Checksum)
		}
		if err != nil {
			return message.Errorf("select: %v", err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeRemove:
		if err := c.store.Remove(msg.ID); err != nil {
			return message.Errorf("remove: %v", err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeClear:
		if err := c.store.Clear(); err != nil {
			return message.Errorf("clear: %v", err)
		}
		return &message.Message{Type: message.TypeOK}

	case message.TypeStatus:
		n, err := c.store.Count()
		if err != nil {
			return message.Errorf("status: %v", err)
		}
		return &message.Message{
			Type: message.TypeStatusResponse,
			Status: &message.Status{
				Running:  true,
				Items:    n,
				Settings: c.cfg.Snapshot(),
			},
		}

	default:
		return message.Errorf("unknown request type %q", msg.Type)
	}
}

// limit caps a client-requested page size at the configured history size.
func (c *control) limit(requested int) int {
	if requested <= 0 || requested > c.cfg.HistorySize {
		return c.cfg.HistorySize
	}
	return requested
}

func itemsResponse(items []*item.Item) *message.Message {
	resp := &message.Message{Type: message.TypeItems, Items: make([]message.Entry, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, message.EntryOf(it))
	}
	return resp
}
