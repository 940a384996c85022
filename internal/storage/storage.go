// Package storage persists clipboard history in a local SQLite database.
// Items are content-addressed: the checksum column is unique, and re-adding
// an existing checksum only refreshes its timestamp (move-to-top).
package storage

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"go.klb.dev/clipd/internal/item"
)

// DefaultLimit caps list and search results when the caller passes limit <= 0.
const DefaultLimit = 100

// Listener is notified of storage changes. ItemAdded fires for fresh inserts
// only, never for a timestamp touch — consumers use it to react to genuinely
// new content.
type Listener interface {
	ItemAdded(it *item.Item)
	ItemRemoved(id int64)
	Cleared()
}

// Store is the content-addressed history store. It is safe for use from
// multiple goroutines; the underlying sql.DB serialises access.
type Store struct {
	db       *sqlx.DB
	listener Listener

	// Now supplies timestamps for inserts and touches. Tests override it to
	// get deterministic recency ordering.
	Now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type INTEGER NOT NULL,
	source INTEGER NOT NULL,
	checksum TEXT UNIQUE NOT NULL,
	label TEXT NOT NULL,
	text_content TEXT,
	image_data BLOB,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_timestamp ON items(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_items_checksum ON items(checksum);
`

// Open opens (or creates) the history database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Info("history store opened", "path", path)
	return &Store{db: db, Now: time.Now}, nil
}

// SetListener registers the change listener. Call before the store is shared;
// only one listener is supported and calling again replaces it.
func (s *Store) SetListener(l Listener) { s.listener = l }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Add inserts the item or, when a row with the same checksum already exists,
// refreshes that row's timestamp. Either way it assigns the row id to it.ID.
// The listener's ItemAdded fires for fresh inserts only.
func (s *Store) Add(it *item.Item) error {
	var id int64
	err := s.db.Get(&id, "SELECT id FROM items WHERE checksum = ?", it.Checksum)
	switch {
	case err == nil:
		if _, err := s.db.Exec("UPDATE items SET timestamp = ? WHERE id = ?", s.Now().Unix(), id); err != nil {
			slog.Error("touch failed", "id", id, "err", err)
			return fmt.Errorf("touch item %d: %w", id, err)
		}
		it.ID = id
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		slog.Error("dedup lookup failed", "checksum", it.Checksum, "err", err)
		return fmt.Errorf("lookup checksum: %w", err)
	}

	var text, blob any
	switch it.Kind {
	case item.KindImage:
		// A nil blob is stored when the image cannot be re-encoded; the row
		// is then skipped on read.
		if data, err := it.PNG(); err == nil {
			blob = data
		}
	default:
		text = it.Text
	}

	res, err := s.db.Exec(
		`INSERT INTO items (type, source, checksum, label, text_content, image_data, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int(it.Kind), int(it.Source), it.Checksum, it.Label, text, blob, s.Now().Unix(),
	)
	if err != nil {
		slog.Error("insert failed", "label", it.Label, "err", err)
		return fmt.Errorf("insert item: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert id: %w", err)
	}
	it.ID = id

	if s.listener != nil {
		s.listener.ItemAdded(it)
	}
	return nil
}

// Remove deletes the row with the given id. Removing an unknown id is an error.
func (s *Store) Remove(id int64) error {
	res, err := s.db.Exec("DELETE FROM items WHERE id = ?", id)
	if err != nil {
		slog.Error("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no item with id %d", id)
	}
	if s.listener != nil {
		s.listener.ItemRemoved(id)
	}
	return nil
}

// Items returns stored items newest first, capped at limit
// (DefaultLimit when limit <= 0).
func (s *Store) Items(limit int) ([]*item.Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.scan(
		`SELECT id, type, source, checksum, label, text_content, image_data, timestamp
		 FROM items ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// Search returns items whose text content or label contains query as a
// substring, newest first, capped at limit (DefaultLimit when limit <= 0).
func (s *Store) Search(query string, limit int) ([]*item.Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	pattern := "%" + query + "%"
	return s.scan(
		`SELECT id, type, source, checksum, label, text_content, image_data, timestamp
		 FROM items WHERE text_content LIKE ? OR label LIKE ?
		 ORDER BY timestamp DESC, id DESC LIMIT ?`, pattern, pattern, limit)
}

// ByChecksum returns the item with the given checksum, or nil when absent.
func (s *Store) ByChecksum(sum string) (*item.Item, error) {
	items, err := s.scan(
		`SELECT id, type, source, checksum, label, text_content, image_data, timestamp
		 FROM items WHERE checksum = ?`, sum)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ByID returns the item with the given row id, or nil when absent.
func (s *Store) ByID(id int64) (*item.Item, error) {
	items, err := s.scan(
		`SELECT id, type, source, checksum, label, text_content, image_data, timestamp
		 FROM items WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// Count returns the number of stored items.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM items"); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// Clear deletes all rows.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM items"); err != nil {
		slog.Error("clear failed", "err", err)
		return fmt.Errorf("clear items: %w", err)
	}
	if s.listener != nil {
		s.listener.Cleared()
	}
	return nil
}

type row struct {
	ID        int64          `db:"id"`
	Type      int            `db:"type"`
	Source    int            `db:"source"`
	Checksum  string         `db:"checksum"`
	Label     string         `db:"label"`
	Text      sql.NullString `db:"text_content"`
	ImageData []byte         `db:"image_data"`
	Timestamp int64          `db:"timestamp"`
}

func (s *Store) scan(query string, args ...any) ([]*item.Item, error) {
	var rows []row
	if err := s.db.Select(&rows, query, args...); err != nil {
		slog.Error("query failed", "err", err)
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]*item.Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.item()
		if err != nil {
			// Malformed rows are omitted rather than aborting the read.
			slog.Debug("skipping undecodable row", "id", r.ID, "err", err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// item reconstructs an Item from a row via the item constructors, so derived
// fields stay consistent with freshly captured content.
func (r row) item() (*item.Item, error) {
	var (
		it  *item.Item
		err error
	)
	source := item.Source(r.Source)

	switch item.Kind(r.Type) {
	case item.KindText:
		if !r.Text.Valid {
			return nil, errors.New("text row without content")
		}
		it, err = item.NewText(r.Text.String, source)
	case item.KindFiles:
		if !r.Text.Valid {
			return nil, errors.New("files row without content")
		}
		// Stored as one newline-joined list; URIs containing newlines are a
		// known ambiguity of this layout.
		it, err = item.NewFiles(strings.Split(r.Text.String, "\n"), source)
	case item.KindImage:
		if len(r.ImageData) == 0 {
			return nil, errors.New("image row without blob")
		}
		img, derr := png.Decode(bytes.NewReader(r.ImageData))
		if derr != nil {
			return nil, fmt.Errorf("png decode: %w", derr)
		}
		it, err = item.NewImage(img, source)
	default:
		return nil, fmt.Errorf("unknown item type %d", r.Type)
	}
	if err != nil {
		return nil, err
	}

	it.ID = r.ID
	it.Time = time.Unix(r.Timestamp, 0)
	return it, nil
}
