// Package item defines the clipboard history entry: its content kinds, the
// content-addressed checksum used for deduplication, and the derived
// single-line display label.
package item

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path"
	"strings"
	"time"
)

// Kind identifies what a clipboard item holds. The values are persisted as
// integer ordinals and must not be reordered.
type Kind int

const (
	KindText Kind = iota
	KindImage
	KindFiles
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindFiles:
		return "files"
	default:
		return "unknown"
	}
}

// Source identifies which selection buffer produced an item. The values are
// persisted as integer ordinals and must not be reordered.
type Source int

const (
	SourceClipboard Source = iota
	SourcePrimary
)

func (s Source) String() string {
	if s == SourcePrimary {
		return "primary"
	}
	return "clipboard"
}

// Other returns the opposite buffer, the mirror target for selection sync.
func (s Source) Other() Source {
	if s == SourcePrimary {
		return SourceClipboard
	}
	return SourcePrimary
}

// labelMax is the maximum label length in runes, ellipsis included.
const labelMax = 50

// Item is one clipboard history entry. Items are immutable once constructed
// except for ID, which storage assigns on first insert. For KindFiles, Text
// holds the newline-joined URI list — the canonical form used for the
// checksum and for substring search.
type Item struct {
	ID       int64
	Kind     Kind
	Source   Source
	Text     string
	Image    image.Image
	URIs     []string
	Checksum string
	Label    string
	Time     time.Time
}

// NewText builds a text item. The checksum is a SHA-1 over the raw UTF-8
// bytes; empty text produces no item.
func NewText(text string, source Source) (*Item, error) {
	if text == "" {
		return nil, errors.New("item: empty text")
	}
	return &Item{
		Kind:     KindText,
		Source:   source,
		Text:     text,
		Checksum: checksum([]byte(text)),
		Label:    textLabel(text),
		Time:     time.Now(),
	}, nil
}

// NewImage builds an image item. The checksum is a SHA-1 over the PNG
// encoding of the pixel data. If encoding fails the checksum falls back to
// the "WxH" dimension string — deterministic, but two unencodable images of
// equal size collide.
func NewImage(img image.Image, source Source) (*Item, error) {
	if img == nil {
		return nil, errors.New("item: nil image")
	}
	b := img.Bounds()
	it := &Item{
		Kind:   KindImage,
		Source: source,
		Image:  img,
		Label:  fmt.Sprintf("[Image %dx%d]", b.Dx(), b.Dy()),
		Time:   time.Now(),
	}
	if data, err := it.PNG(); err == nil {
		it.Checksum = checksum(data)
	} else {
		it.Checksum = checksum(fmt.Appendf(nil, "%dx%d", b.Dx(), b.Dy()))
	}
	return it, nil
}

// NewFiles builds a file-list item from URIs in their given order. The
// checksum is a SHA-1 over the newline-joined list.
func NewFiles(uris []string, source Source) (*Item, error) {
	if len(uris) == 0 {
		return nil, errors.New("item: empty URI list")
	}
	joined := strings.Join(uris, "\n")
	it := &Item{
		Kind:     KindFiles,
		Source:   source,
		Text:     joined,
		URIs:     append([]string(nil), uris...),
		Checksum: checksum([]byte(joined)),
		Time:     time.Now(),
	}
	if len(uris) == 1 {
		it.Label = fmt.Sprintf("[File: %s]", path.Base(uris[0]))
	} else {
		it.Label = fmt.Sprintf("[%d files]", len(uris))
	}
	return it, nil
}

// PNG returns the canonical lossless encoding of an image item, used for the
// checksum and for persistence.
func (it *Item) PNG() ([]byte, error) {
	if it.Image == nil {
		return nil, errors.New("item: not an image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, it.Image); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Equals reports whether two items are interchangeable. Identity is checksum
// equality, not payload equality.
func (it *Item) Equals(other *Item) bool {
	return other != nil && it.Checksum == other.Checksum
}

func checksum(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// textLabel produces the single-line summary for a text item: newlines,
// carriage returns and tabs become spaces, runs of spaces collapse, the
// result is trimmed and truncated to labelMax runes with a trailing ellipsis.
func textLabel(text string) string {
	normalized := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(text)

	var b strings.Builder
	b.Grow(len(normalized))
	prevSpace := false
	for _, r := range normalized {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	s := strings.TrimSpace(b.String())

	if s == "" {
		// Whitespace-only content still needs a non-empty label.
		return "[Text]"
	}
	runes := []rune(s)
	if len(runes) > labelMax {
		return string(runes[:labelMax-3]) + "..."
	}
	return s
}
