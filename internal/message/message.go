// Package message defines the clipd control protocol spoken between the CLI
// sub-commands and a running daemon.
//
// All messages are newline-delimited JSON. Each message is exactly one line:
// <json>\n. Image payloads never travel over the socket; entries carry the
// label (which holds the dimensions) instead.
package message

import (
	"encoding/json"
	"fmt"

	"go.klb.dev/clipd/internal/item"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests.
	TypeList   Type = "LIST"
	TypeSearch Type = "SEARCH"
	TypeSelect Type = "SELECT"
	TypeRemove Type = "REMOVE"
	TypeClear  Type = "CLEAR"
	TypeStatus Type = "STATUS"

	// Responses.
	TypeItems          Type = "ITEMS"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
	TypeStatusResponse Type = "STATUS_RESPONSE"
)

// Entry is the wire form of a stored history item.
type Entry struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Source    string `json:"source"`
	Label     string `json:"label"`
	Checksum  string `json:"checksum"`
	Timestamp int64  `json:"timestamp"`
}

// EntryOf converts a stored item to its wire form.
func EntryOf(it *item.Item) Entry {
	return Entry{
		ID:        it.ID,
		Kind:      it.Kind.String(),
		Source:    it.Source.String(),
		Label:     it.Label,
		Checksum:  it.Checksum,
		Timestamp: it.Time.Unix(),
	}
}

// Status carries the daemon's health snapshot.
type Status struct {
	Running  bool           `json:"running"`
	Items    int            `json:"items"`
	Settings map[string]any `json:"settings"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// LIST / SEARCH
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`

	// SELECT / REMOVE
	ID int64 `json:"id,omitempty"`

	// SELECT by content identity (used when ID is zero)
	Checksum string `json:"checksum,omitempty"`

	// ITEMS
	Items []Entry `json:"items,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// Errorf builds an ERROR response.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}
