// Package settings holds the runtime preferences that gate capture,
// synchronisation and history presentation.
package settings

import "github.com/spf13/viper"

// History size bounds and default, matching the preferences surface.
const (
	MinHistorySize     = 1
	MaxHistorySize     = 500
	DefaultHistorySize = 100
)

// Settings is the full configuration surface. ShowPreview, ConfirmClear and
// PasteOnSelect gate nothing in the core; they are carried so front-ends can
// read them from the same place.
type Settings struct {
	HistorySize         int
	UsePrimarySelection bool
	SyncSelections      bool
	SaveImages          bool
	SaveFiles           bool
	KeepContent         bool
	ShowPreview         bool
	ConfirmClear        bool
	PasteOnSelect       bool
	ExcludePattern      string
}

// Defaults returns the stock configuration.
func Defaults() *Settings {
	return &Settings{
		HistorySize:         DefaultHistorySize,
		UsePrimarySelection: true,
		SyncSelections:      false,
		SaveImages:          true,
		SaveFiles:           true,
		KeepContent:         true,
		ShowPreview:         true,
		ConfirmClear:        true,
		PasteOnSelect:       false,
		ExcludePattern:      "",
	}
}

// BindDefaults registers every settings key with its default value so that
// viper resolves keys that appear in neither flags, env nor config file.
func BindDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("history-size", d.HistorySize)
	v.SetDefault("use-primary-selection", d.UsePrimarySelection)
	v.SetDefault("sync-selections", d.SyncSelections)
	v.SetDefault("save-images", d.SaveImages)
	v.SetDefault("save-files", d.SaveFiles)
	v.SetDefault("keep-content", d.KeepContent)
	v.SetDefault("show-preview", d.ShowPreview)
	v.SetDefault("confirm-clear", d.ConfirmClear)
	v.SetDefault("paste-on-select", d.PasteOnSelect)
	v.SetDefault("exclude-pattern", d.ExcludePattern)
}

// FromViper reads the settings keys out of v and clamps them into range.
func FromViper(v *viper.Viper) *Settings {
	s := &Settings{
		HistorySize:         v.GetInt("history-size"),
		UsePrimarySelection: v.GetBool("use-primary-selection"),
		SyncSelections:      v.GetBool("sync-selections"),
		SaveImages:          v.GetBool("save-images"),
		SaveFiles:           v.GetBool("save-files"),
		KeepContent:         v.GetBool("keep-content"),
		ShowPreview:         v.GetBool("show-preview"),
		ConfirmClear:        v.GetBool("confirm-clear"),
		PasteOnSelect:       v.GetBool("paste-on-select"),
		ExcludePattern:      v.GetString("exclude-pattern"),
	}
	s.clamp()
	return s
}

func (s *Settings) clamp() {
	if s.HistorySize < MinHistorySize {
		s.HistorySize = DefaultHistorySize
	}
	if s.HistorySize > MaxHistorySize {
		s.HistorySize = MaxHistorySize
	}
}

// Snapshot returns the settings as a key→value map, for status reporting.
func (s *Settings) Snapshot() map[string]any {
	return map[string]any{
		"history-size":          s.HistorySize,
		"use-primary-selection": s.UsePrimarySelection,
		"sync-selections":       s.SyncSelections,
		"save-images":           s.SaveImages,
		"save-files":            s.SaveFiles,
		"keep-content":          s.KeepContent,
		"show-preview":          s.ShowPreview,
		"confirm-clear":         s.ConfirmClear,
		"paste-on-select":       s.PasteOnSelect,
		"exclude-pattern":       s.ExcludePattern,
	}
}
