package settings

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	BindDefaults(v)

	s := FromViper(v)
	assert.Equal(t, Defaults(), s)
}

func TestFromViperClampsHistorySize(t *testing.T) {
	v := viper.New()
	BindDefaults(v)

	v.Set("history-size", 0)
	assert.Equal(t, DefaultHistorySize, FromViper(v).HistorySize)

	v.Set("history-size", 9999)
	assert.Equal(t, MaxHistorySize, FromViper(v).HistorySize)

	v.Set("history-size", 42)
	assert.Equal(t, 42, FromViper(v).HistorySize)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	BindDefaults(v)
	v.Set("sync-selections", true)
	v.Set("save-images", false)
	v.Set("exclude-pattern", "secret")

	s := FromViper(v)
	assert.True(t, s.SyncSelections)
	assert.False(t, s.SaveImages)
	assert.Equal(t, "secret", s.ExcludePattern)
}
