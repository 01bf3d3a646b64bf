package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en-US", "en-US"},
		{"en_US.UTF-8", "en-US"},
		{"de_DE", "de-DE"},
		{"sr_RS@latin", "sr-RS"},
		{"fr", "fr"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocale(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocale_Invalid(t *testing.T) {
	_, err := ParseLocale("!!")
	assert.Error(t, err)
}

func TestDetectLocale_ConfigWins(t *testing.T) {
	t.Setenv("LANG", "de_DE.UTF-8")
	cfg := NewConfig()
	cfg.Locale = "ja_JP"

	assert.Equal(t, "ja-JP", cfg.DetectLocale())
}

func TestDetectLocale_FromEnvironment(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "C")
	t.Setenv("LANG", "de_DE.UTF-8")

	assert.Equal(t, "de-DE", NewConfig().DetectLocale())
}

func TestDetectLocale_FallsBack(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "C.UTF-8")

	assert.Equal(t, FallbackLocale, NewConfig().DetectLocale())
}
