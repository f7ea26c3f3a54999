package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := &AppConfig{ArchiveRoot: "/tmp/archive"}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "forward", cfg.TraversalOrder)
	assert.Equal(t, "mp3", cfg.DefaultExtension)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 1*time.Second, cfg.InitialRetryDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxRetryDelay)
	assert.Equal(t, 20, cfg.MaxRedirects)
	assert.Equal(t, 10*time.Minute, cfg.HTTPClientSettings.Timeout)
	assert.Equal(t, 100, cfg.HTTPClientSettings.MaxIdleConns)
	assert.Equal(t, "txt", cfg.Transcribe.Format)
	assert.Equal(t, DefaultAudioExtensions, cfg.Transcribe.Extensions)
}

func TestValidateWarnsOnEmptyArchiveRoot(t *testing.T) {
	cfg := &AppConfig{}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "archive_root")
}

func TestValidateTraversalOrder(t *testing.T) {
	tests := []struct {
		name     string
		order    string
		want     string
		wantWarn bool
	}{
		{"forward kept", "forward", "forward", false},
		{"alternate kept", "alternate", "alternate", false},
		{"empty defaulted", "", "forward", false},
		{"unknown defaulted with warning", "shuffled", "forward", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &AppConfig{ArchiveRoot: "/tmp/a", TraversalOrder: tt.order}
			warnings, err := cfg.Validate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.TraversalOrder)
			if tt.wantWarn {
				assert.NotEmpty(t, warnings)
			} else {
				assert.Empty(t, warnings)
			}
		})
	}
}

func TestValidateNegativeRetriesClamped(t *testing.T) {
	cfg := &AppConfig{ArchiveRoot: "/tmp/a", MaxRetries: -2}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.NotEmpty(t, warnings)
}

func TestValidateDelayOrdering(t *testing.T) {
	cfg := &AppConfig{
		ArchiveRoot:       "/tmp/a",
		MaxRetries:        2,
		InitialRetryDelay: 1 * time.Minute,
		MaxRetryDelay:     5 * time.Second,
	}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.InitialRetryDelay)
	assert.NotEmpty(t, warnings)
}

func TestValidateTranscribeFormat(t *testing.T) {
	for _, format := range []string{"txt", "srt", "vtt"} {
		cfg := &AppConfig{ArchiveRoot: "/tmp/a", Transcribe: TranscribeConfig{Format: format}}
		_, err := cfg.Validate()
		require.NoError(t, err, "format %s", format)
		assert.Equal(t, format, cfg.Transcribe.Format)
	}

	cfg := &AppConfig{ArchiveRoot: "/tmp/a", Transcribe: TranscribeConfig{Format: "pdf"}}
	_, err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}
