package config

import (
	"fmt"
	"time"

	"podarchive/pkg/utils"
)

// DefaultAudioExtensions is the audio file set considered for transcription
var DefaultAudioExtensions = []string{
	"mp3", "m4a", "m4b", "wav", "flac", "aac", "ogg", "opus", "mp4", "mkv", "mov",
}

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// ArchiveRoot is required for every archive-touching command; commands
	// that need it check again after flag overrides.
	if c.ArchiveRoot == "" {
		warnings = append(warnings, "archive_root is empty; it must be provided via config or -archive")
	}

	// TraversalOrder
	switch c.TraversalOrder {
	case "":
		c.TraversalOrder = "forward"
	case "forward", "alternate":
	default:
		warnings = append(warnings, fmt.Sprintf(
			"traversal_order %q is not recognized, defaulting to 'forward'", c.TraversalOrder))
		c.TraversalOrder = "forward"
	}

	// DefaultExtension (podcast enclosures without a path extension are
	// overwhelmingly mp3; still configurable)
	if c.DefaultExtension == "" {
		c.DefaultExtension = "mp3"
	}

	// Workers
	if c.Workers <= 0 {
		c.Workers = 1
	}

	// MaxRetries
	if c.MaxRetries < 0 {
		warnings = append(warnings, "max_retries cannot be negative, setting to 0")
		c.MaxRetries = 0
	}
	if c.MaxRetries == 0 && c.InitialRetryDelay == 0 {
		c.MaxRetries = 3
	}

	// Retry delays (only if retries enabled)
	if c.MaxRetries > 0 {
		if c.InitialRetryDelay <= 0 {
			c.InitialRetryDelay = 1 * time.Second
		}
		if c.MaxRetryDelay <= 0 {
			c.MaxRetryDelay = 30 * time.Second
		}
	}

	// InitialRetryDelay > MaxRetryDelay check
	if c.InitialRetryDelay > c.MaxRetryDelay && c.MaxRetryDelay > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"initial_retry_delay (%v) > max_retry_delay (%v), using max_retry_delay for initial",
			c.InitialRetryDelay, c.MaxRetryDelay))
		c.InitialRetryDelay = c.MaxRetryDelay
	}

	// MaxRedirects
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 20
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	// Transcription settings
	if warn, terr := c.validateTranscribe(); terr != nil {
		return warnings, terr
	} else if warn != "" {
		warnings = append(warnings, warn)
	}

	return warnings, nil // AppConfig validation never fails fatally
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 10 * time.Minute // large audio files over slow links
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 100
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 15 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// validateTranscribe applies defaults to the transcription settings.
func (c *AppConfig) validateTranscribe() (warning string, err error) {
	t := &c.Transcribe
	switch t.Format {
	case "":
		t.Format = "txt"
	case "txt", "srt", "vtt":
	default:
		return "", fmt.Errorf("%w: transcribe format %q (want txt, srt or vtt)",
			utils.ErrConfigValidation, t.Format)
	}
	if len(t.Extensions) == 0 {
		t.Extensions = DefaultAudioExtensions
	}
	return "", nil
}
