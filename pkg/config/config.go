package config

import "time"

// AppConfig holds the global application configuration
type AppConfig struct {
	ArchiveRoot        string           `yaml:"archive_root"`
	InputFile          string           `yaml:"input_file,omitempty"`
	MetadataDBPath     string           `yaml:"metadata_db,omitempty"`
	TraversalOrder     string           `yaml:"traversal_order,omitempty"` // "forward" or "alternate"
	DefaultExtension   string           `yaml:"default_extension,omitempty"`
	Workers            int              `yaml:"workers,omitempty"`
	UserAgent          string           `yaml:"user_agent,omitempty"`
	MaxRetries         int              `yaml:"max_retries,omitempty"`
	InitialRetryDelay  time.Duration    `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay      time.Duration    `yaml:"max_retry_delay,omitempty"`
	MaxRedirects       int              `yaml:"max_redirects,omitempty"`
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	Transcribe         TranscribeConfig `yaml:"transcribe,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
	ForceAttemptHTTP2   *bool         `yaml:"force_attempt_http2,omitempty"`     // nil=default, true=force, false=disable
}

// TranscribeConfig holds settings for the sidecar transcription step
type TranscribeConfig struct {
	Tool       string   `yaml:"tool,omitempty"`       // External speech-to-text executable
	Format     string   `yaml:"format,omitempty"`     // Sidecar format: txt, srt or vtt
	Extensions []string `yaml:"extensions,omitempty"` // Audio extensions to consider
	Overwrite  bool     `yaml:"overwrite,omitempty"`  // Regenerate existing sidecars
}
