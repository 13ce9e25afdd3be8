package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ppd/0.3").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on HTTP 429/503 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ResolverConfig holds settings for link resolution.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the media-link API URL (default DefaultEndpoint).
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultEndpoint is the publisher's media-link API.
const DefaultEndpoint = "https://pubmedia.jw-api.org/GETPUBMEDIALINKS"

// FetchConfig holds settings for the batch fetcher.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the delay between consecutive downloads (default 0).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	// Progress enables the per-file progress line while streaming.
	Progress bool `json:"progress" yaml:"progress"`
}

// HistoryConfig holds settings for the optional download ledger.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// Enabled reports whether a ledger path is configured.
func (c HistoryConfig) Enabled() bool {
	return c.Path != ""
}
