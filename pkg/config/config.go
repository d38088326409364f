package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"menu-scraper/pkg/utils"
)

// AppConfig holds the global application configuration. Zero values are
// filled in by Validate; CLI flags may override fields before validation.
type AppConfig struct {
	RestaurantsPath  string           `yaml:"restaurants_path"`
	OutputDir        string           `yaml:"output_dir"`                  // Default: <dir of restaurants_path>/menus
	Offset           int              `yaml:"offset,omitempty"`            // Skip the first N seeds
	Limit            int              `yaml:"limit,omitempty"`             // Process at most N seeds (0 = all)
	Concurrency      int              `yaml:"concurrency"`                 // Parallel site processors
	MaxPagesPerSite  int              `yaml:"max_pages_per_site"`          // Saved-document budget per site
	UserAgent        string           `yaml:"user_agent,omitempty"`        // Sent on every request and tested against robots.txt
	MaxPageSizeBytes int64            `yaml:"max_page_size_bytes,omitempty"`
	RobotsTimeout    time.Duration    `yaml:"robots_timeout,omitempty"` // Per robots.txt fetch
	MaxRetries       int              `yaml:"max_retries,omitempty"`    // Robots/places fetches only; candidate fetches are single-attempt
	InitialRetryDelay time.Duration   `yaml:"initial_retry_delay,omitempty"`
	MaxRetryDelay    time.Duration    `yaml:"max_retry_delay,omitempty"`
	WriteTreeReport  bool             `yaml:"write_tree_report,omitempty"` // Write structure.txt at the output root after a run
	LogLevel         string           `yaml:"log_level,omitempty"`
	LogFormat        string           `yaml:"log_format,omitempty"` // "text" or "json"
	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
	Places           PlacesConfig     `yaml:"places,omitempty"`
}

// PlacesConfig holds settings for the Google Places resolution glue.
type PlacesConfig struct {
	APIKey             string        `yaml:"api_key,omitempty"` // Usually supplied via flag/env, not the file
	CacheDir           string        `yaml:"cache_dir,omitempty"`
	RequestTimeout     time.Duration `yaml:"request_timeout,omitempty"`
	NearbyRadiusMeters int           `yaml:"nearby_radius_meters,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout               time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns          int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost   int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout       time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout   time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // Explicitly enable/disable HTTP/2 attempt (use pointer for tri-state: nil=default, true=force, false=disable)
	DialerTimeout         time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive       time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval
}

// DefaultUserAgent is sent when user_agent is not configured. Kept as a
// mainstream browser string; several restaurant platforms serve bot UAs an
// interstitial instead of the real page.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads an AppConfig from a YAML file. An empty path yields a zero
// config so flag-only invocations work; defaults are applied by Validate.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file '%s': %w: %w", path, utils.ErrConfigValidation, err)
	}
	return cfg, nil
}
