package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	// Concurrency
	if c.Concurrency <= 0 {
		warnings = append(warnings, "concurrency should be > 0, defaulting to 10")
		c.Concurrency = 10
	}

	// MaxPagesPerSite
	if c.MaxPagesPerSite <= 0 {
		warnings = append(warnings, "max_pages_per_site should be > 0, defaulting to 5")
		c.MaxPagesPerSite = 5
	}

	// Offset / Limit
	if c.Offset < 0 {
		warnings = append(warnings, "offset cannot be negative, setting to 0")
		c.Offset = 0
	}
	if c.Limit < 0 {
		warnings = append(warnings, "limit cannot be negative, setting to 0 (all)")
		c.Limit = 0
	}

	// OutputDir: default lives next to the input list
	if c.OutputDir == "" {
		if c.RestaurantsPath != "" {
			c.OutputDir = filepath.Join(filepath.Dir(c.RestaurantsPath), "menus")
		} else {
			warnings = append(warnings, "output_dir is empty, defaulting to './menus'")
			c.OutputDir = "./menus"
		}
	}

	// UserAgent
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	// MaxPageSizeBytes
	if c.MaxPageSizeBytes < 0 {
		warnings = append(warnings, "max_page_size_bytes cannot be negative, defaulting to 10MiB")
		c.MaxPageSizeBytes = 0
	}
	if c.MaxPageSizeBytes == 0 {
		c.MaxPageSizeBytes = 10 << 20
	}

	// RobotsTimeout
	if c.RobotsTimeout <= 0 {
		c.RobotsTimeout = 10 * time.Second
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

	// LogLevel / LogFormat
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		warnings = append(warnings, fmt.Sprintf("log_format %q is not 'text' or 'json', using 'text'", c.LogFormat))
		c.LogFormat = "text"
	}

	// HTTPClientSettings defaults
	c.validateHTTPClientSettings()

	// Places defaults
	c.validatePlaces()

	return warnings, nil // AppConfig validation never fails fatally
}

// validateHTTPClientSettings applies defaults to HTTP client settings.
// Connect ~10s and overall ~20s bound every network touch, so a dead host
// can never stall a worker.
func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 20 * time.Second
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
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 10 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
}

// validatePlaces applies defaults to the places-resolution settings.
func (c *AppConfig) validatePlaces() {
	p := &c.Places
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = 15 * time.Second
	}
	if p.NearbyRadiusMeters <= 0 {
		p.NearbyRadiusMeters = 200
	}
	if p.CacheDir == "" {
		p.CacheDir = "./places_cache"
	}
}
