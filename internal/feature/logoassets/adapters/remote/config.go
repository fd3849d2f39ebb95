// Package remote provides an HTTPS client for importing logo references by URL.
package remote

import (
	"os"
	"strconv"
	"time"
)

// defaultMaxBytes is the download size cap applied when no override is configured.
const defaultMaxBytes = 10 << 20

// Config holds configuration for the logo fetch client.
type Config struct {
	MaxBytes int64         // maximum accepted response size in bytes
	Timeout  time.Duration // HTTP request timeout
}

// LoadConfig loads fetch configuration from environment variables.
func LoadConfig() Config {
	maxBytes := int64(defaultMaxBytes)
	if v := os.Getenv("LOGO_FETCH_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			maxBytes = n
		}
	}
	return Config{
		MaxBytes: maxBytes,
		Timeout:  15 * time.Second,
	}
}
