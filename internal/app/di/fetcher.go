// Package di provides dependency injection factories for creating application components.
package di

import (
	"slidegen_backend/internal/feature/logoassets/adapters/remote"
	platformhttp "slidegen_backend/internal/platform/http"
)

// NewRemoteFetcher creates a fully configured remote logo fetcher with HTTP client.
func NewRemoteFetcher() *remote.Fetcher {
	cfg := remote.LoadConfig()
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
	return remote.NewFetcher(cfg, httpClient)
}
