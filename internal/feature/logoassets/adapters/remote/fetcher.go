package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"slidegen_backend/internal/feature/logoassets/usecase"
)

// Fetcher はHTTPS経由でロゴ参照画像を取得するRemoteFetcher実装です。
type Fetcher struct {
	cfg    Config
	client *http.Client
}

// FetcherがRemoteFetcherを実装していることをコンパイル時に検証します。
var _ usecase.RemoteFetcher = (*Fetcher)(nil)

// NewFetcher は指定された設定とHTTPクライアントでFetcherの新しいインスタンスを生成します。
func NewFetcher(cfg Config, client *http.Client) *Fetcher {
	return &Fetcher{cfg: cfg, client: client}
}

// Fetch はrawURLから画像データを取得します。取得先はhttpsに限定し、
// レスポンスはMaxBytesを超えた時点でエラーにします。
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid logo url: %w", err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("logo url must use https, got %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("logo fetch http %d", res.StatusCode)
	}

	// 上限+1バイトまで読み、超過を区別できるようにする
	data, err := io.ReadAll(io.LimitReader(res.Body, f.cfg.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.cfg.MaxBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", f.cfg.MaxBytes)
	}
	return data, nil
}
