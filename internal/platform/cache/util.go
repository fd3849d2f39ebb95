package cache

import (
	"os"
	"time"
)

// defaultDetectionTTL は検出キャッシュの既定TTLです。
const defaultDetectionTTL = 12 * time.Hour

// DetectionCacheTTL は検出キャッシュのTTLを環境変数REDIS_CACHE_TTLから返します。
// 未設定・解析不能・非正の場合は既定の12時間を使います。
func DetectionCacheTTL() time.Duration {
	v := os.Getenv("REDIS_CACHE_TTL")
	if v == "" {
		return defaultDetectionTTL
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return defaultDetectionTTL
	}
	return d
}
