// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"slidegen_backend/internal/feature/logolock/match"
	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/logolock/usecase"
)

// paramsVersion は探索パラメータ世代のキャッシュキー要素です。
// 探索の定数（刻み幅・許容スコア等）を調整したらここを上げ、旧エントリを無効化します。
const paramsVersion = "v1"

// CachingSearcher decorates a CandidateSearcher with Redis caching.
// Detection is deterministic for a given (source, logo) pair, so repeated
// runs over the same slide skip the expensive pixel search entirely.
type CachingSearcher struct {
	inner     usecase.CandidateSearcher
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// CachingSearcherがCandidateSearcherを実装していることをコンパイル時に検証します。
var _ usecase.CandidateSearcher = (*CachingSearcher)(nil)

// NewCachingSearcher decorates a CandidateSearcher with Redis caching.
// If ttl is 0, it defaults to 12 hours. If namespace is empty, it uses "detect".
func NewCachingSearcher(rdb *redis.Client, ttl time.Duration, inner usecase.CandidateSearcher, namespace string) *CachingSearcher {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if namespace == "" {
		namespace = "detect"
	}
	return &CachingSearcher{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Search retrieves candidates, checking cache first then falling back to the
// pixel search.
func (c *CachingSearcher) Search(ctx context.Context, source, logo *raster.Raw) ([]match.Candidate, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Search(ctx, source, logo)
	}

	key := c.cacheKey(source, logo)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []match.Candidate
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the pixel search
	out, err := c.inner.Search(ctx, source, logo)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Flush removes every cached detection in this namespace.
// Used after retuning the search so stale results never surface.
func (c *CachingSearcher) Flush(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// cacheKey generates a cache key for a (source, logo) pair.
func (c *CachingSearcher) cacheKey(source, logo *raster.Raw) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		c.namespace,
		hashRaw(source),
		hashRaw(logo),
		safe(paramsVersion),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSearcher) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// hashRaw returns a short content hash of a pixel buffer.
// Dimensions are hashed along with the pixels so equal byte sequences with
// different shapes never collide.
func hashRaw(r *raster.Raw) string {
	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], uint32(r.W))
	binary.BigEndian.PutUint32(dims[4:8], uint32(r.H))
	h.Write(dims[:])
	h.Write(r.Pix)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
