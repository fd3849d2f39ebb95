package di

import (
	lockadapters "slidegen_backend/internal/feature/logolock/adapters"
	"slidegen_backend/internal/feature/logolock/match"
	lockhandler "slidegen_backend/internal/feature/logolock/transport/handler"
	lockusecase "slidegen_backend/internal/feature/logolock/usecase"
	"slidegen_backend/internal/platform/cache"

	"github.com/redis/go-redis/v9"
)

// NewCandidateSearcher はピクセル探索のサーチャーを生成します。
// Redisが使える場合は検出結果をキャッシュします（nilなら素通し）。
func NewCandidateSearcher(rdb *redis.Client) *cache.CachingSearcher {
	return cache.NewCachingSearcher(rdb, 0, match.NewSearcher(), "")
}

// NewRequestLockerFactory は診断エンドポイント用のロッカーファクトリを返します。
// リクエストに同梱されたロゴ一式をその場でソースに仕立てます。
func NewRequestLockerFactory(searcher lockusecase.CandidateSearcher) lockhandler.LockerFactory {
	return func(logos map[string][]byte, opts lockusecase.Options) lockhandler.LogoLocker {
		return lockusecase.NewLockUsecase(lockadapters.NewMemoryLogoSource(logos), searcher, opts)
	}
}

// NewDirLocker はロゴディレクトリを参照するロッカーを生成します。
// ワーカーの再生成パイプラインが使います。
func NewDirLocker(dir string, searcher lockusecase.CandidateSearcher) *lockusecase.LockUsecase {
	return lockusecase.NewLockUsecase(lockadapters.NewDirLogoSource(dir), searcher, lockusecase.Options{})
}
