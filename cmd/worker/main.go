package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"slidegen_backend/internal/app/di"
	authadapters "slidegen_backend/internal/feature/auth/adapters"
	authusecase "slidegen_backend/internal/feature/auth/usecase"
	assetadapters "slidegen_backend/internal/feature/logoassets/adapters"
	assetusecase "slidegen_backend/internal/feature/logoassets/usecase"
	regenadapters "slidegen_backend/internal/feature/regeneration/adapters"
	"slidegen_backend/internal/feature/regeneration/adapters/gemini"
	"slidegen_backend/internal/feature/regeneration/transport/worker"
	regenusecase "slidegen_backend/internal/feature/regeneration/usecase"
	platformdb "slidegen_backend/internal/platform/db"
	jwtmw "slidegen_backend/internal/platform/jwt"
	"slidegen_backend/internal/platform/progress"
	"slidegen_backend/internal/platform/queue"
	platformredis "slidegen_backend/internal/platform/redis"
	"slidegen_backend/internal/platform/secret"
	"slidegen_backend/internal/shared/ratelimiter"
)

const (
	defaultConcurrency  = 2
	defaultGenPerMinute = 8
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	db := platformdb.OpenDB()

	// Redis（進捗ストアと検出キャッシュ用。キュー本体はasynqが自前で接続する）
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 生成APIキー復号用の暗号化ボールト
	vault, err := secret.NewVaultFromEnv()
	if err != nil {
		log.Fatal("[ERROR] Failed to init credential vault: ", err)
	}

	// Repository
	userRepo := authadapters.NewUserPostgres(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	assetRepo := assetadapters.NewAssetPostgres(db)
	jobRepo := regenadapters.NewJobPostgres(db)

	// ストレージ
	logoStore := assetadapters.NewDiskStore(di.LogoDir())
	slideStore := regenadapters.NewDiskSlideStore(di.SlideDir())

	// 検出キャッシュ。探索パラメータを変えた後はCACHE_FLUSH=1で旧エントリを破棄します。
	searcher := di.NewCandidateSearcher(rdb)
	if os.Getenv("CACHE_FLUSH") == "1" {
		if err := searcher.Flush(context.Background()); err != nil {
			log.Println("[WARN] Failed to flush detection cache:", err)
		}
	}

	// Usecase
	tokens := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), jwtmw.DefaultAccessTokenTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens, vault)
	assetUC := assetusecase.NewAssetUsecase(assetRepo, logoStore, di.NewRemoteFetcher())
	pipelineUC := regenusecase.NewPipelineUsecase(
		jobRepo,
		slideStore,
		gemini.NewSlideGenerator(),
		di.NewDirLocker(di.LogoDir(), searcher),
		assetUC,
		authUC,
		ratelimiter.NewRateLimiter(envInt("GENAI_RATE_LIMIT", defaultGenPerMinute), time.Minute),
		progress.NewStore(rdb, "", 0),
	)

	// Handler
	h := worker.NewHandler(pipelineUC)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeRegenerateSlide, h.HandleRegenerateTask)

	srv := queue.NewServer(envInt("WORKER_CONCURRENCY", defaultConcurrency))
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}

// envInt は環境変数を整数として読みます。未設定・数値でない場合はfallbackを返します。
func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] %s is not a number; using %d", key, fallback)
		return fallback
	}
	return n
}
