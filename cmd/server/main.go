package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"slidegen_backend/internal/app/di"
	"slidegen_backend/internal/app/router"
	authadapters "slidegen_backend/internal/feature/auth/adapters"
	authhandler "slidegen_backend/internal/feature/auth/transport/handler"
	authusecase "slidegen_backend/internal/feature/auth/usecase"
	"slidegen_backend/internal/feature/brandscan/adapters/vision"
	brandscanhandler "slidegen_backend/internal/feature/brandscan/transport/handler"
	brandscanusecase "slidegen_backend/internal/feature/brandscan/usecase"
	"slidegen_backend/internal/feature/deck/adapters/pptx"
	deckhandler "slidegen_backend/internal/feature/deck/transport/handler"
	deckusecase "slidegen_backend/internal/feature/deck/usecase"
	assetadapters "slidegen_backend/internal/feature/logoassets/adapters"
	assethandler "slidegen_backend/internal/feature/logoassets/transport/handler"
	assetusecase "slidegen_backend/internal/feature/logoassets/usecase"
	lockhandler "slidegen_backend/internal/feature/logolock/transport/handler"
	lockusecase "slidegen_backend/internal/feature/logolock/usecase"
	regenadapters "slidegen_backend/internal/feature/regeneration/adapters"
	jobhandler "slidegen_backend/internal/feature/regeneration/transport/handler"
	regenusecase "slidegen_backend/internal/feature/regeneration/usecase"
	platformdb "slidegen_backend/internal/platform/db"
	jwtmw "slidegen_backend/internal/platform/jwt"
	"slidegen_backend/internal/platform/progress"
	"slidegen_backend/internal/platform/queue"
	platformredis "slidegen_backend/internal/platform/redis"
	"slidegen_backend/internal/platform/secret"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	// db
	db := platformdb.OpenDB()

	// Redis
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

	// 生成APIキー保管用の暗号化ボールト
	vault, err := secret.NewVaultFromEnv()
	if err != nil {
		log.Fatal("[ERROR] Failed to init credential vault: ", err)
	}

	// Cloud Visionクライアント（ブランドスキャン用）
	scanner, err := vision.NewVisionLogoScanner(context.Background())
	if err != nil {
		log.Fatal("[ERROR] Failed to init Cloud Vision client: ", err)
	}
	defer func() {
		if err := scanner.Close(); err != nil {
			log.Println("[ERROR] Failed to close Cloud Vision client:", err)
		}
	}()

	// ジョブキュー（asynq）クライアント
	queueClient := queue.NewClient()
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Println("[ERROR] Failed to close queue client:", err)
		}
	}()

	// Repository
	userRepo := authadapters.NewUserPostgres(db)
	sessionRepo := di.NewSessionRepository(rdb, db)
	assetRepo := assetadapters.NewAssetPostgres(db)
	jobRepo := regenadapters.NewJobPostgres(db)

	// ストレージ
	logoStore := assetadapters.NewDiskStore(di.LogoDir())
	slideStore := regenadapters.NewDiskSlideStore(di.SlideDir())

	// Usecase
	tokens := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), jwtmw.DefaultAccessTokenTTL)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens, vault)
	assetUC := assetusecase.NewAssetUsecase(assetRepo, logoStore, di.NewRemoteFetcher())
	scanUC := brandscanusecase.NewScanUsecase(scanner)
	deckUC := deckusecase.NewDeckUsecase(pptx.NewParser())
	jobUC := regenusecase.NewJobUsecase(jobRepo, slideStore, queue.NewEnqueuer(queueClient),
		progress.NewStore(rdb, "", 0))

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	jobH := jobhandler.NewJobHandler(jobUC)
	assetH := assethandler.NewAssetHandler(assetUC)
	scanH := brandscanhandler.NewScanHandler(scanUC)
	deckH := deckhandler.NewDeckHandler(deckUC)
	lockH := lockhandler.NewLockHandler(
		di.NewRequestLockerFactory(di.NewCandidateSearcher(rdb)), lockusecase.Options{})

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Auth:   authH,
		Jobs:   jobH,
		Assets: assetH,
		Scan:   scanH,
		Deck:   deckH,
		Lock:   lockH,
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
