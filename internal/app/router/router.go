// Package router はHTTP APIの全ルート定義を提供します。
package router

import (
	authhandler "slidegen_backend/internal/feature/auth/transport/handler"
	brandscanhandler "slidegen_backend/internal/feature/brandscan/transport/handler"
	deckhandler "slidegen_backend/internal/feature/deck/transport/handler"
	assethandler "slidegen_backend/internal/feature/logoassets/transport/handler"
	lockhandler "slidegen_backend/internal/feature/logolock/transport/handler"
	jobhandler "slidegen_backend/internal/feature/regeneration/transport/handler"
	healthhandler "slidegen_backend/internal/platform/http/handler"
	jwtmw "slidegen_backend/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

// Handlers はルーターが束ねる各フィーチャーのハンドラー一式です。
type Handlers struct {
	Auth   *authhandler.AuthHandler
	Jobs   *jobhandler.JobHandler
	Assets *assethandler.AssetHandler
	Scan   *brandscanhandler.ScanHandler
	Deck   *deckhandler.DeckHandler
	Lock   *lockhandler.LockHandler
}

// NewRouter はAPIサーバーのルーターを構築します。
func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", healthhandler.Health)

	v1 := r.Group("/v1")

	// 新規ユーザー登録
	v1.POST("/signup", h.Auth.Signup)
	// ログイン（JWT 発行）
	v1.POST("/login", h.Auth.Login)
	// リフレッシュトークンによるアクセストークン再発行
	v1.POST("/refresh", h.Auth.Refresh)
	// ログアウト（リフレッシュトークン破棄）
	v1.POST("/logout", h.Auth.Logout)

	// 認証必須のルート
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	auth := v1.Group("")
	auth.Use(jwtmw.AuthRequired())
	{
		// 生成APIキーの登録
		auth.PUT("/credentials/genai", h.Auth.SetCredential)

		// 再生成ジョブ
		auth.POST("/jobs", h.Jobs.Create)
		auth.GET("/jobs/:id", h.Jobs.Get)
		auth.GET("/jobs/:id/image", h.Jobs.Image)

		// ロゴライブラリ
		auth.POST("/logos", h.Assets.Upload)
		auth.POST("/logos/import", h.Assets.Import)
		auth.GET("/logos", h.Assets.List)
		auth.DELETE("/logos/:id", h.Assets.Delete)

		// 入力補助（ロゴ検出・PPTXテキスト抽出）
		auth.POST("/brandscan", h.Scan.Scan)
		auth.POST("/decks/extract", h.Deck.Extract)

		// ロゴロック診断
		auth.POST("/logolock/check", h.Lock.Check)
	}

	return r
}
