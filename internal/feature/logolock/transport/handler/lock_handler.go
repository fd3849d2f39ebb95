// Package handler はロゴロック機能のHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/logolock/domain/entity"
	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/logolock/usecase"
)

// LogoLocker はロゴロック処理のユースケースを抽象化します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
//
// 検出・サイズ読取・検証の失敗時も、エラーとあわせてメタデータ入りの
// 結果を返すことを前提とします。
type LogoLocker interface {
	Lock(ctx context.Context, source *raster.Raw, logoNames []string, generated []byte) (*entity.LockResult, error)
}

// LockerFactory はアップロードされたロゴ参照の集合からLogoLockerを組み立てます。
// 参照集合はリクエストごとに異なるため、ユースケースの生成もリクエスト単位です。
type LockerFactory func(logos map[string][]byte, opts usecase.Options) LogoLocker

// LockHandler はロゴロックの診断エンドポイントを処理します。
type LockHandler struct {
	newLocker LockerFactory
	defaults  usecase.Options
}

// NewLockHandler はLockHandlerの新しいインスタンスを生成します。
func NewLockHandler(newLocker LockerFactory, defaults usecase.Options) *LockHandler {
	return &LockHandler{newLocker: newLocker, defaults: defaults}
}

// Check はスライド原本・生成画像・ロゴ参照を受け取り、ロック結果を返します。
//
// エンドポイント: POST /v1/logolock/check
// Content-Type: multipart/form-data
// フィールド: source（スライド原本）、generated（生成画像）、logos（ロゴ参照、複数可）
// 任意フィールド: tolerance（検証許容値）、skip_verify、missing（skip|fail）
//
// ロック処理自体の成否は200のok/metadataで表現します。HTTPエラーは
// リクエストの形式不備や内部エラーに限ります。
func (h *LockHandler) Check(c *gin.Context) {
	source, err := readFormImage(c, "source")
	if err != nil {
		slog.Warn("スライド原本の取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "復号可能なスライド原本（source）が必要です"})
		return
	}

	generated, err := readFormFile(c, "generated")
	if err != nil {
		slog.Warn("生成画像の取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "生成画像（generated）が必要です"})
		return
	}

	names, logos, err := readLogoFiles(c)
	if err != nil {
		slog.Warn("ロゴ参照の取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "ロゴ参照（logos）を読み込めません"})
		return
	}

	locker := h.newLocker(logos, h.requestOptions(c))
	result, err := locker.Lock(c.Request.Context(), source, names, generated)
	if err != nil && !isLockFailure(err) {
		slog.Error("ロゴロック処理に失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "ロゴロック処理に失敗しました"})
		return
	}
	if err != nil {
		slog.Info("ロゴロックが不成立", "error", err, "logo_count", result.Metadata.LogoCount)
	}

	resp := api.LockCheckResponse{OK: result.OK, Metadata: toAPIMetadata(result.Metadata)}
	if result.OK {
		resp.Image = base64.StdEncoding.EncodeToString(result.Image)
	}
	c.JSON(http.StatusOK, resp)
}

// requestOptions は既定のOptionsにリクエストの上書き指定を反映します。
func (h *LockHandler) requestOptions(c *gin.Context) usecase.Options {
	opts := h.defaults
	if v := c.PostForm("tolerance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			opts.VerifyTolerance = f
		}
	}
	if v := c.PostForm("skip_verify"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.SkipVerify = b
		}
	}
	switch c.PostForm("missing") {
	case "fail":
		opts.MissingRef = usecase.MissingFail
	case "skip":
		opts.MissingRef = usecase.MissingSkip
	}
	return opts
}

// isLockFailure はロック処理の結果として起こり得る失敗かどうかを返します。
// これらはHTTPエラーではなく、200のメタデータとして報告します。
func isLockFailure(err error) bool {
	var derr *usecase.DetectionError
	var serr *usecase.SizeReadError
	var verr *usecase.VerificationError
	return errors.As(err, &derr) || errors.As(err, &serr) || errors.As(err, &verr)
}

// readFormFile はマルチパートフォームの1ファイルをバイト列で返します。
func readFormFile(c *gin.Context, field string) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return readMultipartFile(file)
}

// readFormImage はマルチパートフォームの1ファイルを復号して返します。
func readFormImage(c *gin.Context, field string) (*raster.Raw, error) {
	data, err := readFormFile(c, field)
	if err != nil {
		return nil, err
	}
	return raster.Decode(data)
}

// readLogoFiles はlogosフィールドの全ファイルをフォームの出現順で返します。
// 貼り付けの後勝ち解決があるため、順序を保持します。
func readLogoFiles(c *gin.Context) ([]string, map[string][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, err
	}

	files := form.File["logos"]
	names := make([]string, 0, len(files))
	logos := make(map[string][]byte, len(files))
	for _, file := range files {
		data, err := readMultipartFile(file)
		if err != nil {
			return nil, nil, err
		}
		names = append(names, file.Filename)
		logos[file.Filename] = data
	}
	return names, logos, nil
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("アップロードファイルのクローズに失敗", "error", err)
		}
	}()
	return io.ReadAll(f)
}

// toAPIMetadata はドメインのメタデータをレスポンス型へ写します。
func toAPIMetadata(md entity.LockMetadata) api.LockMetadata {
	out := api.LockMetadata{
		Applied:            md.Applied,
		LogoCount:          md.LogoCount,
		Detections:         make([]api.LockDetection, 0, len(md.Detections)),
		VerificationScores: md.VerificationScores,
		Verified:           md.Verified,
		Message:            md.Message,
	}
	for _, d := range md.Detections {
		out.Detections = append(out.Detections, api.LockDetection{
			Logo: d.Logo, X: d.X, Y: d.Y, W: d.W, H: d.H, Score: d.Score,
		})
	}
	return out
}
