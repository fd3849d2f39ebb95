// Package handler はlogoassetsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/logoassets/domain/entity"
	"slidegen_backend/internal/feature/logoassets/usecase"
	jwtmw "slidegen_backend/internal/platform/jwt"
)

// AssetUsecase はロゴライブラリ操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AssetUsecase interface {
	// Upload は参照画像をトリムして保存し、メタデータを登録します。
	Upload(ctx context.Context, userID uint, name string, data []byte) (*entity.LogoAsset, error)
	// Import はURLから参照画像を取得して登録します。
	Import(ctx context.Context, userID uint, name, rawURL string) (*entity.LogoAsset, error)
	// List はユーザーの参照一覧を返します。
	List(ctx context.Context, userID uint) ([]entity.LogoAsset, error)
	// Delete は参照のメタデータと保存ファイルを削除します。
	Delete(ctx context.Context, userID, id uint) error
}

// AssetHandler はロゴライブラリのHTTPリクエストを処理します。
type AssetHandler struct {
	assets AssetUsecase
}

// NewAssetHandler はAssetHandlerの新しいインスタンスを生成します。
func NewAssetHandler(assets AssetUsecase) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// Upload はロゴ参照のアップロードエンドポイントを処理します。
//
// エンドポイント: POST /v1/logos
// Content-Type: multipart/form-data
// フィールド: logo（参照画像）、name（任意の表示名、省略時はファイル名）
func (h *AssetHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "logo file is required"})
		return
	}
	data, err := readMultipartFile(file)
	if err != nil {
		slog.Warn("logo upload read failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to read logo file"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	asset, err := h.assets.Upload(c.Request.Context(), userID, name, data)
	if err != nil {
		h.writeUploadError(c, userID, err)
		return
	}
	slog.Info("logo uploaded", "user_id", userID, "asset_id", asset.ID, "name", asset.Name)
	c.JSON(http.StatusCreated, toAssetResponse(asset))
}

// Import はURL指定によるロゴ参照の取り込みエンドポイントを処理します。
//
// エンドポイント: POST /v1/logos/import
func (h *AssetHandler) Import(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req api.LogoImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	asset, err := h.assets.Import(c.Request.Context(), userID, req.Name, req.URL)
	if err != nil {
		h.writeUploadError(c, userID, err)
		return
	}
	slog.Info("logo imported", "user_id", userID, "asset_id", asset.ID, "url", req.URL)
	c.JSON(http.StatusCreated, toAssetResponse(asset))
}

// List はロゴ参照の一覧エンドポイントを処理します。
//
// エンドポイント: GET /v1/logos
func (h *AssetHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	assets, err := h.assets.List(c.Request.Context(), userID)
	if err != nil {
		slog.Error("logo list failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list logos"})
		return
	}

	out := make([]api.LogoAssetResponse, 0, len(assets))
	for i := range assets {
		out = append(out, toAssetResponse(&assets[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Delete はロゴ参照の削除エンドポイントを処理します。
//
// エンドポイント: DELETE /v1/logos/:id
func (h *AssetHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid asset id"})
		return
	}

	if err := h.assets.Delete(c.Request.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, usecase.ErrAssetNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "asset not found"})
			return
		}
		slog.Error("logo delete failed", "error", err, "user_id", userID, "asset_id", id)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to delete logo"})
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "ok"})
}

// writeUploadError はUpload/Import共通の失敗レスポンスを書き込みます。
func (h *AssetHandler) writeUploadError(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyName):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "logo name is required"})
	case errors.Is(err, usecase.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unsupported image format"})
	default:
		slog.Error("logo registration failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to store logo"})
	}
}

// toAssetResponse はドメインエンティティをレスポンス型へ写します。
func toAssetResponse(a *entity.LogoAsset) api.LogoAssetResponse {
	return api.LogoAssetResponse{
		ID:        a.ID,
		Name:      a.Name,
		Width:     a.Width,
		Height:    a.Height,
		SHA256:    a.SHA256,
		Palette:   a.Palette,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

// readMultipartFile はアップロードされた1ファイルをバイト列で返します。
func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "error", err)
		}
	}()
	return io.ReadAll(f)
}

// currentUserID は認証ミドルウェアが設定したユーザーIDをコンテキストから取り出します。
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
