// Package handler はbrandscanフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/brandscan/domain/entity"
	"slidegen_backend/internal/feature/brandscan/usecase"
)

// ScanUsecase はブランド走査のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ScanUsecase interface {
	Scan(ctx context.Context, imageData []byte) (*entity.ScanReport, error)
}

// ScanHandler はブランド走査のHTTPリクエストを処理します。
type ScanHandler struct {
	uc ScanUsecase
}

// NewScanHandler はScanHandlerの新しいインスタンスを生成します。
func NewScanHandler(uc ScanUsecase) *ScanHandler {
	return &ScanHandler{uc: uc}
}

// Scan はスライド画像をアップロードしてブランド走査を実行します。
//
// エンドポイント: POST /v1/brandscan
// Content-Type: multipart/form-data
// フィールド: image（スライド画像、最大10MB）
func (h *ScanHandler) Scan(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("画像ファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "画像ファイルが必要です"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("画像ファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("画像ファイルのクローズに失敗", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("画像データの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "画像の読み込みに失敗しました"})
		return
	}

	report, err := h.uc.Scan(c.Request.Context(), imageData)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmptyImage),
			errors.Is(err, usecase.ErrImageTooLarge),
			errors.Is(err, usecase.ErrUnsupportedImage):
			slog.Warn("ブランド走査の入力が不正", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "走査できない画像です"})
		default:
			slog.Error("ブランド走査に失敗", "error", err)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "ブランド走査に失敗しました"})
		}
		return
	}

	logos := make([]api.ScannedLogo, 0, len(report.Logos))
	for _, l := range report.Logos {
		logos = append(logos, api.ScannedLogo{Name: l.Name, Confidence: l.Confidence})
	}
	c.JSON(http.StatusOK, api.BrandScanResponse{
		Logos:     logos,
		Palette:   report.Palette,
		Dominant:  report.Dominant,
		MeanLuma:  report.MeanLuma,
		LumaStdev: report.LumaStdev,
	})
}
