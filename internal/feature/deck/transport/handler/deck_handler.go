// Package handler はdeckフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/deck/domain/entity"
	"slidegen_backend/internal/feature/deck/usecase"
)

// DeckUsecase はデッキ抽出のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DeckUsecase interface {
	Extract(ctx context.Context, data []byte) (*entity.Deck, error)
}

// DeckHandler はデッキ抽出のHTTPリクエストを処理します。
type DeckHandler struct {
	uc DeckUsecase
}

// NewDeckHandler はDeckHandlerの新しいインスタンスを生成します。
func NewDeckHandler(uc DeckUsecase) *DeckHandler {
	return &DeckHandler{uc: uc}
}

// Extract はデッキファイルをアップロードしてテキスト構造を抽出します。
//
// エンドポイント: POST /v1/decks/extract
// Content-Type: multipart/form-data
// フィールド: deck（スライドデッキ、最大50MB）
func (h *DeckHandler) Extract(c *gin.Context) {
	file, err := c.FormFile("deck")
	if err != nil {
		slog.Warn("デッキファイルの取得に失敗", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "デッキファイルが必要です"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("デッキファイルのオープンに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "デッキの読み込みに失敗しました"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("デッキファイルのクローズに失敗", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("デッキデータの読み取りに失敗", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "デッキの読み込みに失敗しました"})
		return
	}

	deck, err := h.uc.Extract(c.Request.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrDeckTooLarge):
			slog.Warn("デッキのサイズ超過", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "デッキが大きすぎます"})
		case errors.Is(err, usecase.ErrEmptyDeck), errors.Is(err, usecase.ErrInvalidDeck):
			slog.Warn("デッキ抽出の入力が不正", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "デッキを解析できません"})
		default:
			slog.Error("デッキ抽出に失敗", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "デッキの抽出に失敗しました"})
		}
		return
	}

	slog.Info("デッキを抽出しました", "slide_count", deck.SlideCount, "file_name", file.Filename)
	c.JSON(http.StatusOK, toDeckResponse(deck))
}

// toDeckResponse はドメインモデルをAPIレスポンスに変換します。
// 空のスライスはJSONでnullではなく[]として返します。
func toDeckResponse(deck *entity.Deck) api.DeckResponse {
	slides := make([]api.DeckSlideResponse, 0, len(deck.Slides))
	for _, s := range deck.Slides {
		blocks := s.TextBlocks
		if blocks == nil {
			blocks = []string{}
		}
		notes := s.Notes
		if notes == nil {
			notes = []string{}
		}
		shapes := make([]api.DeckShapeResponse, 0, len(s.TextShapes))
		for _, sh := range s.TextShapes {
			shapes = append(shapes, api.DeckShapeResponse{
				Text:   sh.Text,
				Left:   sh.Left,
				Top:    sh.Top,
				Width:  sh.Width,
				Height: sh.Height,
			})
		}
		slides = append(slides, api.DeckSlideResponse{
			Page:       s.Page,
			TextBlocks: blocks,
			Notes:      notes,
			TextShapes: shapes,
		})
	}
	return api.DeckResponse{
		SlideCount:  deck.SlideCount,
		SlideWidth:  deck.SlideWidth,
		SlideHeight: deck.SlideHeight,
		Slides:      slides,
	}
}
