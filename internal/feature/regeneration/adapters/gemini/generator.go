// Package gemini はGoogle Gemini APIを使用したスライド画像生成クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"slidegen_backend/internal/feature/regeneration/usecase"
)

const (
	// DefaultModel は画像生成に使用するGemini APIのモデルです。
	DefaultModel = "gemini-2.5-flash-image"
)

// SlideGenerator はGoogle Gemini APIを使用してスライド画像を再生成します。
type SlideGenerator struct {
	model string
}

// SlideGeneratorがusecase.SlideGeneratorを実装していることをコンパイル時に検証します。
var _ usecase.SlideGenerator = (*SlideGenerator)(nil)

// NewSlideGenerator はSlideGeneratorの新しいインスタンスを生成します。
// APIキーはジョブごとにユーザー設定へ切り替わるため、クライアントは
// 呼び出しごとに生成します。
func NewSlideGenerator() *SlideGenerator {
	return &SlideGenerator{model: DefaultModel}
}

// Generate は元スライド画像とプロンプトから再設計済みのスライド画像を生成します。
// apiKeyが空の場合はADC（環境の既定資格情報）を使用します。
func (g *SlideGenerator) Generate(ctx context.Context, apiKey, prompt string, source []byte) ([]byte, error) {
	var config *genai.ClientConfig
	if apiKey != "" {
		config = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(source, http.DetectContentType(source)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}
	return nil, errors.New("gemini response contains no image data")
}
