// Package usecase はdeckフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"

	"slidegen_backend/internal/feature/deck/domain/entity"
)

// MaxDeckSize はデッキアップロードの最大サイズ（50MB）です。
// 画像を大量に埋め込んだデッキでも収まる上限にしています。
const MaxDeckSize = 50 * 1024 * 1024

// DeckParser はデッキファイルのバイト列からテキスト構造を取り出すリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type DeckParser interface {
	// Parse はデッキファイルを解析し、スライドごとの抽出結果を返します。
	Parse(data []byte) (*entity.Deck, error)
}

// deckUsecase はデッキ抽出のビジネスロジックを提供します。
type deckUsecase struct {
	parser DeckParser
}

// NewDeckUsecase はdeckUsecaseの新しいインスタンスを生成します。
func NewDeckUsecase(parser DeckParser) *deckUsecase {
	return &deckUsecase{parser: parser}
}

// Extract はデッキファイルを検証し、スライドのテキスト・ノート・図形座標を抽出します。
func (u *deckUsecase) Extract(ctx context.Context, data []byte) (*entity.Deck, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDeck
	}
	if len(data) > MaxDeckSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrDeckTooLarge, MaxDeckSize)
	}

	deck, err := u.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("deck parser failed: %w", err)
	}
	return deck, nil
}
