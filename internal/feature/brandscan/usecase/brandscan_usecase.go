// Package usecase はbrandscanフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"slidegen_backend/internal/feature/brandscan/domain/entity"
	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/shared/palette"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024
	// paletteSize は走査レポートに含める代表色の数です。
	paletteSize = 5
)

// LogoScanner は画像からブランドロゴを検出するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type LogoScanner interface {
	// ScanLogos は画像バイト列からロゴを検出し、検出結果を返します。
	ScanLogos(ctx context.Context, imageData []byte) ([]entity.ScannedLogo, error)
}

// scanUsecase はブランド走査のビジネスロジックを提供します。
type scanUsecase struct {
	scanner LogoScanner
}

// NewScanUsecase はscanUsecaseの新しいインスタンスを生成します。
func NewScanUsecase(scanner LogoScanner) *scanUsecase {
	return &scanUsecase{scanner: scanner}
}

// Scan はスライド画像を走査し、検出ロゴ・パレット・輝度統計をまとめて返します。
func (u *scanUsecase) Scan(ctx context.Context, imageData []byte) (*entity.ScanReport, error) {
	if len(imageData) == 0 {
		return nil, ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrImageTooLarge, MaxImageSize)
	}

	img, err := raster.Decode(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	logos, err := u.scanner.ScanLogos(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("logo scanner failed: %w", err)
	}

	nrgba := img.ToImage()
	report := &entity.ScanReport{
		Logos:    logos,
		Palette:  palette.Extract(nrgba, paletteSize),
		Dominant: palette.Dominant(nrgba),
	}
	report.MeanLuma, report.LumaStdev = lumaStats(img)
	return report, nil
}

// lumaStats は輝度の平均と標準偏差を0〜1に正規化して返します。
func lumaStats(img *raster.Raw) (float64, float64) {
	gray := img.Grayscale()
	if len(gray.Pix) == 0 {
		return 0, 0
	}
	xs := make([]float64, len(gray.Pix))
	for i, v := range gray.Pix {
		xs[i] = float64(v)
	}
	floats.Scale(1.0/255.0, xs)
	mean, std := stat.MeanStdDev(xs, nil)
	// 1ピクセルでは標本標準偏差が定義できない
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
