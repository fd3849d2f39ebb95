package usecase_test

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"slidegen_backend/internal/feature/brandscan/domain/entity"
	"slidegen_backend/internal/feature/brandscan/usecase"
	"slidegen_backend/internal/feature/logolock/raster"
)

// ErrAPI はモックと期待値の間で共有されるセンチネルエラーです。
var ErrAPI = errors.New("api error")

// mockLogoScanner はLogoScannerインターフェースのモック実装です。
type mockLogoScanner struct {
	ScanLogosFunc  func(ctx context.Context, imageData []byte) ([]entity.ScannedLogo, error)
	ScanLogosCalls int
}

func (m *mockLogoScanner) ScanLogos(ctx context.Context, imageData []byte) ([]entity.ScannedLogo, error) {
	m.ScanLogosCalls++
	if m.ScanLogosFunc != nil {
		return m.ScanLogosFunc(ctx, imageData)
	}
	return nil, nil
}

// grayPNG は単色グレーのPNGバイト列を作るテストヘルパーです。
func grayPNG(t *testing.T, w, h int, v uint8) []byte {
	t.Helper()
	img := raster.NewRaw(w, h)
	for i := 0; i < w*h; i++ {
		img.Pix[i*4], img.Pix[i*4+1], img.Pix[i*4+2], img.Pix[i*4+3] = v, v, v, 255
	}
	data, err := img.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	return data
}

// twoTonePNG は上6行が黒、下2行が白の8x8 PNGを作るテストヘルパーです。
func twoTonePNG(t *testing.T) []byte {
	t.Helper()
	img := raster.NewRaw(8, 8)
	for y := 0; y < 8; y++ {
		v := uint8(0)
		if y >= 6 {
			v = 255
		}
		for x := 0; x < 8; x++ {
			i := (y*8 + x) * 4
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}
	data, err := img.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	return data
}

func TestScanUsecase_Scan(t *testing.T) {
	ctx := context.Background()

	t.Run("正常系: 検出ロゴとパレットと輝度統計をまとめて返す", func(t *testing.T) {
		hits := []entity.ScannedLogo{
			{Name: "Acme", Confidence: 0.95},
			{Name: "Globex", Confidence: 0.71},
		}
		scanner := &mockLogoScanner{
			ScanLogosFunc: func(_ context.Context, imageData []byte) ([]entity.ScannedLogo, error) {
				if len(imageData) == 0 {
					t.Error("スキャナに空データが渡されています")
				}
				return hits, nil
			},
		}
		uc := usecase.NewScanUsecase(scanner)

		report, err := uc.Scan(ctx, grayPNG(t, 8, 8, 100))

		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if !reflect.DeepEqual(report.Logos, hits) {
			t.Errorf("Logos = %v, want %v", report.Logos, hits)
		}
		if len(report.Palette) != 1 || report.Palette[0] != "#646464" {
			t.Errorf("Palette = %v, want [#646464]", report.Palette)
		}
		if report.Dominant != "#646464" {
			t.Errorf("Dominant = %q, want %q", report.Dominant, "#646464")
		}
		if diff := report.MeanLuma - 100.0/255.0; math.Abs(diff) > 1e-9 {
			t.Errorf("MeanLuma = %v, want %v", report.MeanLuma, 100.0/255.0)
		}
		if report.LumaStdev != 0 {
			t.Errorf("LumaStdev = %v, want 0", report.LumaStdev)
		}
		if scanner.ScanLogosCalls != 1 {
			t.Errorf("ScanLogosCalls = %d, want 1", scanner.ScanLogosCalls)
		}
	})

	t.Run("正常系: 二値画像の輝度統計", func(t *testing.T) {
		uc := usecase.NewScanUsecase(&mockLogoScanner{})

		report, err := uc.Scan(ctx, twoTonePNG(t))

		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		// 黒48ピクセル・白16ピクセル: 平均0.25、標本標準偏差 sqrt(12/63)
		if diff := report.MeanLuma - 0.25; math.Abs(diff) > 1e-9 {
			t.Errorf("MeanLuma = %v, want 0.25", report.MeanLuma)
		}
		wantStd := math.Sqrt(12.0 / 63.0)
		if diff := report.LumaStdev - wantStd; math.Abs(diff) > 1e-9 {
			t.Errorf("LumaStdev = %v, want %v", report.LumaStdev, wantStd)
		}
		if len(report.Palette) != 2 ||
			report.Palette[0] != "#000000" || report.Palette[1] != "#ffffff" {
			t.Errorf("Palette = %v, want [#000000 #ffffff]", report.Palette)
		}
	})

	t.Run("異常系: 空の画像データ", func(t *testing.T) {
		scanner := &mockLogoScanner{}
		uc := usecase.NewScanUsecase(scanner)

		_, err := uc.Scan(ctx, nil)

		if !errors.Is(err, usecase.ErrEmptyImage) {
			t.Errorf("error = %v, want ErrEmptyImage", err)
		}
		if scanner.ScanLogosCalls != 0 {
			t.Errorf("ScanLogosCalls = %d, want 0", scanner.ScanLogosCalls)
		}
	})

	t.Run("異常系: サイズ超過", func(t *testing.T) {
		scanner := &mockLogoScanner{}
		uc := usecase.NewScanUsecase(scanner)

		_, err := uc.Scan(ctx, make([]byte, usecase.MaxImageSize+1))

		if !errors.Is(err, usecase.ErrImageTooLarge) {
			t.Errorf("error = %v, want ErrImageTooLarge", err)
		}
		if scanner.ScanLogosCalls != 0 {
			t.Errorf("ScanLogosCalls = %d, want 0", scanner.ScanLogosCalls)
		}
	})

	t.Run("異常系: 復号できない画像データ", func(t *testing.T) {
		scanner := &mockLogoScanner{}
		uc := usecase.NewScanUsecase(scanner)

		_, err := uc.Scan(ctx, []byte("not an image"))

		if !errors.Is(err, usecase.ErrUnsupportedImage) {
			t.Errorf("error = %v, want ErrUnsupportedImage", err)
		}
		if scanner.ScanLogosCalls != 0 {
			t.Errorf("ScanLogosCalls = %d, want 0", scanner.ScanLogosCalls)
		}
	})

	t.Run("異常系: スキャナの失敗が伝播する", func(t *testing.T) {
		scanner := &mockLogoScanner{
			ScanLogosFunc: func(_ context.Context, _ []byte) ([]entity.ScannedLogo, error) {
				return nil, ErrAPI
			},
		}
		uc := usecase.NewScanUsecase(scanner)

		_, err := uc.Scan(ctx, grayPNG(t, 4, 4, 200))

		if !errors.Is(err, ErrAPI) {
			t.Errorf("error = %v, want ErrAPIを包むエラー", err)
		}
		if !strings.Contains(err.Error(), "logo scanner failed") {
			t.Errorf("error = %v, want logo scanner failedを含む", err)
		}
	})
}
