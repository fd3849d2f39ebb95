package raster

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Decode はエンコード済みバイト列（PNG/JPEG/GIF/BMP/TIFF）をRawに復号します。
// 対応フォーマットはimagingのimportで登録済みです。
func Decode(data []byte) (*Raw, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像の復号に失敗しました: %w", err)
	}
	return FromImage(img), nil
}

// Open はファイルパスから画像を読み込みRawに復号します。
func Open(path string) (*Raw, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの読み込みに失敗しました: %w", err)
	}
	return FromImage(img), nil
}

// DecodeSize はピクセル全体を復号せずにヘッダから寸法のみを読み取ります。
// 復号エラーだけでなく、ヘッダ上は正常でも幅か高さが0以下の場合もエラーを返します。
func DecodeSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("画像ヘッダの解析に失敗しました: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("画像ヘッダの寸法が不正です: %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// EncodePNG はRawをPNGバイト列にエンコードします。
// 合成結果の保存は常に可逆圧縮で行います。非可逆で再エンコードすると
// 直後の忠実度検証がコーデックの損失を測ってしまうためです。
func (r *Raw) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, r.ToImage(), imaging.PNG); err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
