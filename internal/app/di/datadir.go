package di

import "os"

// 既定の保存先。コンテナ実行時はボリュームを割り当てます。
const (
	defaultLogoDir  = "./data/logos"
	defaultSlideDir = "./data/slides"
)

// LogoDir はロゴ画像の保存ディレクトリを返します。
// APIサーバー（アップロード）とワーカー（ロック時の参照）は
// 同じ場所を指す必要があります。
func LogoDir() string {
	if dir := os.Getenv("LOGO_DIR"); dir != "" {
		return dir
	}
	return defaultLogoDir
}

// SlideDir は元スライドと生成スライドの保存ディレクトリを返します。
func SlideDir() string {
	if dir := os.Getenv("SLIDE_DIR"); dir != "" {
		return dir
	}
	return defaultSlideDir
}
