// Package entity はbrandscanフィーチャーのドメインモデルを定義します。
package entity

// ScannedLogo は画像から検出されたブランドロゴを表します。
type ScannedLogo struct {
	Name       string  // 検出されたブランド名
	Confidence float32 // 信頼度スコア（0.0 ~ 1.0）
}

// ScanReport はスライド1枚のブランド走査結果を表します。
// どの参照ロゴを登録すべきかの当たりを付けるための事前診断です。
type ScanReport struct {
	Logos     []ScannedLogo // クラウド検出器のヒット
	Palette   []string      // 代表色（#rrggbb、頻度順）
	Dominant  string        // 最頻色
	MeanLuma  float64       // 平均輝度（0.0 ~ 1.0）
	LumaStdev float64       // 輝度の標準偏差
}
