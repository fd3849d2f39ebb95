package api

// ScannedLogo はクラウド検出器が画像内で見つけたロゴです。
type ScannedLogo struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// BrandScanResponse は /v1/brandscan のレスポンスです。
// 検出ロゴに加え、画像から抽出したブランドパレットを返します。
type BrandScanResponse struct {
	Logos     []ScannedLogo `json:"logos"`
	Palette   []string      `json:"palette"`
	Dominant  string        `json:"dominant"`
	MeanLuma  float64       `json:"mean_luma"`
	LumaStdev float64       `json:"luma_stdev"`
}
