package api

// DeckShapeResponse はテキストを持つ図形1つの正規化済みテキストとEMU座標です。
type DeckShapeResponse struct {
	Text   string `json:"text"`
	Left   int64  `json:"left"`
	Top    int64  `json:"top"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// DeckSlideResponse はスライド1枚の抽出結果です。
type DeckSlideResponse struct {
	Page       int                 `json:"page"`
	TextBlocks []string            `json:"textBlocks"`
	Notes      []string            `json:"notes"`
	TextShapes []DeckShapeResponse `json:"textShapes"`
}

// DeckResponse は /v1/decks/extract のレスポンスです。
// キーは再生成パイプラインが読む抽出ペイロードの形式に合わせたcamelCaseです。
type DeckResponse struct {
	SlideCount  int                 `json:"slideCount"`
	SlideWidth  int64               `json:"slideWidth"`
	SlideHeight int64               `json:"slideHeight"`
	Slides      []DeckSlideResponse `json:"slides"`
}
