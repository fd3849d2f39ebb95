package api

// LogoImportRequest は /v1/logos/import のリクエストボディです。
// Nameを省略した場合はURLのファイル名部分が使用されます。
type LogoImportRequest struct {
	URL  string `json:"url" binding:"required,url"`
	Name string `json:"name"`
}

// LogoAssetResponse はロゴライブラリの1エントリです。
type LogoAssetResponse struct {
	ID        uint     `json:"id"`
	Name      string   `json:"name"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	SHA256    string   `json:"sha256"`
	Palette   []string `json:"palette"`
	CreatedAt string   `json:"created_at"`
}
