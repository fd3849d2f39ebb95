package api

// LockDetection は原寸スライド座標系でのロゴ検出1件です。
type LockDetection struct {
	Logo  string  `json:"logo"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	W     int     `json:"w"`
	H     int     `json:"h"`
	Score float64 `json:"score"`
}

// LockMetadata はロゴロック処理の診断情報です。
type LockMetadata struct {
	Applied            bool            `json:"applied"`
	LogoCount          int             `json:"logoCount"`
	Detections         []LockDetection `json:"detections"`
	VerificationScores []float64       `json:"verificationScores"`
	Verified           bool            `json:"verified"`
	Message            string          `json:"message,omitempty"`
}

// LockCheckResponse は /v1/logolock/check のレスポンスです。
// 成功時のみImageにBase64エンコードされたPNGが入ります。
type LockCheckResponse struct {
	OK       bool         `json:"ok"`
	Metadata LockMetadata `json:"metadata"`
	Image    string       `json:"image,omitempty"`
}
