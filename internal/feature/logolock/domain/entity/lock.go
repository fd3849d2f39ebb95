// Package entity はロゴロック機能のドメインモデルを提供します。
package entity

// Detection は原寸スライド座標系で特定されたロゴの配置です。
// 1つの参照ロゴにつき、探索が成功した場合にのみ1件生成されます。
type Detection struct {
	Logo  string  `json:"logo"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	W     int     `json:"w"`
	H     int     `json:"h"`
	Score float64 `json:"score"`
}

// LockMetadata はロック処理1回分の診断情報です。
// 処理が途中で失敗した場合も、そこまでに判明した内容を保持します。
type LockMetadata struct {
	Applied            bool        `json:"applied"`
	LogoCount          int         `json:"logoCount"`
	Detections         []Detection `json:"detections"`
	VerificationScores []float64   `json:"verificationScores"`
	Verified           bool        `json:"verified"`
	Message            string      `json:"message,omitempty"`
}

// LockResult はロック処理の最終結果です。
// 成功時のみImageにPNGエンコード済みの合成画像が入ります。
// 忠実度検証に失敗した合成画像は破棄され、メタデータだけが残ります。
type LockResult struct {
	OK       bool
	Image    []byte
	Metadata LockMetadata
}
