// Package entity defines the domain entities for the logoassets feature.
package entity

import "time"

// LogoAsset はロゴライブラリに登録された参照画像1件を表します。
// 参照画像は登録時に外周の余白をトリムした上で保存されるため、
// WidthとHeightはトリム後の寸法です。
type LogoAsset struct {
	ID        uint
	UserID    uint
	Name      string   // 表示名（アップロード時のファイル名など）
	Path      string   // データディレクトリ配下の保存ファイル名
	Width     int      // トリム後の幅（px）
	Height    int      // トリム後の高さ（px）
	SHA256    string   // トリム後PNGのハッシュ（重複登録の検出に使用）
	Palette   []string // 代表色（#rrggbb、頻度順）
	CreatedAt time.Time
	UpdatedAt time.Time
}
