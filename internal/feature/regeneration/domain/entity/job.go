// Package entity はスライド再生成ジョブのドメインモデルを定義します。
package entity

import "time"

// ジョブの状態遷移は queued → running → succeeded / failed の一方向です。
// 失敗したジョブを再開する手段はなく、やり直しは新しいジョブとして投入します。
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Job はスライド再生成の1回の依頼です。
type Job struct {
	ID         string // UUID
	UserID     uint
	SlideID    string // 呼び出し側が付けるスライド識別子（任意、版番号の系列キー）
	Prompt     string // 生成プロンプト。空なら既定の指示を使う
	SourcePath string // アップロードされた元スライドの保存名
	Status     string
	Message    string // 失敗時の理由
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SlideVersion は成功したジョブが残す生成結果1件です。
// ロック処理の要約値は列として持ち、全診断情報はLockMetaにJSONで残します。
type SlideVersion struct {
	ID          uint
	JobID       string
	UserID      uint
	SlideID     string
	Number      int // 同じ（ユーザー, スライド）系列の中での版番号。1始まり
	ImagePath   string
	LockApplied bool
	LogoCount   int
	Verified    bool
	WorstScore  float64 // 検証スコアの最大値（悪い方）
	MeanScore   float64 // 検証スコアの平均値
	LockMeta    string  // ロック診断情報のJSON
	CreatedAt   time.Time
}
