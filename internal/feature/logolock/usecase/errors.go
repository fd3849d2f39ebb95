package usecase

import "fmt"

// DetectionError は参照ロゴをスライド画像内で受理閾値内に特定できなかった
// ことを表します。どのロゴが原因かをLogoで報告します。
type DetectionError struct {
	Logo string
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("ロゴ %q をスライド画像内で特定できませんでした", e.Logo)
}

// SizeReadError は生成画像の寸法情報を読み取れなかったことを表します。
type SizeReadError struct {
	Reason error
}

func (e *SizeReadError) Error() string {
	return fmt.Sprintf("生成画像の寸法を読み取れませんでした: %v", e.Reason)
}

func (e *SizeReadError) Unwrap() error { return e.Reason }

// VerificationError は合成後の忠実度検証が許容値を超えたことを表します。
// 合成自体は成功していても、この時点で結果は破棄されます。
type VerificationError struct {
	WorstScore float64
	Tolerance  float64
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("合成後の忠実度検証に失敗しました: 最悪スコア %.4f が許容値 %.4f を超えています", e.WorstScore, e.Tolerance)
}
