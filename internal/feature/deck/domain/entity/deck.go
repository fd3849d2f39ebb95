// Package entity はスライドデッキから抽出したテキスト構造を表すドメインモデルを定義します。
package entity

// TextShape はスライド上でテキストを持つ図形1つです。
// 座標と寸法はデッキファイルが持つEMU(English Metric Unit)単位のままです。
type TextShape struct {
	Text   string // 正規化済みテキスト（前後空白を除去し、内部改行は半角スペース）
	Left   int64  // 左端のX座標(EMU)。未指定の図形は0
	Top    int64  // 上端のY座標(EMU)。未指定の図形は0
	Width  int64  // 幅(EMU)
	Height int64  // 高さ(EMU)
}

// Slide はスライド1枚分の抽出結果です。
type Slide struct {
	Page       int         // 1始まりのページ番号（表示順）
	TextBlocks []string    // 図形ごとの正規化済みテキスト。空文字の図形は含まない
	Notes      []string    // 発表者ノートの行。空行は含まない
	TextShapes []TextShape // 座標付きのテキスト図形
}

// Deck はデッキ全体の抽出結果です。
// 再生成プロンプトの組み立てとレイアウト検証の両方で使います。
type Deck struct {
	SlideCount  int     // スライド枚数
	SlideWidth  int64   // スライドの幅(EMU)。デッキに寸法定義がない場合は0
	SlideHeight int64   // スライドの高さ(EMU)
	Slides      []Slide // 表示順に並んだスライド
}
