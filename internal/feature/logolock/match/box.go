// Package match はロゴのテンプレートマッチングを提供します。
// 輝度バッファ上の単一配置のスコアリングと、スケール許容のある
// 粗密探索（coarse-to-fine search)の2層で構成されます。
package match

// Box は軸平行の矩形です。座標系は生成した側のコメントに従います。
type Box struct {
	X, Y int
	W, H int
}

// Area は矩形の面積を返します。
func (b Box) Area() int { return b.W * b.H }

// Candidate は1つの配置仮説とその不一致スコアです。
// スコアは[0,1]で、0が完全一致です。
type Candidate struct {
	Box   Box
	Score float64
}

// IoU は2つの矩形のIntersection-over-Unionを返します。
// 同一の矩形は1、交差しない矩形は0になります。
func IoU(a, b Box) float64 {
	x0 := max(a.X, b.X)
	y0 := max(a.Y, b.Y)
	x1 := min(a.X+a.W, b.X+b.W)
	y1 := min(a.Y+a.H, b.Y+b.H)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	inter := (x1 - x0) * (y1 - y0)
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
