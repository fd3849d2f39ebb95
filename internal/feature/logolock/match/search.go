package match

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"slidegen_backend/internal/feature/logolock/raster"
)

const (
	// workingLongEdgeMax は探索時の作業解像度の長辺上限です。
	// これを超える入力は探索前に一度だけ縮小され、結果座標は原寸に戻されます。
	workingLongEdgeMax = 640
	// coarseStride は粗走査のオフセット間隔です。
	coarseStride = 8
	// coarseSampleStep は粗走査時のピクセルサンプリング間隔です。
	coarseSampleStep = 3
	// coarseSeedsPerScale はスケールごとに精密化へ進める粗候補の数です。
	coarseSeedsPerScale = 6
	// refineRadius は粗候補の周囲を全探索する精密化窓の半径です。
	refineRadius = 16
	// minCandidateWidth は候補幅の下限です。これより小さいロゴは信号が弱すぎます。
	minCandidateWidth = 18
	// maxWidthFrac は候補幅の上限の、探索画像幅に対する比率です。
	maxWidthFrac = 0.92
	// dedupIoUMax は重複排除のIoU閾値です。既採用の候補とこれ以上
	// 重なる候補は同じ出現箇所とみなして捨てます。
	dedupIoUMax = 0.40
	// maxResults は1ロゴあたりに返す候補数の上限です。
	maxResults = 3

	// AcceptScoreMax は候補を検出として受理する最大スコアです。
	// これを超える候補は「見つからなかった」として扱われます。
	AcceptScoreMax = 0.23
)

var (
	// baselineMultipliers はベースライン幅推定に掛ける倍率の列です。
	// 抽出元と生成先でロゴの縮尺が多少ずれても拾えるようにします。
	baselineMultipliers = []float64{0.55, 0.7, 0.85, 1.0, 1.15, 1.3, 1.5, 1.75, 2.0, 2.3}
	// widthFractions はベースラインに依存しない、画像幅比率ベースの候補幅です。
	widthFractions = []float64{0.06, 0.08, 0.10, 0.13, 0.16, 0.20, 0.25, 0.30}
)

// Searcher は1つのロゴに対するマルチスケールの粗密探索を実行します。
// 状態を持たないため複数ゴルーチンから同時に使用できます。
type Searcher struct {
	workers int
}

// NewSearcher は既定の並列度（論理CPU数、上限8）のSearcherを生成します。
func NewSearcher() *Searcher {
	w := runtime.NumCPU()
	if w > 8 {
		w = 8
	}
	if w < 1 {
		w = 1
	}
	return &Searcher{workers: w}
}

// Search はlogoをsource内で探索し、受理閾値を満たす候補をスコア昇順で
// 最大maxResults件返します。返される候補の座標はsourceの原寸座標系です。
// 候補が1件もないことはエラーではなく、空のスライスで表します。
//
// 候補幅ごとの走査は独立なためセマフォで束ねた並列実行を行い、
// ctxの取り消しは走査ループの行単位で確認します。
func (s *Searcher) Search(ctx context.Context, source *raster.Raw, logo *raster.Raw) ([]Candidate, error) {
	if source.W < 1 || source.H < 1 || logo.W < 1 || logo.H < 1 {
		return nil, nil
	}

	work, scaleX, scaleY := workingImage(source)
	srcGray := work.Grayscale()

	// ロゴ参照の原寸を、作業解像度での出現幅の事前推定として使います。
	baseline := int(math.Round(float64(logo.W) * scaleX))
	widths := candidateWidths(baseline, srcGray.W)

	// アスペクト比から高さを導出し、探索画像に収まらないスケールを除外します。
	type scale struct{ w, h int }
	var scales []scale
	for _, w := range widths {
		h := int(math.Round(float64(w) * float64(logo.H) / float64(logo.W)))
		if h < 1 || h >= srcGray.H {
			continue
		}
		scales = append(scales, scale{w: w, h: h})
	}
	if len(scales) == 0 {
		return nil, nil
	}

	resCh := make(chan []Candidate, len(scales))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup
	for _, sc := range scales {
		wg.Add(1)
		go func(w, h int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				return
			}
			if found := s.searchScale(ctx, srcGray, logo, w, h); len(found) > 0 {
				resCh <- found
			}
		}(sc.w, sc.h)
	}
	wg.Wait()
	close(resCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pool []Candidate
	for found := range resCh {
		for _, c := range found {
			if c.Score <= AcceptScoreMax {
				pool = append(pool, c)
			}
		}
	}

	kept := dedup(pool)

	// 作業解像度の座標を原寸ソース座標へ戻します。
	// 縮小時の丸めで縦横のスケールがわずかに異なるため、軸ごとに逆算します。
	for i := range kept {
		b := kept[i].Box
		kept[i].Box = Box{
			X: int(math.Round(float64(b.X) / scaleX)),
			Y: int(math.Round(float64(b.Y) / scaleY)),
			W: int(math.Round(float64(b.W) / scaleX)),
			H: int(math.Round(float64(b.H) / scaleY)),
		}
	}
	return kept, nil
}

// searchScale は1つの候補寸法について粗走査と精密化を行います。
// 返す候補の座標は作業解像度の座標系です。
func (s *Searcher) searchScale(ctx context.Context, srcGray *raster.Gray, logo *raster.Raw, w, h int) []Candidate {
	scaled := logo.Resize(w, h)
	gray := scaled.Grayscale()
	mask := scaled.AlphaMask(raster.MaskAlphaMin)
	if mask.On == 0 {
		return nil
	}

	maxX := srcGray.W - w
	maxY := srcGray.H - h

	// 粗走査: ストライド間隔の全オフセットを粗いサンプリングで採点し、
	// スコア昇順の小さな配列に上位だけを残します。
	var seeds []Candidate
	for y := 0; y <= maxY; y += coarseStride {
		if ctx.Err() != nil {
			return nil
		}
		for x := 0; x <= maxX; x += coarseStride {
			sc := Score(srcGray, gray, mask, x, y, coarseSampleStep)
			seeds = insertBounded(seeds, Candidate{Box: Box{X: x, Y: y, W: w, H: h}, Score: sc}, coarseSeedsPerScale)
		}
	}

	// 精密化: 各粗候補の周囲を全サンプリングで走査し、局所最適を見つけます。
	var out []Candidate
	for _, seed := range seeds {
		if ctx.Err() != nil {
			return nil
		}
		out = append(out, refine(srcGray, gray, mask, seed, maxX, maxY))
	}
	return out
}

// refine はseedの周囲refineRadius以内の全オフセットをsampleStep=1で採点し、
// 最良の配置を返します。
func refine(srcGray *raster.Gray, gray *raster.Gray, mask *raster.Mask, seed Candidate, maxX, maxY int) Candidate {
	x0 := max(0, seed.Box.X-refineRadius)
	y0 := max(0, seed.Box.Y-refineRadius)
	x1 := min(maxX, seed.Box.X+refineRadius)
	y1 := min(maxY, seed.Box.Y+refineRadius)

	best := Candidate{Box: seed.Box, Score: 2}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			sc := Score(srcGray, gray, mask, x, y, 1)
			if sc < best.Score {
				best = Candidate{Box: Box{X: x, Y: y, W: seed.Box.W, H: seed.Box.H}, Score: sc}
			}
		}
	}
	return best
}

// candidateWidths はベースライン推定と画像幅から候補幅の集合を組み立てます。
// 重複を除き、[minCandidateWidth, maxWidthFrac×searchW] に収まる幅だけを
// 昇順で返します。ベースラインが0以下の場合は画像幅比率の候補のみです。
func candidateWidths(baseline, searchW int) []int {
	maxW := int(maxWidthFrac * float64(searchW))
	seen := make(map[int]bool)
	var out []int
	add := func(w int) {
		if w < minCandidateWidth || w > maxW || seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}
	if baseline > 0 {
		for _, m := range baselineMultipliers {
			add(int(math.Round(float64(baseline) * m)))
		}
	}
	for _, f := range widthFractions {
		add(int(math.Round(float64(searchW) * f)))
	}
	sort.Ints(out)
	return out
}

// workingImage は長辺がworkingLongEdgeMax以下になるようsourceを一度だけ縮小し、
// 作業解像度/原寸の縮尺を軸ごとに返します。縮小不要ならそのまま返します。
func workingImage(src *raster.Raw) (*raster.Raw, float64, float64) {
	long := src.W
	if src.H > long {
		long = src.H
	}
	if long <= workingLongEdgeMax {
		return src, 1, 1
	}
	f := float64(workingLongEdgeMax) / float64(long)
	w := max(1, int(math.Round(float64(src.W)*f)))
	h := max(1, int(math.Round(float64(src.H)*f)))
	return src.Resize(w, h), float64(w) / float64(src.W), float64(h) / float64(src.H)
}

// insertBounded はスコア昇順を保ったままlistにcを挿入し、長さをlimitに
// 切り詰めたスライスを返します。候補上位の追跡に使う小さな配列です。
func insertBounded(list []Candidate, c Candidate, limit int) []Candidate {
	i := sort.Search(len(list), func(i int) bool { return list[i].Score > c.Score })
	if i >= limit {
		return list
	}
	list = append(list, Candidate{})
	copy(list[i+1:], list[i:])
	list[i] = c
	if len(list) > limit {
		list = list[:limit]
	}
	return list
}

// dedup は候補をスコア昇順に並べ、既採用のどの候補ともIoUが閾値未満の
// ものだけを最大maxResults件まで残します。同点は位置で順序を安定させます。
func dedup(pool []Candidate) []Candidate {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score < pool[j].Score
		}
		if pool[i].Box.Y != pool[j].Box.Y {
			return pool[i].Box.Y < pool[j].Box.Y
		}
		return pool[i].Box.X < pool[j].Box.X
	})

	var kept []Candidate
	for _, c := range pool {
		if len(kept) >= maxResults {
			break
		}
		dup := false
		for _, k := range kept {
			if IoU(c.Box, k.Box) >= dedupIoUMax {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}
