// Package palette は画像の代表色抽出を提供します。
// 抽出した色はブランドスキャンのレスポンスと再生成プロンプトの
// 「ブランドカラー維持」指示に使用されます。
package palette

import (
	"image"
	"math"
	"sort"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// maxSamples はk-meansに渡すサンプル数の上限です。
// 大きな画像でも抽出時間が一定になるよう、等間隔にサブサンプリングします。
const maxSamples = 8192

// Dominant は画像の最頻色を #rrggbb 形式で返します。
func Dominant(img image.Image) string {
	return strings.ToLower(dominantcolor.Hex(dominantcolor.Find(img)))
}

// Extract はk-meansクラスタリングで代表色を最大k色抽出し、
// 出現頻度の高い順に #rrggbb 形式で返します。重複する色は除きます。
// 不透明ピクセルが存在しない場合はnilを返します。
func Extract(img image.Image, k int) []string {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	step := 1
	if w*h > maxSamples {
		step = int(math.Sqrt(float64(w*h)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, maxSamples)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			// 半透明以下のピクセルは背景とみなして除外する
			if a16 < 0x8000 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}
	if k > len(dataset) {
		k = len(dataset)
	}

	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		// クラスタリングに失敗した場合は最頻色1色にフォールバックする
		return []string{Dominant(img)}
	}

	// 出現頻度の高いクラスタから順に並べる
	sort.Slice(cc, func(i, j int) bool {
		return len(cc[i].Observations) > len(cc[j].Observations)
	})

	seen := make(map[string]bool, len(cc))
	out := make([]string, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		hex := col.Hex()
		if seen[hex] {
			continue
		}
		seen[hex] = true
		out = append(out, hex)
	}
	return out
}
