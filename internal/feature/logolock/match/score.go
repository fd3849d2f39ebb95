package match

import (
	"slidegen_backend/internal/feature/logolock/raster"
)

const (
	// earlyExitMinSamples は早期打ち切りの判定を始めるサンプル数です。
	// これ以下では平均がまだ不安定なため判定しません。
	earlyExitMinSamples = 25
	// earlyExitMeanCutoff は早期打ち切りの平均不一致度の閾値です。
	// これを超えた配置は精査しても採用されることがありません。
	earlyExitMeanCutoff = 0.36
)

// Score はlogoをsourceの(originX, originY)に重ねたときの不一致度を返します。
// maskが1のピクセルのみをsampleStep間隔でサンプリングし、
// 輝度の平均絶対差を255で正規化した値[0,1]を返します。0が完全一致です。
//
// マスクが空の場合、配置が範囲外の場合、および早期打ち切りの場合は
// 「使える信号がない」ことを表す1.0を返します。
func Score(source *raster.Gray, logo *raster.Gray, mask *raster.Mask, originX, originY, sampleStep int) float64 {
	if mask.On == 0 {
		return 1.0
	}
	if sampleStep < 1 {
		sampleStep = 1
	}
	if originX < 0 || originY < 0 || originX+logo.W > source.W || originY+logo.H > source.H {
		return 1.0
	}

	cutoff := earlyExitMeanCutoff * 255
	sum, n := 0, 0
	for y := 0; y < logo.H; y += sampleStep {
		srcRow := (originY+y)*source.W + originX
		logoRow := y * logo.W
		for x := 0; x < logo.W; x += sampleStep {
			if mask.Bits[logoRow+x] == 0 {
				continue
			}
			d := int(source.Pix[srcRow+x]) - int(logo.Pix[logoRow+x])
			if d < 0 {
				d = -d
			}
			sum += d
			n++
			if n > earlyExitMinSamples && float64(sum) > cutoff*float64(n) {
				return 1.0
			}
		}
	}
	if n == 0 {
		// サブサンプリングがマスクと噛み合わず1点も拾えなかった
		return 1.0
	}
	return float64(sum) / (255 * float64(n))
}
