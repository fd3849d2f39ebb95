package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// trimTol は余白判定時に許容するチャンネルあたりの色差です。
const trimTol = 3

// Resize は指定寸法へのリサイズを行います。アスペクト比は保存しません
// （目標寸法の算出は呼び出し側の責任です）。フィルタはLanczosです。
func (r *Raw) Resize(w, h int) *Raw {
	if w <= 0 || h <= 0 {
		return NewRaw(0, 0)
	}
	return FromImage(imaging.Resize(r.ToImage(), w, h, imaging.Lanczos))
}

// Trim は外周の余白（完全透明、または左上隅と同色の均一マージン）を
// 取り除いた部分コピーを返します。ロゴ参照画像の読み込み時に一度だけ適用します。
// 余白でないピクセルが存在しない場合は全体のコピーを返します。
func (r *Raw) Trim() *Raw {
	if r.W == 0 || r.H == 0 {
		return r.Clone()
	}
	cr, cg, cb, ca := r.RGBA(0, 0)
	minX, minY := r.W, r.H
	maxX, maxY := -1, -1
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			i := (y*r.W + x) * 4
			a := r.Pix[i+3]
			if a < 8 {
				continue
			}
			if absDiff(r.Pix[i], cr) <= trimTol && absDiff(r.Pix[i+1], cg) <= trimTol &&
				absDiff(r.Pix[i+2], cb) <= trimTol && absDiff(a, ca) <= trimTol {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return r.Clone()
	}
	return r.crop(minX, minY, maxX+1, maxY+1)
}

// Overlay はoverをbaseの(x, y)にアルファ合成した新しいバッファを返します。
// はみ出す部分はキャンバス境界でクリップされます。
func Overlay(base, over *Raw, x, y int) *Raw {
	return FromImage(imaging.Overlay(base.ToImage(), over.ToImage(), image.Pt(x, y), 1.0))
}

// crop は半開区間 [x0,x1)×[y0,y1) の部分コピーを返します。
func (r *Raw) crop(x0, y0, x1, y1 int) *Raw {
	w, h := x1-x0, y1-y0
	out := NewRaw(w, h)
	for y := 0; y < h; y++ {
		src := ((y0+y)*r.W + x0) * 4
		dst := y * w * 4
		copy(out.Pix[dst:dst+w*4], r.Pix[src:src+w*4])
	}
	return out
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
