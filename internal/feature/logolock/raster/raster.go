// Package raster はロゴロック処理のための生ピクセルバッファプリミティブを提供します。
// すべての操作はイミュータブルな入力に対する純粋関数であり、共有可変状態を持ちません。
package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// MaskAlphaMin はマスク構築時に「不透明」とみなすアルファ値の下限です。
	// この値以上のピクセルのみがスコアリングに参加します（透明な余白はマッチを妨げない）。
	MaskAlphaMin = 24
)

// Raw は行優先RGBA（4チャンネル、非乗算アルファ）のピクセルバッファです。
// アルファチャンネルはソース形式が持たない場合でも常に存在します（不透明で埋める）。
// 一度生成されたら変更しない約束で扱います。
type Raw struct {
	W, H int
	Pix  []uint8 // 長さ 4*W*H、R,G,B,Aの順
}

// Gray はRawから導出した単一チャンネルの輝度バッファです。
// 変換式: round(0.299R + 0.587G + 0.114B)。
type Gray struct {
	W, H int
	Pix  []uint8 // 長さ W*H
}

// Mask は同寸法のGrayと対になる二値バッファです。
// ソースのアルファが MaskAlphaMin 以上の位置が1になります。
type Mask struct {
	W, H int
	Bits []uint8 // 長さ W*H、0または1
	On   int     // 1が立っているビット数
}

// FromImage は任意のimage.ImageをRawに変換します。
// imaging.Cloneが全フォーマット（YCbCr等）をNRGBAへ正規化します。
func FromImage(img image.Image) *Raw {
	c := imaging.Clone(img)
	b := c.Bounds()
	r := &Raw{W: b.Dx(), H: b.Dy(), Pix: make([]uint8, 4*b.Dx()*b.Dy())}
	copy(r.Pix, c.Pix)
	return r
}

// NewRaw は指定寸法のゼロ値（完全透明）バッファを生成します。
func NewRaw(w, h int) *Raw {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Raw{W: w, H: h, Pix: make([]uint8, 4*w*h)}
}

// Clone はバッファの深いコピーを返します。
func (r *Raw) Clone() *Raw {
	out := &Raw{W: r.W, H: r.H, Pix: make([]uint8, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// ToImage はRawを*image.NRGBAとして再解釈したコピーを返します。
// imagingとの相互運用（リサイズ、合成、エンコード）に使用します。
func (r *Raw) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.W, r.H))
	copy(img.Pix, r.Pix)
	return img
}

// RGBA は位置(x, y)のピクセル値を返します。範囲チェックは呼び出し側の責任です。
func (r *Raw) RGBA(x, y int) (uint8, uint8, uint8, uint8) {
	i := (y*r.W + x) * 4
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2], r.Pix[i+3]
}

// Grayscale はRec.601係数による輝度バッファを導出します。
// 整数演算 (299R + 587G + 114B + 500) / 1000 は round() と等価です。
func (r *Raw) Grayscale() *Gray {
	g := &Gray{W: r.W, H: r.H, Pix: make([]uint8, r.W*r.H)}
	for i := 0; i < len(g.Pix); i++ {
		p := i * 4
		v := (299*int(r.Pix[p]) + 587*int(r.Pix[p+1]) + 114*int(r.Pix[p+2]) + 500) / 1000
		g.Pix[i] = uint8(v)
	}
	return g
}

// AlphaMask はアルファ閾値によるスコアリング参加マスクを構築します。
// 通常はMaskAlphaMinを渡します。
func (r *Raw) AlphaMask(threshold uint8) *Mask {
	m := &Mask{W: r.W, H: r.H, Bits: make([]uint8, r.W*r.H)}
	for i := 0; i < len(m.Bits); i++ {
		if r.Pix[i*4+3] >= threshold {
			m.Bits[i] = 1
			m.On++
		}
	}
	return m
}
