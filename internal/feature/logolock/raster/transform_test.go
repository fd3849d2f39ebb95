package raster

import (
	"testing"
)

func TestResize(t *testing.T) {
	t.Run("正常系: 指定寸法ちょうどに変形される", func(t *testing.T) {
		out := fill(10, 10, 0, 0, 0, 255).Resize(20, 5)
		if out.W != 20 || out.H != 5 {
			t.Errorf("寸法 = %dx%d, want 20x5", out.W, out.H)
		}
	})

	t.Run("正常系: 単色は拡大しても単色のまま", func(t *testing.T) {
		out := fill(8, 8, 180, 40, 220, 255).Resize(16, 16)
		for i := 0; i < out.W*out.H; i++ {
			r, g, b := out.Pix[i*4], out.Pix[i*4+1], out.Pix[i*4+2]
			if r != 180 || g != 40 || b != 220 {
				t.Fatalf("Pix[%d] = (%d,%d,%d), want (180,40,220)", i, r, g, b)
			}
		}
	})

	t.Run("異常系: 0以下の寸法は空バッファ", func(t *testing.T) {
		out := fill(4, 4, 0, 0, 0, 255).Resize(0, 10)
		if out.W != 0 || out.H != 0 {
			t.Errorf("寸法 = %dx%d, want 0x0", out.W, out.H)
		}
	})
}

func TestTrim(t *testing.T) {
	t.Run("正常系: 透明余白が取り除かれる", func(t *testing.T) {
		raw := NewRaw(10, 10)
		// (3,2)起点の4x3不透明ブロック
		for y := 2; y < 5; y++ {
			for x := 3; x < 7; x++ {
				i := (y*10 + x) * 4
				raw.Pix[i], raw.Pix[i+3] = 200, 255
			}
		}

		out := raw.Trim()

		if out.W != 4 || out.H != 3 {
			t.Fatalf("寸法 = %dx%d, want 4x3", out.W, out.H)
		}
		r, _, _, a := out.RGBA(0, 0)
		if r != 200 || a != 255 {
			t.Errorf("内容が保存されていません: (r,a) = (%d,%d)", r, a)
		}
	})

	t.Run("正常系: 左上隅と同色の不透明余白が取り除かれる", func(t *testing.T) {
		raw := fill(12, 8, 255, 255, 255, 255)
		// (5,3)起点の2x2黒ブロック
		for y := 3; y < 5; y++ {
			for x := 5; x < 7; x++ {
				i := (y*12 + x) * 4
				raw.Pix[i], raw.Pix[i+1], raw.Pix[i+2] = 0, 0, 0
			}
		}

		out := raw.Trim()

		if out.W != 2 || out.H != 2 {
			t.Errorf("寸法 = %dx%d, want 2x2", out.W, out.H)
		}
	})

	t.Run("エッジケース: 全面が余白なら元の寸法を保つ", func(t *testing.T) {
		out := NewRaw(6, 4).Trim()
		if out.W != 6 || out.H != 4 {
			t.Errorf("寸法 = %dx%d, want 6x4", out.W, out.H)
		}
	})
}

func TestOverlay(t *testing.T) {
	t.Run("正常系: 不透明な前景は背景を置き換える", func(t *testing.T) {
		base := fill(6, 6, 255, 255, 255, 255)
		over := fill(2, 2, 0, 0, 255, 255)

		out := Overlay(base, over, 2, 1)

		r, g, b, _ := out.RGBA(3, 2)
		if r != 0 || g != 0 || b != 255 {
			t.Errorf("前景内 (3,2) = (%d,%d,%d), want (0,0,255)", r, g, b)
		}
		r, g, b, _ = out.RGBA(0, 0)
		if r != 255 || g != 255 || b != 255 {
			t.Errorf("前景外 (0,0) = (%d,%d,%d), want (255,255,255)", r, g, b)
		}
	})

	t.Run("正常系: 半透明な前景はアルファ合成される", func(t *testing.T) {
		base := fill(4, 4, 255, 255, 255, 255)
		over := fill(4, 4, 255, 0, 0, 128)

		out := Overlay(base, over, 0, 0)

		r, g, b, _ := out.RGBA(1, 1)
		if r != 255 {
			t.Errorf("R = %d, want 255", r)
		}
		// 128/255の混合で緑・青はおよそ127になる
		if absInt(int(g)-127) > 2 || absInt(int(b)-127) > 2 {
			t.Errorf("(G,B) = (%d,%d), want 127前後", g, b)
		}
	})

	t.Run("エッジケース: キャンバス外へのはみ出しはクリップされる", func(t *testing.T) {
		base := fill(6, 6, 10, 10, 10, 255)
		over := fill(4, 4, 250, 250, 250, 255)

		out := Overlay(base, over, -2, -2)

		if out.W != 6 || out.H != 6 {
			t.Fatalf("寸法 = %dx%d, want 6x6", out.W, out.H)
		}
		r, _, _, _ := out.RGBA(1, 1)
		if r != 250 {
			t.Errorf("重なり内 (1,1) R = %d, want 250", r)
		}
		r, _, _, _ = out.RGBA(3, 3)
		if r != 10 {
			t.Errorf("重なり外 (3,3) R = %d, want 10", r)
		}
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
