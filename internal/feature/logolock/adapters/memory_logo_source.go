package adapters

import (
	"fmt"
	"io/fs"

	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/logolock/usecase"
)

// MemoryLogoSource はメモリ上のバイト列からロゴ参照を読み込みます。
// リクエストで直接アップロードされたロゴの受け渡しと、テストに使用します。
type MemoryLogoSource struct {
	images map[string][]byte
}

// MemoryLogoSourceがLogoSourceを実装していることをコンパイル時に検証します。
var _ usecase.LogoSource = (*MemoryLogoSource)(nil)

// NewMemoryLogoSource は名前からバイト列への対応表を持つMemoryLogoSourceを生成します。
func NewMemoryLogoSource(images map[string][]byte) *MemoryLogoSource {
	return &MemoryLogoSource{images: images}
}

// Load は登録済みのバイト列を復号して返します。
// 未登録の名前は fs.ErrNotExist を満たすエラーを返します。
func (s *MemoryLogoSource) Load(name string) (*raster.Raw, error) {
	data, ok := s.images[name]
	if !ok {
		return nil, fmt.Errorf("ロゴ %q: %w", name, fs.ErrNotExist)
	}
	img, err := raster.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("ロゴ %q: %w", name, err)
	}
	return img, nil
}
