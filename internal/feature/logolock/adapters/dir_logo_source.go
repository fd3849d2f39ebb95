// Package adapters はロゴロック機能の外部接続実装を提供します。
package adapters

import (
	"fmt"
	"path/filepath"

	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/logolock/usecase"
)

// DirLogoSource は固定ディレクトリ配下のファイルからロゴ参照を読み込みます。
// ロゴライブラリに登録された参照を再生成パイプラインへ供給する実装です。
type DirLogoSource struct {
	dir string
}

// DirLogoSourceがLogoSourceを実装していることをコンパイル時に検証します。
var _ usecase.LogoSource = (*DirLogoSource)(nil)

// NewDirLogoSource は指定ディレクトリを読むDirLogoSourceを生成します。
func NewDirLogoSource(dir string) *DirLogoSource {
	return &DirLogoSource{dir: dir}
}

// Load はディレクトリ直下のnameを読み込みます。ディレクトリ外への
// パス指定を防ぐため、nameはベース名に切り詰めます。
// ファイルが存在しない場合は fs.ErrNotExist を満たすエラーを返します。
func (s *DirLogoSource) Load(name string) (*raster.Raw, error) {
	path := filepath.Join(s.dir, filepath.Base(name))
	img, err := raster.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ロゴ %q: %w", name, err)
	}
	return img, nil
}
