package adapters

import (
	"fmt"
	"os"
	"path/filepath"

	"slidegen_backend/internal/feature/regeneration/usecase"
)

// DiskSlideStore は固定ディレクトリ配下に元スライドと生成画像を保存します。
type DiskSlideStore struct {
	dir string
}

// DiskSlideStoreがSlideStoreを実装していることをコンパイル時に検証します。
var _ usecase.SlideStore = (*DiskSlideStore)(nil)

// NewDiskSlideStore は指定ディレクトリへ読み書きするDiskSlideStoreを生成します。
func NewDiskSlideStore(dir string) *DiskSlideStore {
	return &DiskSlideStore{dir: dir}
}

// Save はディレクトリ直下のnameへデータを書き込みます。ディレクトリ外への
// パス指定を防ぐため、nameはベース名に切り詰めます。
func (s *DiskSlideStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("スライドディレクトリの作成に失敗しました: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("スライド %q の保存に失敗しました: %w", name, err)
	}
	return nil
}

// Load はディレクトリ直下のnameを読み込みます。
func (s *DiskSlideStore) Load(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("スライド %q の読み込みに失敗しました: %w", name, err)
	}
	return data, nil
}

// Remove はディレクトリ直下のnameを削除します。
func (s *DiskSlideStore) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}
