package adapters

import (
	"fmt"
	"os"
	"path/filepath"

	"slidegen_backend/internal/feature/logoassets/usecase"
)

// DiskStore は固定ディレクトリ配下にトリム済み参照画像を保存します。
// 同じディレクトリをlogolock側のDirLogoSourceが読み取ります。
type DiskStore struct {
	dir string
}

// DiskStoreがBlobStoreを実装していることをコンパイル時に検証します。
var _ usecase.BlobStore = (*DiskStore)(nil)

// NewDiskStore は指定ディレクトリへ書き込むDiskStoreを生成します。
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

// Save はディレクトリ直下のnameへデータを書き込みます。ディレクトリ外への
// パス指定を防ぐため、nameはベース名に切り詰めます。
func (s *DiskStore) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ロゴディレクトリの作成に失敗しました: %w", err)
	}
	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ロゴ %q の保存に失敗しました: %w", name, err)
	}
	return nil
}

// Remove はディレクトリ直下のnameを削除します。
func (s *DiskStore) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}
