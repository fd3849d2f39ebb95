// Package usecase はlogoassetsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"

	"slidegen_backend/internal/feature/logoassets/domain/entity"
	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/shared/palette"
)

// paletteSize は参照画像1件あたりに抽出する代表色の数です。
const paletteSize = 4

// AssetRepository はロゴ参照のメタデータ永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type AssetRepository interface {
	// Create は新しい参照をストレージに永続化します。
	Create(ctx context.Context, asset *entity.LogoAsset) error

	// ListByUserID はユーザーの参照一覧を登録順に返します。
	ListByUserID(ctx context.Context, userID uint) ([]entity.LogoAsset, error)

	// FindByID はユーザーの参照をIDで取得します。
	FindByID(ctx context.Context, userID, id uint) (*entity.LogoAsset, error)

	// FindBySHA256 はユーザーの参照を内容ハッシュで取得します。
	FindBySHA256(ctx context.Context, userID uint, sum string) (*entity.LogoAsset, error)

	// Delete はユーザーの参照を削除します。
	Delete(ctx context.Context, userID, id uint) error
}

// BlobStore はトリム済み参照画像の保存先を抽象化します。
type BlobStore interface {
	// Save は指定した名前でデータを保存します。
	Save(name string, data []byte) error

	// Remove は保存済みデータを削除します。
	Remove(name string) error
}

// RemoteFetcher はURLから参照画像データを取得します。
type RemoteFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// AssetUsecase はロゴライブラリのビジネスロジックを実装します。
type AssetUsecase struct {
	repo    AssetRepository
	store   BlobStore
	fetcher RemoteFetcher
}

// NewAssetUsecase はAssetUsecaseの新しいインスタンスを生成します。
func NewAssetUsecase(repo AssetRepository, store BlobStore, fetcher RemoteFetcher) *AssetUsecase {
	return &AssetUsecase{repo: repo, store: store, fetcher: fetcher}
}

// Upload は参照画像をトリムして保存し、メタデータを登録します。
// 同一ユーザーが同一内容を登録済みの場合は既存の参照を返します（冪等）。
func (u *AssetUsecase) Upload(ctx context.Context, userID uint, name string, data []byte) (*entity.LogoAsset, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	img, err := raster.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	// 余白付きの参照はマッチング精度を落とすため、登録時に一度だけトリムする
	trimmed := img.Trim()
	encoded, err := trimmed.EncodePNG()
	if err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	sum := sha256.Sum256(encoded)
	sumHex := hex.EncodeToString(sum[:])

	existing, err := u.repo.FindBySHA256(ctx, userID, sumHex)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return nil, err
	}

	fileName := fmt.Sprintf("u%d_%s.png", userID, sumHex[:16])
	if err := u.store.Save(fileName, encoded); err != nil {
		return nil, fmt.Errorf("failed to store logo: %w", err)
	}

	asset := &entity.LogoAsset{
		UserID:  userID,
		Name:    name,
		Path:    fileName,
		Width:   trimmed.W,
		Height:  trimmed.H,
		SHA256:  sumHex,
		Palette: palette.Extract(trimmed.ToImage(), paletteSize),
	}
	if err := u.repo.Create(ctx, asset); err != nil {
		// 行の登録に失敗した場合、保存したファイルを残さない
		if rmErr := u.store.Remove(fileName); rmErr != nil {
			slog.Warn("孤立したロゴファイルの削除に失敗しました", "file", fileName, "error", rmErr)
		}
		return nil, err
	}
	return asset, nil
}

// Import はURLから参照画像を取得し、Uploadと同じ経路で登録します。
// nameが空の場合はURLのファイル名部分を使用します。
func (u *AssetUsecase) Import(ctx context.Context, userID uint, name, rawURL string) (*entity.LogoAsset, error) {
	data, err := u.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	if name == "" {
		name = nameFromURL(rawURL)
	}
	return u.Upload(ctx, userID, name, data)
}

// List はユーザーの参照一覧を返します。
func (u *AssetUsecase) List(ctx context.Context, userID uint) ([]entity.LogoAsset, error) {
	return u.repo.ListByUserID(ctx, userID)
}

// ListPaths はロックパイプラインに渡す参照画像のファイル名一覧を返します。
func (u *AssetUsecase) ListPaths(ctx context.Context, userID uint) ([]string, error) {
	assets, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(assets))
	for _, a := range assets {
		paths = append(paths, a.Path)
	}
	return paths, nil
}

// Delete は参照のメタデータと保存ファイルを削除します。
func (u *AssetUsecase) Delete(ctx context.Context, userID, id uint) error {
	asset, err := u.repo.FindByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	// 行は既に消えているため、ファイル削除の失敗はログに残すだけにする
	if err := u.store.Remove(asset.Path); err != nil {
		slog.Warn("ロゴファイルの削除に失敗しました", "file", asset.Path, "error", err)
	}
	return nil
}

// nameFromURL はURLのパス末尾をアセット名として取り出します。
func nameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}
