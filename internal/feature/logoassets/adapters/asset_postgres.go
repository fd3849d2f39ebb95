// Package adapters はlogoassetsフィーチャーの永続化実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"slidegen_backend/internal/feature/logoassets/domain/entity"
	"slidegen_backend/internal/feature/logoassets/usecase"
)

// assetPostgres はGORMを使ったAssetRepositoryの実装です。
type assetPostgres struct {
	db *gorm.DB
}

// インターフェースを満たしていることをコンパイル時に検証します。
var _ usecase.AssetRepository = (*assetPostgres)(nil)

// NewAssetPostgres はassetPostgresの新しいインスタンスを生成します。
func NewAssetPostgres(db *gorm.DB) *assetPostgres {
	return &assetPostgres{db: db}
}

// Create は参照のメタデータを保存し、採番されたIDとタイムスタンプをエンティティへ書き戻します。
func (r *assetPostgres) Create(ctx context.Context, asset *entity.LogoAsset) error {
	model := LogoAssetModelFromEntity(asset)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	asset.ID = model.ID
	asset.CreatedAt = model.CreatedAt
	asset.UpdatedAt = model.UpdatedAt
	return nil
}

// ListByUserID はユーザーの参照一覧を登録順に返します。
func (r *assetPostgres) ListByUserID(ctx context.Context, userID uint) ([]entity.LogoAsset, error) {
	var models []LogoAssetModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	assets := make([]entity.LogoAsset, 0, len(models))
	for i := range models {
		assets = append(assets, *models[i].ToEntity())
	}
	return assets, nil
}

// FindByID はユーザーの参照をIDで取得します。
// 他ユーザーの参照は存在しないものとして扱います。
func (r *assetPostgres) FindByID(ctx context.Context, userID, id uint) (*entity.LogoAsset, error) {
	var model LogoAssetModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAssetNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// FindBySHA256 はユーザーの参照を内容ハッシュで取得します。
func (r *assetPostgres) FindBySHA256(ctx context.Context, userID uint, sum string) (*entity.LogoAsset, error) {
	var model LogoAssetModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sha256 = ?", userID, sum).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrAssetNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// Delete はユーザーの参照を削除します。対象が存在しない場合はErrAssetNotFoundを返します。
func (r *assetPostgres) Delete(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&LogoAssetModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrAssetNotFound
	}
	return nil
}
