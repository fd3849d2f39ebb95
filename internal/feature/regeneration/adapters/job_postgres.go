package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"slidegen_backend/internal/feature/regeneration/domain/entity"
	"slidegen_backend/internal/feature/regeneration/usecase"
)

// jobPostgres はGORMを使ったJobRepositoryの実装です。
type jobPostgres struct {
	db *gorm.DB
}

// インターフェースを満たしていることをコンパイル時に検証します。
var _ usecase.JobRepository = (*jobPostgres)(nil)

// NewJobPostgres はjobPostgresの新しいインスタンスを生成します。
func NewJobPostgres(db *gorm.DB) *jobPostgres {
	return &jobPostgres{db: db}
}

// CreateJob はジョブを保存し、タイムスタンプをエンティティへ書き戻します。
func (r *jobPostgres) CreateJob(ctx context.Context, job *entity.Job) error {
	model := JobModelFromEntity(job)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	job.CreatedAt = model.CreatedAt
	job.UpdatedAt = model.UpdatedAt
	return nil
}

// FindJobByID はジョブをIDで取得します。
// 所有者の確認は呼び出し側（usecase）の責務です。ワーカーは全ユーザーのジョブを処理します。
func (r *jobPostgres) FindJobByID(ctx context.Context, id string) (*entity.Job, error) {
	var model JobModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrJobNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// UpdateJobStatus はジョブの状態と失敗理由を更新します。
func (r *jobPostgres) UpdateJobStatus(ctx context.Context, id, status, message string) error {
	result := r.db.WithContext(ctx).
		Model(&JobModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "message": message})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrJobNotFound
	}
	return nil
}

// CreateVersion は生成結果を保存し、採番されたIDとタイムスタンプをエンティティへ書き戻します。
func (r *jobPostgres) CreateVersion(ctx context.Context, version *entity.SlideVersion) error {
	model := SlideVersionModelFromEntity(version)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	version.ID = model.ID
	version.CreatedAt = model.CreatedAt
	return nil
}

// LatestVersionByJobID はジョブの最新の生成結果を返します。
func (r *jobPostgres) LatestVersionByJobID(ctx context.Context, jobID string) (*entity.SlideVersion, error) {
	var model SlideVersionModel
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("number DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrVersionNotFound
		}
		return nil, err
	}
	return model.ToEntity(), nil
}

// CountVersions は（ユーザー, スライド）系列の生成結果数を返します。
func (r *jobPostgres) CountVersions(ctx context.Context, userID uint, slideID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&SlideVersionModel{}).
		Where("user_id = ? AND slide_id = ?", userID, slideID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
