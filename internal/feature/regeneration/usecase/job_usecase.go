// Package usecase はスライド再生成ジョブのビジネスロジックを実装します。
// 受付（API側）と実行（ワーカー側）は別のユースケースに分かれており、
// このファイルは受付側を持ちます。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"slidegen_backend/internal/feature/logolock/raster"
	"slidegen_backend/internal/feature/regeneration/domain/entity"
	"slidegen_backend/internal/platform/progress"
	"slidegen_backend/internal/platform/queue"
)

// MaxSlideSize はスライド画像アップロードの最大サイズ（10MB）です。
const MaxSlideSize = 10 * 1024 * 1024

// ワーカーが進捗ストアへ発行する処理段階です。
const (
	StageQueued     = "queued"
	StageGenerating = "generating"
	StageLocking    = "locking"
	StageSaving     = "saving"
)

// JobRepository はジョブと生成結果の永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type JobRepository interface {
	// CreateJob は新しいジョブを永続化します。
	CreateJob(ctx context.Context, job *entity.Job) error

	// FindJobByID はIDでジョブを取得します。
	// 存在しない場合はErrJobNotFoundを返します。
	FindJobByID(ctx context.Context, id string) (*entity.Job, error)

	// UpdateJobStatus はジョブの状態と失敗理由を更新します。
	UpdateJobStatus(ctx context.Context, id, status, message string) error

	// CreateVersion は生成結果を永続化します。
	CreateVersion(ctx context.Context, version *entity.SlideVersion) error

	// LatestVersionByJobID はジョブの最新の生成結果を返します。
	// 存在しない場合はErrVersionNotFoundを返します。
	LatestVersionByJobID(ctx context.Context, jobID string) (*entity.SlideVersion, error)

	// CountVersions は（ユーザー, スライド）系列の生成結果数を返します。
	CountVersions(ctx context.Context, userID uint, slideID string) (int64, error)
}

// SlideStore はスライド画像ファイルの保管を抽象化します。
type SlideStore interface {
	Save(name string, data []byte) error
	Load(name string) ([]byte, error)
	Remove(name string) error
}

// TaskQueue は再生成タスクのキュー投入を抽象化します。
type TaskQueue interface {
	EnqueueRegenerate(ctx context.Context, jobID string) error
}

// queue.EnqueuerがTaskQueueを満たしていることをコンパイル時に検証します。
// platform側はfeatureパッケージを参照しないため、検証は利用者側に置きます。
var _ TaskQueue = (*queue.Enqueuer)(nil)

// ProgressStore は実行中ジョブの進捗の読み書きを抽象化します。
type ProgressStore interface {
	Set(ctx context.Context, jobID, stage, detail string) error
	Get(ctx context.Context, jobID string) (*progress.JobProgress, error)
	Clear(ctx context.Context, jobID string) error
}

// JobView はジョブの現在の状態に進捗と最新の生成結果を併せた読み取りビューです。
type JobView struct {
	Job     *entity.Job
	Version *entity.SlideVersion // 成功したジョブのみ。なければnil
	Stage   string               // 実行中の処理段階。進捗が残っていなければ空
	Detail  string
}

// jobUsecase はジョブの受付と参照を提供します。
type jobUsecase struct {
	repo  JobRepository
	store SlideStore
	queue TaskQueue
	prog  ProgressStore
}

// NewJobUsecase はjobUsecaseの新しいインスタンスを生成します。
func NewJobUsecase(repo JobRepository, store SlideStore, queue TaskQueue, prog ProgressStore) *jobUsecase {
	return &jobUsecase{repo: repo, store: store, queue: queue, prog: prog}
}

// CreateJob はスライド画像を預かり、再生成ジョブを投入します。
// 生成自体はワーカーが非同期に行うため、ここでは入力検証と永続化だけを行います。
func (u *jobUsecase) CreateJob(ctx context.Context, userID uint, slideID, prompt string, source []byte) (*entity.Job, error) {
	if len(source) == 0 {
		return nil, ErrEmptySlide
	}
	if len(source) > MaxSlideSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrSlideTooLarge, MaxSlideSize)
	}
	if _, _, err := raster.DecodeSize(source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSlide, err)
	}

	id := uuid.NewString()
	sourceName := id + "_source"
	if err := u.store.Save(sourceName, source); err != nil {
		return nil, fmt.Errorf("failed to store slide: %w", err)
	}

	job := &entity.Job{
		ID:         id,
		UserID:     userID,
		SlideID:    slideID,
		Prompt:     prompt,
		SourcePath: sourceName,
		Status:     entity.StatusQueued,
	}
	if err := u.repo.CreateJob(ctx, job); err != nil {
		// 行が作れなかった場合、預かったファイルは孤立するので消しておく
		if rerr := u.store.Remove(sourceName); rerr != nil {
			slog.Warn("孤立したスライドファイルの削除に失敗しました", "name", sourceName, "error", rerr)
		}
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	if err := u.queue.EnqueueRegenerate(ctx, id); err != nil {
		// 投入できなかったジョブは実行されないため、失敗として確定させる
		if uerr := u.repo.UpdateJobStatus(ctx, id, entity.StatusFailed, "タスクの投入に失敗しました"); uerr != nil {
			slog.Warn("ジョブの失敗記録に失敗しました", "job_id", id, "error", uerr)
		}
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	if err := u.prog.Set(ctx, id, StageQueued, ""); err != nil {
		slog.Warn("進捗の初期化に失敗しました", "job_id", id, "error", err)
	}

	slog.Info("再生成ジョブを受け付けました", "job_id", id, "user_id", userID, "slide_id", slideID)
	return job, nil
}

// GetJob はジョブの現在の状態を返します。実行中なら進捗を、
// 成功していれば最新の生成結果をあわせて返します。
// 他ユーザーのジョブはErrJobNotFoundになります（存在を漏らさない）。
func (u *jobUsecase) GetJob(ctx context.Context, userID uint, jobID string) (*JobView, error) {
	job, err := u.findOwnedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}

	view := &JobView{Job: job}

	if job.Status == entity.StatusSucceeded {
		version, err := u.repo.LatestVersionByJobID(ctx, jobID)
		switch {
		case err == nil:
			view.Version = version
		case errors.Is(err, ErrVersionNotFound):
			// 成功直後の読み取り競合。ビューは生成結果なしのまま返す
		default:
			return nil, fmt.Errorf("failed to load version: %w", err)
		}
	}

	if job.Status == entity.StatusQueued || job.Status == entity.StatusRunning {
		p, err := u.prog.Get(ctx, jobID)
		switch {
		case err == nil:
			view.Stage, view.Detail = p.Stage, p.Detail
		case errors.Is(err, progress.ErrNotFound):
			// 進捗は補助情報なので、なくてもビューは成立する
		default:
			slog.Warn("進捗の取得に失敗しました", "job_id", jobID, "error", err)
		}
	}

	return view, nil
}

// JobImage は成功したジョブの最新の生成画像（PNG）を返します。
func (u *jobUsecase) JobImage(ctx context.Context, userID uint, jobID string) ([]byte, error) {
	job, err := u.findOwnedJob(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != entity.StatusSucceeded {
		return nil, fmt.Errorf("%w: job is %s", ErrImageNotReady, job.Status)
	}

	version, err := u.repo.LatestVersionByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return nil, fmt.Errorf("%w: version record missing", ErrImageNotReady)
		}
		return nil, fmt.Errorf("failed to load version: %w", err)
	}

	data, err := u.store.Load(version.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated image: %w", err)
	}
	return data, nil
}

// findOwnedJob はジョブを取得し、所有者が一致することを確認します。
func (u *jobUsecase) findOwnedJob(ctx context.Context, userID uint, jobID string) (*entity.Job, error) {
	job, err := u.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}
