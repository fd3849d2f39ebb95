package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	lockentity "slidegen_backend/internal/feature/logolock/domain/entity"
	"slidegen_backend/internal/feature/logolock/raster"
	lockusecase "slidegen_backend/internal/feature/logolock/usecase"
	"slidegen_backend/internal/feature/regeneration/domain/entity"
	"slidegen_backend/internal/platform/progress"
	"slidegen_backend/internal/shared/ratelimiter"
)

// DefaultPrompt は依頼にプロンプトが付いていない場合の生成指示です。
const DefaultPrompt = "Redesign this presentation slide with a cleaner, more modern layout. " +
	"Keep every piece of text and its meaning unchanged, and keep the brand colors."

// SlideGenerator はスライド画像の生成を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
// apiKeyが空の場合、実装は既定の資格情報で認証します。
type SlideGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string, source []byte) ([]byte, error)
}

// Locker はロゴロック処理（検出・合成・検証）を抽象化します。
type Locker interface {
	Lock(ctx context.Context, source *raster.Raw, logoNames []string, generated []byte) (*lockentity.LockResult, error)
}

var _ Locker = (*lockusecase.LockUsecase)(nil)

// LogoLibrary はユーザーのロゴ参照一覧の取得を抽象化します。
type LogoLibrary interface {
	ListPaths(ctx context.Context, userID uint) ([]string, error)
}

// CredentialSource はユーザーの生成APIキーの取得を抽象化します。
// キーが保存されていない場合は空文字列を返します。
type CredentialSource interface {
	GenAICredential(ctx context.Context, userID uint) (string, error)
}

var _ ProgressStore = (*progress.Store)(nil)

// pipelineUsecase はワーカー側で再生成パイプライン全体を実行します。
type pipelineUsecase struct {
	repo      JobRepository
	store     SlideStore
	generator SlideGenerator
	locker    Locker
	logos     LogoLibrary
	creds     CredentialSource
	limiter   ratelimiter.RateLimiterInterface
	prog      ProgressStore
}

// NewPipelineUsecase はpipelineUsecaseの新しいインスタンスを生成します。
func NewPipelineUsecase(
	repo JobRepository,
	store SlideStore,
	generator SlideGenerator,
	locker Locker,
	logos LogoLibrary,
	creds CredentialSource,
	limiter ratelimiter.RateLimiterInterface,
	prog ProgressStore,
) *pipelineUsecase {
	return &pipelineUsecase{
		repo:      repo,
		store:     store,
		generator: generator,
		locker:    locker,
		logos:     logos,
		creds:     creds,
		limiter:   limiter,
		prog:      prog,
	}
}

// ProcessJob はジョブ1件のパイプライン（生成 → ロゴロック → 保存）を実行します。
// 失敗はジョブの状態として確定し、タスクとしての再試行はしません。
// やり直しは呼び出し側が新しいジョブとしてパイプライン全体を再投入します。
func (u *pipelineUsecase) ProcessJob(ctx context.Context, jobID string) error {
	job, err := u.repo.FindJobByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.Status != entity.StatusQueued {
		// 二重配送された既処理タスクは成功扱いで握りつぶす
		slog.Warn("処理済みのジョブをスキップします", "job_id", jobID, "status", job.Status)
		return nil
	}
	if err := u.repo.UpdateJobStatus(ctx, jobID, entity.StatusRunning, ""); err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}

	source, err := u.store.Load(job.SourcePath)
	if err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("元スライドの読み込みに失敗しました: %w", err))
	}

	apiKey, err := u.creds.GenAICredential(ctx, job.UserID)
	if err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("資格情報の取得に失敗しました: %w", err))
	}

	u.setStage(ctx, jobID, StageGenerating, "")
	if err := u.limiter.WaitIfNeeded(ctx); err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("レート制限の待機が中断されました: %w", err))
	}

	prompt := job.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	generated, err := u.generator.Generate(ctx, apiKey, prompt, source)
	if err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("スライド生成に失敗しました: %w", err))
	}

	u.setStage(ctx, jobID, StageLocking, "")
	srcRaw, err := raster.Decode(source)
	if err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("元スライドを復号できません: %w", err))
	}
	logoNames, err := u.logos.ListPaths(ctx, job.UserID)
	if err != nil {
		return u.fail(ctx, jobID, fmt.Errorf("ロゴライブラリの取得に失敗しました: %w", err))
	}

	result, err := u.locker.Lock(ctx, srcRaw, logoNames, generated)
	if err != nil {
		// ロック失敗の理由はサブシステムのエラーメッセージをそのまま記録する
		return u.fail(ctx, jobID, err)
	}

	u.setStage(ctx, jobID, StageSaving, "")
	version, err := u.saveVersion(ctx, job, result)
	if err != nil {
		return u.fail(ctx, jobID, err)
	}

	if err := u.repo.UpdateJobStatus(ctx, jobID, entity.StatusSucceeded, ""); err != nil {
		return fmt.Errorf("failed to mark job succeeded: %w", err)
	}
	if err := u.prog.Clear(ctx, jobID); err != nil {
		slog.Warn("進捗の削除に失敗しました", "job_id", jobID, "error", err)
	}

	slog.Info("再生成ジョブが完了しました",
		"job_id", jobID,
		"version", version.Number,
		"logo_count", version.LogoCount,
		"verified", version.Verified,
		"worst_score", version.WorstScore,
	)
	return nil
}

// saveVersion は合成結果をファイルとDBに保存します。
// 版番号は同じ（ユーザー, スライド）系列の既存数から採番します。
func (u *pipelineUsecase) saveVersion(ctx context.Context, job *entity.Job, result *lockentity.LockResult) (*entity.SlideVersion, error) {
	count, err := u.repo.CountVersions(ctx, job.UserID, job.SlideID)
	if err != nil {
		return nil, fmt.Errorf("版番号の採番に失敗しました: %w", err)
	}
	number := int(count) + 1

	imageName := fmt.Sprintf("%s_v%d.png", job.ID, number)
	if err := u.store.Save(imageName, result.Image); err != nil {
		return nil, fmt.Errorf("生成画像の保存に失敗しました: %w", err)
	}

	md := result.Metadata
	worst, mean := scoreSummary(md.VerificationScores)
	// プレーンな構造体なのでMarshalは失敗しない
	meta, _ := json.Marshal(md)

	version := &entity.SlideVersion{
		JobID:       job.ID,
		UserID:      job.UserID,
		SlideID:     job.SlideID,
		Number:      number,
		ImagePath:   imageName,
		LockApplied: md.Applied,
		LogoCount:   md.LogoCount,
		Verified:    md.Verified,
		WorstScore:  worst,
		MeanScore:   mean,
		LockMeta:    string(meta),
	}
	if err := u.repo.CreateVersion(ctx, version); err != nil {
		if rerr := u.store.Remove(imageName); rerr != nil {
			slog.Warn("孤立した生成画像の削除に失敗しました", "name", imageName, "error", rerr)
		}
		return nil, fmt.Errorf("生成結果の保存に失敗しました: %w", err)
	}
	return version, nil
}

// fail はジョブを失敗として確定し、元のエラーをそのまま返します。
func (u *pipelineUsecase) fail(ctx context.Context, jobID string, cause error) error {
	if err := u.repo.UpdateJobStatus(ctx, jobID, entity.StatusFailed, cause.Error()); err != nil {
		slog.Error("ジョブの失敗記録に失敗しました", "job_id", jobID, "error", err)
	}
	if err := u.prog.Clear(ctx, jobID); err != nil {
		slog.Warn("進捗の削除に失敗しました", "job_id", jobID, "error", err)
	}
	return cause
}

// setStage は進捗を更新します。進捗は補助情報なので失敗してもジョブは止めません。
func (u *pipelineUsecase) setStage(ctx context.Context, jobID, stage, detail string) {
	if err := u.prog.Set(ctx, jobID, stage, detail); err != nil {
		slog.Warn("進捗の更新に失敗しました", "job_id", jobID, "stage", stage, "error", err)
	}
}

// scoreSummary は検証スコアの最悪値と平均値を返します。
func scoreSummary(scores []float64) (worst, mean float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	return floats.Max(scores), stat.Mean(scores, nil)
}
