// Package worker はregenerationフィーチャーのasynqタスクハンドラーを提供します。
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"slidegen_backend/internal/platform/queue"
)

// JobProcessor は再生成パイプラインの実行を抽象化します。
// Goの慣例に従い、インターフェースは利用者（worker）側で定義します。
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// Handler は再生成タスクを受け取り、パイプラインへ引き渡します。
type Handler struct {
	pipeline JobProcessor
}

// NewHandler はHandlerの新しいインスタンスを生成します。
func NewHandler(pipeline JobProcessor) *Handler {
	return &Handler{pipeline: pipeline}
}

// HandleRegenerateTask はスライド再生成タスク1件を処理します。
// 失敗の記録はパイプライン側がジョブの状態として行うため、ここでは
// ログとasynqへのエラー返却だけを担います。
func (h *Handler) HandleRegenerateTask(ctx context.Context, t *asynq.Task) error {
	p, err := queue.ParseRegeneratePayload(t)
	if err != nil {
		// ペイロードが壊れたタスクは再試行しても直らない
		slog.Error("不正なタスクペイロードを破棄します", "type", t.Type(), "error", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	start := time.Now()
	slog.Info("再生成タスクを開始します", "job_id", p.JobID)
	if err := h.pipeline.ProcessJob(ctx, p.JobID); err != nil {
		slog.Error("再生成タスクが失敗しました", "job_id", p.JobID, "error", err, "elapsed", time.Since(start))
		return err
	}
	slog.Info("再生成タスクが終了しました", "job_id", p.JobID, "elapsed", time.Since(start))
	return nil
}
