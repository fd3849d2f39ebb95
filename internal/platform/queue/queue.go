// Package queue はasynqによる非同期ジョブキューのタスク定義と接続設定を提供します。
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"slidegen_backend/internal/platform/redis"
)

// TypeRegenerateSlide はスライド再生成タスクのタイプ名です。
const TypeRegenerateSlide = "regeneration:slide"

// RegeneratePayload はスライド再生成タスクのペイロードです。
// 入力一式はDBのジョブレコードが持つため、ここにはIDだけを載せます。
type RegeneratePayload struct {
	JobID string `json:"jobId"`
}

// NewRegenerateTask はジョブIDからスライド再生成タスクを生成します。
// 失敗はジョブとして記録し、自動リトライはしません。再実行はパイプライン
// 全体を呼び出し側がやり直します。
func NewRegenerateTask(jobID string) (*asynq.Task, error) {
	payload, err := json.Marshal(RegeneratePayload{JobID: jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRegenerateSlide, payload, asynq.MaxRetry(0)), nil
}

// ParseRegeneratePayload はタスクからペイロードを取り出します。
func ParseRegeneratePayload(t *asynq.Task) (RegeneratePayload, error) {
	var p RegeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return RegeneratePayload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if p.JobID == "" {
		return RegeneratePayload{}, fmt.Errorf("payload has no job id")
	}
	return p, nil
}

// RedisOpt は環境変数からasynq用のRedis接続設定を返します。
// APIサーバー・ワーカー・キャッシュは同じRedisを共有します。
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redis.Addr(),
		Password: redis.Password(),
	}
}

// NewClient はタスク投入用のasynqクライアントを生成します。
func NewClient() *asynq.Client {
	return asynq.NewClient(RedisOpt())
}

// NewServer はワーカープロセス用のasynqサーバーを生成します。
func NewServer(concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 2
	}
	return asynq.NewServer(RedisOpt(), asynq.Config{
		Concurrency: concurrency,
	})
}

// Enqueuer はスライド再生成タスクをキューへ投入するアダプタです。
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer は指定クライアントで投入するEnqueuerを生成します。
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueRegenerate は指定ジョブのスライド再生成タスクを投入します。
func (e *Enqueuer) EnqueueRegenerate(ctx context.Context, jobID string) error {
	task, err := NewRegenerateTask(jobID)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}
