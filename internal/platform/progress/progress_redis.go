// Package progress は実行中ジョブの進捗をRedisに保持するストアを提供します。
// DBのジョブレコードは確定した結果だけを持ち、処理中の細かい段階はここに載ります。
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound は進捗が存在しない場合に返されます。
var ErrNotFound = errors.New("progress not found")

// JobProgress は実行中ジョブの現在の段階を表します。
type JobProgress struct {
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store はジョブ進捗のRedisストアです。
// Redisが未設定（nilクライアント）の場合は何も保存しません。進捗は
// あくまで補助情報で、ジョブの成否はDBが持ちます。
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewStore はStoreの新しいインスタンスを生成します。
// prefixが空なら"progress"、ttlが0以下なら1時間を使います。
func NewStore(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "progress"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(jobID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, jobID)
}

// Set はジョブの進捗を上書きします。
func (s *Store) Set(ctx context.Context, jobID, stage, detail string) error {
	if s.client == nil {
		return nil
	}

	p := JobProgress{Stage: stage, Detail: detail, UpdatedAt: time.Now()}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	return s.client.Set(ctx, s.key(jobID), data, s.ttl).Err()
}

// Get はジョブの進捗を返します。存在しない場合はErrNotFoundを返します。
func (s *Store) Get(ctx context.Context, jobID string) (*JobProgress, error) {
	if s.client == nil {
		return nil, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var p JobProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &p, nil
}

// Clear はジョブの進捗を削除します。完了したジョブはDBの記録だけが残ります。
func (s *Store) Clear(ctx context.Context, jobID string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(jobID)).Err()
}
