// Package redis はRedis接続の初期化を提供します。
package redis

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// Addr は環境変数からRedisの接続先アドレスを返します。
// REDIS_ADDRが設定されていればそれを、なければREDIS_HOST:REDIS_PORTを使います。
// キャッシュ・進捗ストア・ジョブキュー（asynq）は同じ接続先を共有します。
func Addr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT")
}

// Password は環境変数からRedisのパスワードを返します。
func Password() string {
	return os.Getenv("REDIS_PASSWORD")
}

// NewRedisClient は環境変数の設定でRedisクライアントを生成し、疎通を確認します。
func NewRedisClient() (*redis.Client, error) {
	addr := Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: Password(),
		DB:       0,
	})

	// 接続確認
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
