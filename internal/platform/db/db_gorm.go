// Package db はGORMによるデータベース接続の初期化を提供します。
package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authadapters "slidegen_backend/internal/feature/auth/adapters"
	authentity "slidegen_backend/internal/feature/auth/domain/entity"
	logoassetsadapters "slidegen_backend/internal/feature/logoassets/adapters"
	regenadapters "slidegen_backend/internal/feature/regeneration/adapters"
)

const (
	// connectTimeout は起動時に接続リトライを続ける最大時間です。
	connectTimeout = 60 * time.Second
	// retryInterval は接続リトライの間隔です。
	retryInterval = 3 * time.Second
)

// Config はデータベース接続設定を保持します。
type Config struct {
	Driver       string // "postgres"（デフォルト）または "sqlite"
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQLのインスタンス接続名
	Path         string // sqlite使用時のファイルパス
}

// LoadConfigFromEnv は環境変数からデータベース設定を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		Driver:       os.Getenv("DB_DRIVER"),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		Path:         os.Getenv("DB_PATH"),
	}
}

// BuildDSN は設定からPostgreSQL用のDSN文字列を生成します。
// InstanceNameが設定されている場合はCloud SQLのUnixソケット接続を優先します。
func BuildDSN(cfg Config) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Tokyo",
			cfg.InstanceName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=Asia/Tokyo",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// Opener はDSNからgorm.DBを開く関数です。テストから差し替えられるよう注入します。
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry は接続が確立するかタイムアウトするまで一定間隔でリトライします。
// コンテナ起動直後などDBの準備が遅れるケースを吸収します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %v: %w", timeout, err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		wait := retryInterval
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
		time.Sleep(wait)
	}
}

// OpenDB は環境変数の設定でデータベースへ接続します。
// 接続できない場合はプロセスを終了するため、起動時専用です。
func OpenDB() *gorm.DB {
	cfg := LoadConfigFromEnv()

	var (
		db  *gorm.DB
		err error
	)
	if cfg.Driver == "sqlite" {
		path := cfg.Path
		if path == "" {
			path = "slidegen.db"
		}
		db, err = ConnectWithRetry(path, connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		})
	} else {
		db, err = ConnectWithRetry(BuildDSN(cfg), connectTimeout, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		})
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	if os.Getenv("RUN_MIGRATIONS") == "true" {
		// マイグレーション（User, Session, LogoAsset, Job, SlideVersion）
		if err := db.AutoMigrate(
			&authentity.User{},
			&authadapters.SessionModel{},
			&logoassetsadapters.LogoAssetModel{},
			&regenadapters.JobModel{},
			&regenadapters.SlideVersionModel{},
		); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
