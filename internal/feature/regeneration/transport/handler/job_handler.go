// Package handler はregenerationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slidegen_backend/internal/api"
	"slidegen_backend/internal/feature/regeneration/domain/entity"
	"slidegen_backend/internal/feature/regeneration/usecase"
	jwtmw "slidegen_backend/internal/platform/jwt"
)

// JobUsecase は再生成ジョブ操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type JobUsecase interface {
	// CreateJob はスライドを預かり、再生成ジョブを投入します。
	CreateJob(ctx context.Context, userID uint, slideID, prompt string, source []byte) (*entity.Job, error)
	// GetJob はジョブの現在の状態を進捗・最新版とあわせて返します。
	GetJob(ctx context.Context, userID uint, jobID string) (*usecase.JobView, error)
	// JobImage は成功したジョブの最新の生成画像を返します。
	JobImage(ctx context.Context, userID uint, jobID string) ([]byte, error)
}

// JobHandler は再生成ジョブのHTTPリクエストを処理します。
type JobHandler struct {
	jobs JobUsecase
}

// NewJobHandler はJobHandlerの新しいインスタンスを生成します。
func NewJobHandler(jobs JobUsecase) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Create はスライド再生成ジョブの受付エンドポイントを処理します。
// 生成はワーカーが非同期に行うため、受付は202で返します。
//
// エンドポイント: POST /v1/jobs
// Content-Type: multipart/form-data
// フィールド: slide（元スライド画像、最大10MB）、prompt（任意の生成指示）、
// slide_id（任意。版番号を数える系列のキー）
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	file, err := c.FormFile("slide")
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "slide file is required"})
		return
	}
	data, err := readMultipartFile(file)
	if err != nil {
		slog.Warn("slide upload read failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "failed to read slide file"})
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), userID, c.PostForm("slide_id"), c.PostForm("prompt"), data)
	if err != nil {
		h.writeCreateError(c, userID, err)
		return
	}
	slog.Info("regeneration job accepted", "user_id", userID, "job_id", job.ID)
	c.JSON(http.StatusAccepted, api.JobAcceptedResponse{ID: job.ID, Status: job.Status})
}

// Get はジョブの状態参照エンドポイントを処理します。
//
// エンドポイント: GET /v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	view, err := h.jobs.GetJob(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "job not found"})
			return
		}
		slog.Error("job lookup failed", "error", err, "user_id", userID, "job_id", c.Param("id"))
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load job"})
		return
	}
	c.JSON(http.StatusOK, toJobResponse(view))
}

// Image は生成画像の取得エンドポイントを処理します。
//
// エンドポイント: GET /v1/jobs/:id/image
func (h *JobHandler) Image(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	data, err := h.jobs.JobImage(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrJobNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "job not found"})
		case errors.Is(err, usecase.ErrImageNotReady):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "image is not ready"})
		default:
			slog.Error("job image load failed", "error", err, "user_id", userID, "job_id", c.Param("id"))
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to load image"})
		}
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// writeCreateError はジョブ受付の失敗レスポンスを書き込みます。
func (h *JobHandler) writeCreateError(c *gin.Context, userID uint, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptySlide):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "slide file is required"})
	case errors.Is(err, usecase.ErrSlideTooLarge):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "slide file is too large"})
	case errors.Is(err, usecase.ErrUnsupportedSlide):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "unsupported image format"})
	default:
		slog.Error("job creation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create job"})
	}
}

// toJobResponse はジョブと進捗、最新版の診断をレスポンス型へ写します。
func toJobResponse(view *usecase.JobView) api.JobResponse {
	job := view.Job
	resp := api.JobResponse{
		ID:        job.ID,
		Status:    job.Status,
		Prompt:    job.Prompt,
		SlideID:   job.SlideID,
		Progress:  jobProgress(job.Status, view.Stage),
		Stage:     view.Stage,
		Detail:    view.Detail,
		Error:     job.Message,
		CreatedAt: job.CreatedAt.Format(time.RFC3339),
		UpdatedAt: job.UpdatedAt.Format(time.RFC3339),
	}
	if v := view.Version; v != nil {
		resp.Version = v.Number
		resp.Lock = lockMetadataFromJSON(v.LockMeta)
	}
	return resp
}

// lockMetadataFromJSON は保存されたロック診断JSONをレスポンス型へ復元します。
// 診断が壊れていても、それだけでジョブ参照は失敗させません。
func lockMetadataFromJSON(meta string) *api.LockMetadata {
	if meta == "" {
		return nil
	}
	var md api.LockMetadata
	if err := json.Unmarshal([]byte(meta), &md); err != nil {
		slog.Warn("stored lock metadata is malformed", "error", err)
		return nil
	}
	return &md
}

// jobProgress は状態と処理段階をおおよその進捗率へ変換します。
// 段階はワーカーが刻む補助情報なので、欠けていれば状態だけで見積もります。
func jobProgress(status, stage string) int {
	if status == entity.StatusSucceeded || status == entity.StatusFailed {
		return 100
	}
	switch stage {
	case usecase.StageGenerating:
		return 40
	case usecase.StageLocking:
		return 75
	case usecase.StageSaving:
		return 90
	}
	if status == entity.StatusRunning {
		return 40
	}
	return 10
}

// readMultipartFile はアップロードされた1ファイルをバイト列で返します。
func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded file", "error", err)
		}
	}()
	return io.ReadAll(f)
}

// currentUserID は認証ミドルウェアが設定したユーザーIDをコンテキストから取り出します。
func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
