// Package adapters はregenerationフィーチャーの外部接続実装を提供します。
package adapters

import (
	"time"

	"slidegen_backend/internal/feature/regeneration/domain/entity"
)

// JobModel is the GORM model for the jobs table.
type JobModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     uint   `gorm:"index;not null"`
	SlideID    string `gorm:"size:64;index"`
	Prompt     string `gorm:"type:text"`
	SourcePath string `gorm:"size:255;not null"`
	Status     string `gorm:"size:16;not null;index"`
	Message    string `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM.
func (JobModel) TableName() string {
	return "jobs"
}

// ToEntity converts the GORM model to a domain entity.
func (m *JobModel) ToEntity() *entity.Job {
	return &entity.Job{
		ID:         m.ID,
		UserID:     m.UserID,
		SlideID:    m.SlideID,
		Prompt:     m.Prompt,
		SourcePath: m.SourcePath,
		Status:     m.Status,
		Message:    m.Message,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// JobModelFromEntity converts a domain entity to a GORM model.
func JobModelFromEntity(j *entity.Job) *JobModel {
	return &JobModel{
		ID:         j.ID,
		UserID:     j.UserID,
		SlideID:    j.SlideID,
		Prompt:     j.Prompt,
		SourcePath: j.SourcePath,
		Status:     j.Status,
		Message:    j.Message,
		CreatedAt:  j.CreatedAt,
		UpdatedAt:  j.UpdatedAt,
	}
}

// SlideVersionModel is the GORM model for the slide_versions table.
type SlideVersionModel struct {
	ID          uint   `gorm:"primaryKey"`
	JobID       string `gorm:"size:36;index;not null"`
	UserID      uint   `gorm:"index;not null"`
	SlideID     string `gorm:"size:64;index"`
	Number      int    `gorm:"not null"`
	ImagePath   string `gorm:"size:255;not null"`
	LockApplied bool   `gorm:"not null"`
	LogoCount   int    `gorm:"not null"`
	Verified    bool   `gorm:"not null"`
	WorstScore  float64
	MeanScore   float64
	LockMeta    string `gorm:"type:text"` // lock diagnostics as JSON
	CreatedAt   time.Time
}

// TableName returns the table name for GORM.
func (SlideVersionModel) TableName() string {
	return "slide_versions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SlideVersionModel) ToEntity() *entity.SlideVersion {
	return &entity.SlideVersion{
		ID:          m.ID,
		JobID:       m.JobID,
		UserID:      m.UserID,
		SlideID:     m.SlideID,
		Number:      m.Number,
		ImagePath:   m.ImagePath,
		LockApplied: m.LockApplied,
		LogoCount:   m.LogoCount,
		Verified:    m.Verified,
		WorstScore:  m.WorstScore,
		MeanScore:   m.MeanScore,
		LockMeta:    m.LockMeta,
		CreatedAt:   m.CreatedAt,
	}
}

// SlideVersionModelFromEntity converts a domain entity to a GORM model.
func SlideVersionModelFromEntity(v *entity.SlideVersion) *SlideVersionModel {
	return &SlideVersionModel{
		ID:          v.ID,
		JobID:       v.JobID,
		UserID:      v.UserID,
		SlideID:     v.SlideID,
		Number:      v.Number,
		ImagePath:   v.ImagePath,
		LockApplied: v.LockApplied,
		LogoCount:   v.LogoCount,
		Verified:    v.Verified,
		WorstScore:  v.WorstScore,
		MeanScore:   v.MeanScore,
		LockMeta:    v.LockMeta,
		CreatedAt:   v.CreatedAt,
	}
}
