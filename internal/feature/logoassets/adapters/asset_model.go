package adapters

import (
	"strings"
	"time"

	"slidegen_backend/internal/feature/logoassets/domain/entity"
)

// LogoAssetModel is the GORM model for the logo_assets table.
type LogoAssetModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
	Path      string `gorm:"size:255;not null"`
	Width     int    `gorm:"not null"`
	Height    int    `gorm:"not null"`
	SHA256    string `gorm:"column:sha256;size:64;index"`
	Palette   string `gorm:"size:255"` // comma-joined #rrggbb values, most frequent first
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (LogoAssetModel) TableName() string {
	return "logo_assets"
}

// ToEntity converts the GORM model to a domain entity.
func (m *LogoAssetModel) ToEntity() *entity.LogoAsset {
	var palette []string
	if m.Palette != "" {
		palette = strings.Split(m.Palette, ",")
	}
	return &entity.LogoAsset{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Path:      m.Path,
		Width:     m.Width,
		Height:    m.Height,
		SHA256:    m.SHA256,
		Palette:   palette,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// LogoAssetModelFromEntity converts a domain entity to a GORM model.
func LogoAssetModelFromEntity(a *entity.LogoAsset) *LogoAssetModel {
	return &LogoAssetModel{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Path:      a.Path,
		Width:     a.Width,
		Height:    a.Height,
		SHA256:    a.SHA256,
		Palette:   strings.Join(a.Palette, ","),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
