package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document is append-only evidence attached to a land record.
type Document struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	LandID       uuid.UUID `json:"land_id" gorm:"type:char(36);not null;index"`
	DocumentType string    `json:"document_type" gorm:"size:64;not null"` // deed, survey, tax receipt, etc.
	FilePath     string    `json:"-" gorm:"size:512;not null"`
	FileName     string    `json:"file_name" gorm:"size:255;not null"`
	FileHash     string    `json:"file_hash" gorm:"size:64;not null;index"`
	FileSize     int64     `json:"file_size"`
	UploadedBy   uuid.UUID `json:"uploaded_by" gorm:"type:char(36);not null"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"autoCreateTime;index"`
}

// BeforeCreate sets UUID before creating the record.
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
