package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LandRecord is a parcel of land. OwnerID only changes when a mutation
// referencing the parcel is approved.
type LandRecord struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerID         uuid.UUID       `json:"owner_id" gorm:"type:char(36);not null;index"`
	PropertyAddress string          `json:"property_address" gorm:"size:512;not null"`
	AreaSqft        decimal.Decimal `json:"area_sqft" gorm:"type:decimal(20,2);not null"`
	SurveyNumber    string          `json:"survey_number" gorm:"size:128;uniqueIndex;not null"`
	// DocumentHash is the digest of the most recently uploaded document.
	DocumentHash *string   `json:"document_hash" gorm:"size:64"`
	GeoLatitude  *float64  `json:"geo_latitude,omitempty"`
	GeoLongitude *float64  `json:"geo_longitude,omitempty"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *LandRecord) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
