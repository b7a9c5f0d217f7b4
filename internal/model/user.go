package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered identity. Aadhaar is the KYC reference that
// prevents one person from holding two accounts.
type User struct {
	ID            uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username      string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email         string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FullName      string    `json:"full_name" gorm:"size:255;not null"`
	PasswordHash  string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	AadhaarNumber string    `json:"aadhaar_number" gorm:"size:32;uniqueIndex;not null"`
	IsActive      bool      `json:"is_active" gorm:"default:true;index"`
	IsAdmin       bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
