package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MutationStatus represents the state of an ownership transfer request.
type MutationStatus string

const (
	MutationStatusPending  MutationStatus = "pending"
	MutationStatusApproved MutationStatus = "approved"
	MutationStatusRejected MutationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s MutationStatus) IsTerminal() bool {
	return s == MutationStatusApproved || s == MutationStatusRejected
}

// Mutation is an ownership transfer request for a land record.
// PreviousOwnerID is captured at creation and never re-derived.
type Mutation struct {
	ID               uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	LandID           uuid.UUID      `json:"land_id" gorm:"type:char(36);not null;index"`
	PreviousOwnerID  uuid.UUID      `json:"previous_owner_id" gorm:"type:char(36);not null;index"`
	NewOwnerID       uuid.UUID      `json:"new_owner_id" gorm:"type:char(36);not null;index"`
	Reason           string         `json:"mutation_reason" gorm:"type:text"`
	TransactionID    string         `json:"transaction_id" gorm:"size:32;uniqueIndex;not null"`
	Status           MutationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	VerificationHash *string        `json:"verification_hash" gorm:"size:64"`
	ReviewedBy       *uuid.UUID     `json:"reviewed_by,omitempty" gorm:"type:char(36)"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time      `json:"mutation_date" gorm:"index"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TableName keeps the historical table name.
func (Mutation) TableName() string {
	return "mutation_records"
}

// BeforeCreate sets UUID before creating the record.
func (m *Mutation) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HasParty reports whether userID is the previous or the new owner.
func (m *Mutation) HasParty(userID uuid.UUID) bool {
	return m.PreviousOwnerID == userID || m.NewOwnerID == userID
}
