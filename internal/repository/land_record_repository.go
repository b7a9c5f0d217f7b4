package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"landrecords/internal/model"
)

// LandRecordRepository defines land record persistence operations.
type LandRecordRepository interface {
	Create(ctx context.Context, land *model.LandRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.LandRecord, error)
	FindBySurveyNumber(ctx context.Context, surveyNumber string) (*model.LandRecord, error)
	List(ctx context.Context, page Page) ([]model.LandRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page Page) ([]model.LandRecord, error)
	TransferOwner(ctx context.Context, id, fromOwnerID, toOwnerID uuid.UUID) (bool, error)
	UpdateDocumentHash(ctx context.Context, id uuid.UUID, hash string) error
}

type landRecordRepository struct {
	db *gorm.DB
}

// NewLandRecordRepository creates a new land record repository.
func NewLandRecordRepository(db *gorm.DB) LandRecordRepository {
	return &landRecordRepository{db: db}
}

// Create creates a new land record.
func (r *landRecordRepository) Create(ctx context.Context, land *model.LandRecord) error {
	return r.db.WithContext(ctx).Create(land).Error
}

// FindByID finds a land record by ID.
func (r *landRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.LandRecord, error) {
	var land model.LandRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&land).Error; err != nil {
		return nil, err
	}
	return &land, nil
}

// FindBySurveyNumber finds a land record by its survey number.
func (r *landRecordRepository) FindBySurveyNumber(ctx context.Context, surveyNumber string) (*model.LandRecord, error) {
	var land model.LandRecord
	if err := r.db.WithContext(ctx).Where("survey_number = ?", surveyNumber).First(&land).Error; err != nil {
		return nil, err
	}
	return &land, nil
}

// List returns a page of all land records in creation order.
func (r *landRecordRepository) List(ctx context.Context, page Page) ([]model.LandRecord, error) {
	return r.list(r.db.WithContext(ctx), page)
}

// ListByOwner returns a page of land records owned by ownerID.
func (r *landRecordRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, page Page) ([]model.LandRecord, error) {
	return r.list(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), page)
}

func (r *landRecordRepository) list(q *gorm.DB, page Page) ([]model.LandRecord, error) {
	page = page.Normalize()
	lands := make([]model.LandRecord, 0)
	err := q.Order("created_at ASC").Order("id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&lands).Error
	if err != nil {
		return nil, err
	}
	return lands, nil
}

// TransferOwner moves the parcel to toOwnerID only if fromOwnerID still owns
// it, and reports whether it did. It bumps updated_at.
func (r *landRecordRepository) TransferOwner(ctx context.Context, id, fromOwnerID, toOwnerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.LandRecord{}).
		Where("id = ? AND owner_id = ?", id, fromOwnerID).
		Update("owner_id", toOwnerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// UpdateDocumentHash overwrites the latest-document digest.
func (r *landRecordRepository) UpdateDocumentHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.LandRecord{}).Where("id = ?", id).Update("document_hash", hash).Error
}
