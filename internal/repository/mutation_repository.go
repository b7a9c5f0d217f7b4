package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"landrecords/internal/model"
)

// Transition describes a terminal status change for a mutation.
type Transition struct {
	From             model.MutationStatus
	To               model.MutationStatus
	VerificationHash string
	ReviewedBy       uuid.UUID
	ReviewedAt       time.Time
}

// MutationRepository defines mutation persistence operations.
type MutationRepository interface {
	Create(ctx context.Context, mutation *model.Mutation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Mutation, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*model.Mutation, error)
	List(ctx context.Context, page Page) ([]model.Mutation, error)
	ListByParty(ctx context.Context, userID uuid.UUID, page Page) ([]model.Mutation, error)
	ListByLand(ctx context.Context, landID uuid.UUID) ([]model.Mutation, error)
	// CompleteTransition updates the row only if it is still in t.From and
	// reports whether it did.
	CompleteTransition(ctx context.Context, id uuid.UUID, t Transition) (bool, error)
}

type mutationRepository struct {
	db *gorm.DB
}

// NewMutationRepository creates a new mutation repository.
func NewMutationRepository(db *gorm.DB) MutationRepository {
	return &mutationRepository{db: db}
}

// Create creates a new mutation record.
func (r *mutationRepository) Create(ctx context.Context, mutation *model.Mutation) error {
	return r.db.WithContext(ctx).Create(mutation).Error
}

// FindByID finds a mutation by ID.
func (r *mutationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Mutation, error) {
	var m model.Mutation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByTransactionID finds a mutation by its human-readable transaction id.
func (r *mutationRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.Mutation, error) {
	var m model.Mutation
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns a page of all mutations.
func (r *mutationRepository) List(ctx context.Context, page Page) ([]model.Mutation, error) {
	return r.list(r.db.WithContext(ctx), page)
}

// ListByParty returns mutations where userID is the previous or the new owner.
func (r *mutationRepository) ListByParty(ctx context.Context, userID uuid.UUID, page Page) ([]model.Mutation, error) {
	q := r.db.WithContext(ctx).Where("previous_owner_id = ? OR new_owner_id = ?", userID, userID)
	return r.list(q, page)
}

// ListByLand returns the transfer history of one land record.
func (r *mutationRepository) ListByLand(ctx context.Context, landID uuid.UUID) ([]model.Mutation, error) {
	mutations := make([]model.Mutation, 0)
	err := r.db.WithContext(ctx).Where("land_id = ?", landID).
		Order("created_at ASC").Order("id ASC").
		Find(&mutations).Error
	if err != nil {
		return nil, err
	}
	return mutations, nil
}

func (r *mutationRepository) list(q *gorm.DB, page Page) ([]model.Mutation, error) {
	page = page.Normalize()
	mutations := make([]model.Mutation, 0)
	err := q.Order("created_at ASC").Order("id ASC").
		Offset(page.Skip).Limit(page.Limit).
		Find(&mutations).Error
	if err != nil {
		return nil, err
	}
	return mutations, nil
}

// CompleteTransition performs a compare-and-set on status.
func (r *mutationRepository) CompleteTransition(ctx context.Context, id uuid.UUID, t Transition) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Mutation{}).
		Where("id = ? AND status = ?", id, t.From).
		Updates(map[string]interface{}{
			"status":            t.To,
			"verification_hash": t.VerificationHash,
			"reviewed_by":       t.ReviewedBy,
			"reviewed_at":       t.ReviewedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
