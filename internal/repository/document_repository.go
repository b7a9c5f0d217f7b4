package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"landrecords/internal/model"
)

// DocumentRepository defines document persistence operations. Documents are
// never updated or deleted.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListByLand(ctx context.Context, landID uuid.UUID) ([]model.Document, error)
	FindByHash(ctx context.Context, hash string) ([]model.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// Create creates a new document record.
func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

// FindByID finds a document by ID.
func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListByLand returns every document of a land record in upload order.
func (r *documentRepository) ListByLand(ctx context.Context, landID uuid.UUID) ([]model.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("land_id = ?", landID))
}

// FindByHash returns all documents whose content digest equals hash.
func (r *documentRepository) FindByHash(ctx context.Context, hash string) ([]model.Document, error) {
	return r.find(r.db.WithContext(ctx).Where("file_hash = ?", hash))
}

func (r *documentRepository) find(q *gorm.DB) ([]model.Document, error) {
	docs := make([]model.Document, 0)
	if err := q.Order("uploaded_at ASC").Order("id ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
