package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same connection or transaction.
type Repositories struct {
	Users       UserRepository
	LandRecords LandRecordRepository
	Documents   DocumentRepository
	Mutations   MutationRepository
}

// New builds all repositories on db.
func New(db *gorm.DB) Repositories {
	return Repositories{
		Users:       NewUserRepository(db),
		LandRecords: NewLandRecordRepository(db),
		Documents:   NewDocumentRepository(db),
		Mutations:   NewMutationRepository(db),
	}
}

// Transactor runs work atomically across repositories.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor backed by GORM transactions.
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithTransaction executes fn within a database transaction. Any error or
// panic from fn rolls everything back.
func (t *gormTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}
