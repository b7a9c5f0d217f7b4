package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"landrecords/internal/errors"
	"landrecords/internal/integrity"
	"landrecords/internal/logger"
	"landrecords/internal/metrics"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
	"landrecords/internal/storage"
)

// UploadInput is a document upload. Content is read exactly once.
type UploadInput struct {
	LandID       uuid.UUID
	DocumentType string
	FileName     string
	Content      io.Reader
}

// DocumentVerification compares stored bytes against the digest recorded at upload.
type DocumentVerification struct {
	Document     *model.Document `json:"document"`
	ComputedHash string          `json:"computed_hash"`
	Intact       bool            `json:"intact"`
}

// DocumentService is the append-only document ledger.
type DocumentService interface {
	Upload(ctx context.Context, caller policy.Caller, in UploadInput) (*model.Document, error)
	List(ctx context.Context, caller policy.Caller, landID uuid.UUID) ([]model.Document, error)
	Verify(ctx context.Context, caller policy.Caller, documentID uuid.UUID) (*DocumentVerification, error)
}

type documentService struct {
	repos   repository.Repositories
	tx      repository.Transactor
	store   storage.Storage
	engine  *integrity.Engine
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	repos repository.Repositories,
	tx repository.Transactor,
	store storage.Storage,
	engine *integrity.Engine,
	m *metrics.Metrics,
	log *logger.Logger,
) DocumentService {
	return &documentService{repos: repos, tx: tx, store: store, engine: engine, metrics: m, log: log}
}

// Upload streams content to storage while digesting it, then records the
// document and moves the parcel's latest digest in one transaction. The
// stored file is removed if any later step fails.
func (s *documentService) Upload(ctx context.Context, caller policy.Caller, in UploadInput) (*model.Document, error) {
	docType := strings.TrimSpace(in.DocumentType)
	if docType == "" || in.Content == nil {
		return nil, errors.ErrInvalidInput.WithMessage("document_type and file are required")
	}

	land, err := s.repos.LandRecords.FindByID(ctx, in.LandID)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), policy.ActionUploadDocument); err != nil {
		return nil, err
	}

	obj, err := s.store.Create(land.ID, in.FileName)
	if err != nil {
		return nil, fmt.Errorf("open storage object: %w", err)
	}
	digest, size, err := s.engine.Copy(ctx, obj, in.Content)
	if err != nil {
		_ = obj.Abort()
		return nil, fmt.Errorf("store document: %w", err)
	}
	if err := obj.Commit(); err != nil {
		return nil, fmt.Errorf("commit document: %w", err)
	}

	doc := &model.Document{
		LandID:       land.ID,
		DocumentType: docType,
		FilePath:     obj.Path(),
		FileName:     displayName(in.FileName),
		FileHash:     digest,
		FileSize:     size,
		UploadedBy:   caller.UserID,
	}
	err = s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.LandRecords.FindByID(ctx, land.ID); err != nil {
			return notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
		}
		if err := repos.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return repos.LandRecords.UpdateDocumentHash(ctx, land.ID, digest)
	})
	if err != nil {
		if rmErr := s.store.Remove(obj.Path()); rmErr != nil {
			s.log.Error(ctx, "remove orphaned upload", rmErr, map[string]any{"path": obj.Path()})
		}
		return nil, err
	}

	s.metrics.ObserveDocumentUpload(size)
	s.log.Info(ctx, "document uploaded", map[string]any{
		"land_id":     land.ID.String(),
		"document_id": doc.ID.String(),
		"file_hash":   digest,
		"file_size":   size,
	})
	return doc, nil
}

// List returns every document of a parcel in upload order.
func (s *documentService) List(ctx context.Context, caller policy.Caller, landID uuid.UUID) ([]model.Document, error) {
	land, err := s.repos.LandRecords.FindByID(ctx, landID)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), policy.ActionReadDocuments); err != nil {
		return nil, err
	}
	return s.repos.Documents.ListByLand(ctx, landID)
}

// Verify re-digests the stored bytes. A missing file counts as tampering.
func (s *documentService) Verify(ctx context.Context, caller policy.Caller, documentID uuid.UUID) (*DocumentVerification, error) {
	doc, err := s.repos.Documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrDocumentNotFound, "find document")
	}
	land, err := s.repos.LandRecords.FindByID(ctx, doc.LandID)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), policy.ActionReadDocuments); err != nil {
		return nil, err
	}

	result := &DocumentVerification{Document: doc}
	rc, err := s.store.Open(doc.FilePath)
	if err != nil {
		s.log.Warn(ctx, "stored document unreadable", map[string]any{"document_id": doc.ID.String(), "error": err.Error()})
		return result, nil
	}
	defer rc.Close()

	computed, _, err := s.engine.DigestReader(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("digest stored document: %w", err)
	}
	result.ComputedHash = computed
	result.Intact = computed == doc.FileHash
	if !result.Intact {
		s.log.Warn(ctx, "document digest mismatch", map[string]any{"document_id": doc.ID.String()})
	}
	return result, nil
}

// displayName keeps only the base name of a client-supplied filename.
func displayName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "document"
	}
	if len(name) > 255 {
		name = name[:255]
	}
	return name
}
