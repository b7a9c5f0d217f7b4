package service

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"landrecords/internal/errors"
	"landrecords/internal/integrity"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
)

// MutationVerification reports whether a mutation's stored hash still matches
// its recorded decision.
type MutationVerification struct {
	Mutation *model.Mutation `json:"mutation"`
	Verified bool            `json:"verified"`
}

// VerificationService answers lookups by public reference: transaction id,
// document digest or survey number.
type VerificationService interface {
	ByTransactionID(ctx context.Context, caller policy.Caller, transactionID string) (*MutationVerification, error)
	ByDocumentHash(ctx context.Context, caller policy.Caller, hash string) ([]model.Document, error)
	BySurveyNumber(ctx context.Context, caller policy.Caller, surveyNumber string) (*model.LandRecord, error)
}

type verificationService struct {
	repos repository.Repositories
}

// NewVerificationService creates a new verification service.
func NewVerificationService(repos repository.Repositories) VerificationService {
	return &verificationService{repos: repos}
}

func (s *verificationService) ByTransactionID(ctx context.Context, caller policy.Caller, transactionID string) (*MutationVerification, error) {
	m, err := s.repos.Mutations.FindByTransactionID(ctx, strings.TrimSpace(transactionID))
	if err != nil {
		return nil, notFoundAs(err, errors.ErrMutationNotFound, "find mutation")
	}
	if err := policy.Authorize(caller, policy.MutationResource(m), policy.ActionReadMutation); err != nil {
		return nil, err
	}
	return &MutationVerification{Mutation: m, Verified: integrity.VerifyMutation(m)}, nil
}

// ByDocumentHash returns the documents with this digest on parcels the
// caller may read. Documents on other parcels are silently omitted.
func (s *verificationService) ByDocumentHash(ctx context.Context, caller policy.Caller, hash string) ([]model.Document, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if raw, err := hex.DecodeString(hash); err != nil || len(raw) != 32 {
		return nil, errors.ErrInvalidInput.WithMessage("hash must be a hex-encoded SHA-256 digest")
	}

	docs, err := s.repos.Documents.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	owners := make(map[uuid.UUID]*model.LandRecord)
	visible := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		land, ok := owners[d.LandID]
		if !ok {
			land, err = s.repos.LandRecords.FindByID(ctx, d.LandID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					owners[d.LandID] = nil
					continue
				}
				return nil, err
			}
			owners[d.LandID] = land
		}
		if land != nil && policy.CanAccess(caller, policy.LandResource(land), policy.ActionReadDocuments) {
			visible = append(visible, d)
		}
	}
	return visible, nil
}

func (s *verificationService) BySurveyNumber(ctx context.Context, caller policy.Caller, surveyNumber string) (*model.LandRecord, error) {
	land, err := s.repos.LandRecords.FindBySurveyNumber(ctx, strings.TrimSpace(surveyNumber))
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), policy.ActionReadLand); err != nil {
		return nil, err
	}
	return land, nil
}
