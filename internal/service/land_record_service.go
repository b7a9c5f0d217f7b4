package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"landrecords/internal/errors"
	"landrecords/internal/logger"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
)

// CreateLandRecordInput describes a new parcel.
type CreateLandRecordInput struct {
	PropertyAddress string
	AreaSqft        decimal.Decimal
	SurveyNumber    string
	GeoLatitude     *float64
	GeoLongitude    *float64
}

// LandRecordService is the parcel registry.
type LandRecordService interface {
	Create(ctx context.Context, caller policy.Caller, in CreateLandRecordInput) (*model.LandRecord, error)
	Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.LandRecord, error)
	List(ctx context.Context, caller policy.Caller, page repository.Page) ([]model.LandRecord, error)
	ListMutations(ctx context.Context, caller policy.Caller, landID uuid.UUID) ([]model.Mutation, error)
}

type landRecordService struct {
	repos repository.Repositories
	log   *logger.Logger
}

// NewLandRecordService creates a new land record service.
func NewLandRecordService(repos repository.Repositories, log *logger.Logger) LandRecordService {
	return &landRecordService{repos: repos, log: log}
}

// Create registers a parcel owned by the caller.
func (s *landRecordService) Create(ctx context.Context, caller policy.Caller, in CreateLandRecordInput) (*model.LandRecord, error) {
	survey := strings.TrimSpace(in.SurveyNumber)
	if survey == "" || strings.TrimSpace(in.PropertyAddress) == "" || !in.AreaSqft.IsPositive() {
		return nil, errors.ErrInvalidInput.WithMessage("survey_number, property_address and a positive area_sqft are required")
	}

	if _, err := s.repos.LandRecords.FindBySurveyNumber(ctx, survey); err == nil {
		return nil, errors.ErrSurveyNumberTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check survey number: %w", err)
	}

	land := &model.LandRecord{
		OwnerID:         caller.UserID,
		PropertyAddress: strings.TrimSpace(in.PropertyAddress),
		AreaSqft:        in.AreaSqft,
		SurveyNumber:    survey,
		GeoLatitude:     in.GeoLatitude,
		GeoLongitude:    in.GeoLongitude,
		IsActive:        true,
	}
	if err := s.repos.LandRecords.Create(ctx, land); err != nil {
		return nil, conflictAs(err, errors.ErrSurveyNumberTaken, nil, "create land record")
	}

	s.log.Info(ctx, "land record created", map[string]any{
		"land_id":       land.ID.String(),
		"survey_number": land.SurveyNumber,
	})
	return land, nil
}

func (s *landRecordService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.LandRecord, error) {
	return s.authorized(ctx, caller, id, policy.ActionReadLand)
}

// List returns every parcel to admins and only owned parcels to everyone else.
func (s *landRecordService) List(ctx context.Context, caller policy.Caller, page repository.Page) ([]model.LandRecord, error) {
	if owner := policy.LandListScope(caller); owner != nil {
		return s.repos.LandRecords.ListByOwner(ctx, *owner, page)
	}
	return s.repos.LandRecords.List(ctx, page)
}

// ListMutations is the transfer history of one parcel.
func (s *landRecordService) ListMutations(ctx context.Context, caller policy.Caller, landID uuid.UUID) ([]model.Mutation, error) {
	if _, err := s.authorized(ctx, caller, landID, policy.ActionReadLand); err != nil {
		return nil, err
	}
	return s.repos.Mutations.ListByLand(ctx, landID)
}

// authorized loads the parcel and applies the policy, reporting a missing
// parcel before any access decision.
func (s *landRecordService) authorized(ctx context.Context, caller policy.Caller, id uuid.UUID, action policy.Action) (*model.LandRecord, error) {
	land, err := s.repos.LandRecords.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), action); err != nil {
		return nil, err
	}
	return land, nil
}
