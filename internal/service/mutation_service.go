package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"landrecords/internal/db"
	"landrecords/internal/errors"
	"landrecords/internal/integrity"
	"landrecords/internal/logger"
	"landrecords/internal/metrics"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
)

const transactionIDAttempts = 3

// CreateMutationInput requests transfer of a parcel to another user.
type CreateMutationInput struct {
	LandID     uuid.UUID
	NewOwnerID uuid.UUID
	Reason     string
}

// MutationService runs the ownership-transfer workflow:
// pending -> approved | rejected, both terminal.
type MutationService interface {
	Create(ctx context.Context, caller policy.Caller, in CreateMutationInput) (*model.Mutation, error)
	Approve(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error)
	Reject(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error)
	List(ctx context.Context, caller policy.Caller, page repository.Page) ([]model.Mutation, error)
	Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error)
}

type mutationService struct {
	repos   repository.Repositories
	tx      repository.Transactor
	metrics *metrics.Metrics
	log     *logger.Logger
	newTxID func() string
	now     func() time.Time
}

// NewMutationService creates a new mutation service.
func NewMutationService(repos repository.Repositories, tx repository.Transactor, m *metrics.Metrics, log *logger.Logger) MutationService {
	return &mutationService{
		repos:   repos,
		tx:      tx,
		metrics: m,
		log:     log,
		newTxID: NewTransactionID,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewTransactionID returns a human-referenceable id such as MUT-1a2b3c4d-9f8e.
func NewTransactionID() string {
	a := strings.ReplaceAll(uuid.NewString(), "-", "")
	b := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "MUT-" + a[:8] + "-" + b[:4]
}

// Create files a pending transfer. previous_owner_id is the parcel's owner at
// this moment, which for a non-admin caller is the caller.
func (s *mutationService) Create(ctx context.Context, caller policy.Caller, in CreateMutationInput) (*model.Mutation, error) {
	land, err := s.repos.LandRecords.FindByID(ctx, in.LandID)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
	}
	if err := policy.Authorize(caller, policy.LandResource(land), policy.ActionCreateMutation); err != nil {
		return nil, err
	}
	if _, err := s.repos.Users.FindByID(ctx, in.NewOwnerID); err != nil {
		return nil, notFoundAs(err, errors.ErrNewOwnerNotFound, "find new owner")
	}
	if in.NewOwnerID == land.OwnerID {
		return nil, errors.ErrSelfTransfer
	}

	var lastErr error
	for attempt := 0; attempt < transactionIDAttempts; attempt++ {
		m := &model.Mutation{
			LandID:          land.ID,
			PreviousOwnerID: land.OwnerID,
			NewOwnerID:      in.NewOwnerID,
			Reason:          strings.TrimSpace(in.Reason),
			TransactionID:   s.newTxID(),
			Status:          model.MutationStatusPending,
		}
		err := s.repos.Mutations.Create(ctx, m)
		if err == nil {
			s.metrics.IncMutationTransition(string(model.MutationStatusPending))
			s.log.Info(ctx, "mutation created", map[string]any{
				"mutation_id":    m.ID.String(),
				"transaction_id": m.TransactionID,
				"land_id":        land.ID.String(),
			})
			return m, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("create mutation: %w", err)
		}
		lastErr = err
		s.log.Warn(ctx, "transaction id collision, retrying", map[string]any{"attempt": attempt + 1})
	}
	return nil, errors.ErrTransactionIDTaken.Wrap(lastErr)
}

// Approve transfers ownership and seals the decision.
func (s *mutationService) Approve(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error) {
	return s.complete(ctx, caller, id, model.MutationStatusApproved)
}

// Reject seals the decision without touching ownership.
func (s *mutationService) Reject(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error) {
	return s.complete(ctx, caller, id, model.MutationStatusRejected)
}

// complete applies a terminal transition. The status flip, the verification
// hash and (for approval) the ownership change commit or roll back together.
// The status update is conditional on pending, so of two concurrent reviewers
// exactly one wins and the other sees the conflict.
func (s *mutationService) complete(ctx context.Context, caller policy.Caller, id uuid.UUID, to model.MutationStatus) (*model.Mutation, error) {
	if err := policy.RequireAdmin(caller); err != nil {
		return nil, err
	}

	var result *model.Mutation
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.Repositories) error {
		m, err := repos.Mutations.FindByID(ctx, id)
		if err != nil {
			return notFoundAs(err, errors.ErrMutationNotFound, "find mutation")
		}
		if m.Status != model.MutationStatusPending {
			return errors.NewMutationNotPending(string(m.Status))
		}

		now := s.now()
		hash := integrity.MutationDigest(m.ID, m.LandID, m.PreviousOwnerID, m.NewOwnerID, to)
		applied, err := repos.Mutations.CompleteTransition(ctx, m.ID, repository.Transition{
			From:             model.MutationStatusPending,
			To:               to,
			VerificationHash: hash,
			ReviewedBy:       caller.UserID,
			ReviewedAt:       now,
		})
		if err != nil {
			return fmt.Errorf("update mutation: %w", err)
		}
		if !applied {
			current, err := repos.Mutations.FindByID(ctx, m.ID)
			if err != nil {
				return notFoundAs(err, errors.ErrMutationNotFound, "reload mutation")
			}
			return errors.NewMutationNotPending(string(current.Status))
		}

		if to == model.MutationStatusApproved {
			moved, err := repos.LandRecords.TransferOwner(ctx, m.LandID, m.PreviousOwnerID, m.NewOwnerID)
			if err != nil {
				return fmt.Errorf("transfer ownership: %w", err)
			}
			if !moved {
				if _, err := repos.LandRecords.FindByID(ctx, m.LandID); err != nil {
					return notFoundAs(err, errors.ErrLandRecordNotFound, "find land record")
				}
				return errors.ErrOwnershipChanged
			}
		}

		m.Status = to
		m.VerificationHash = &hash
		m.ReviewedBy = &caller.UserID
		m.ReviewedAt = &now
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncMutationTransition(string(to))
	s.log.Info(ctx, "mutation "+string(to), map[string]any{
		"mutation_id":    result.ID.String(),
		"transaction_id": result.TransactionID,
		"land_id":        result.LandID.String(),
		"reviewed_by":    caller.UserID.String(),
	})
	return result, nil
}

// List returns every mutation to admins; others see those where they are
// the previous or the new owner.
func (s *mutationService) List(ctx context.Context, caller policy.Caller, page repository.Page) ([]model.Mutation, error) {
	if party := policy.MutationListScope(caller); party != nil {
		return s.repos.Mutations.ListByParty(ctx, *party, page)
	}
	return s.repos.Mutations.List(ctx, page)
}

func (s *mutationService) Get(ctx context.Context, caller policy.Caller, id uuid.UUID) (*model.Mutation, error) {
	m, err := s.repos.Mutations.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrMutationNotFound, "find mutation")
	}
	if err := policy.Authorize(caller, policy.MutationResource(m), policy.ActionReadMutation); err != nil {
		return nil, err
	}
	return m, nil
}
