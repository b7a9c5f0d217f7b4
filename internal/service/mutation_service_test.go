package service

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landrecords/internal/errors"
	"landrecords/internal/integrity"
	"landrecords/internal/model"
	"landrecords/internal/repository"
)

func TestMutationWorkflow_TransferScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	admin := env.user(t, "registrar", true)

	parcel := env.land(t, alice, "SN-100")

	_, err := env.lands.Get(ctx, bob, parcel.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	m := env.mutation(t, alice, parcel.ID, bob)
	assert.Equal(t, model.MutationStatusPending, m.Status)
	assert.Equal(t, alice.UserID, m.PreviousOwnerID)
	assert.Nil(t, m.VerificationHash)

	approved, err := env.mutations.Approve(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MutationStatusApproved, approved.Status)
	require.NotNil(t, approved.VerificationHash)
	assert.Equal(t,
		integrity.MutationDigest(m.ID, parcel.ID, alice.UserID, bob.UserID, model.MutationStatusApproved),
		*approved.VerificationHash)

	got, err := env.lands.Get(ctx, admin, parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, got.OwnerID)

	stored, err := env.repos.Mutations.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, integrity.VerifyMutation(stored))

	_, err = env.mutations.Approve(ctx, admin, m.ID)
	require.ErrorIs(t, err, errors.ErrMutationNotPending)
	assert.Contains(t, err.Error(), "approved")

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.MutationTransitions.WithLabelValues("approved")))
}

func TestMutationService_RejectKeepsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	admin := env.user(t, "registrar", true)
	parcel := env.land(t, alice, "SN-100")
	m := env.mutation(t, alice, parcel.ID, bob)

	rejected, err := env.mutations.Reject(ctx, admin, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MutationStatusRejected, rejected.Status)
	assert.True(t, integrity.VerifyMutation(rejected))
	require.NotNil(t, rejected.ReviewedBy)
	assert.Equal(t, admin.UserID, *rejected.ReviewedBy)

	got, err := env.repos.LandRecords.FindByID(ctx, parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, got.OwnerID)

	_, err = env.mutations.Approve(ctx, admin, m.ID)
	require.ErrorIs(t, err, errors.ErrMutationNotPending)
	assert.Contains(t, err.Error(), "rejected")
}

func TestMutationService_CreateChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	admin := env.user(t, "registrar", true)
	parcel := env.land(t, alice, "SN-100")

	tests := []struct {
		name    string
		input   func() CreateMutationInput
		asBob   bool
		wantErr *errors.Error
	}{
		{"missing parcel", func() CreateMutationInput {
			return CreateMutationInput{LandID: uuid.New(), NewOwnerID: bob.UserID}
		}, false, errors.ErrLandRecordNotFound},
		{"not owner", func() CreateMutationInput {
			return CreateMutationInput{LandID: parcel.ID, NewOwnerID: alice.UserID}
		}, true, errors.ErrForbidden},
		{"unknown new owner", func() CreateMutationInput {
			return CreateMutationInput{LandID: parcel.ID, NewOwnerID: uuid.New()}
		}, false, errors.ErrNewOwnerNotFound},
		{"self transfer", func() CreateMutationInput {
			return CreateMutationInput{LandID: parcel.ID, NewOwnerID: alice.UserID}
		}, false, errors.ErrSelfTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := alice
			if tt.asBob {
				caller = bob
			}
			_, err := env.mutations.Create(ctx, caller, tt.input())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// An admin files on the owner's behalf; previous owner stays the parcel owner.
	m, err := env.mutations.Create(ctx, admin, CreateMutationInput{LandID: parcel.ID, NewOwnerID: bob.UserID})
	require.NoError(t, err)
	assert.Equal(t, alice.UserID, m.PreviousOwnerID)
	assert.Regexp(t, regexp.MustCompile(`^MUT-[0-9a-f]{8}-[0-9a-f]{4}$`), m.TransactionID)
}

func TestMutationService_ReviewRequiresAdminBeforeLookup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)

	_, err := env.mutations.Approve(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, errors.ErrAdminRequired)
	_, err = env.mutations.Reject(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, errors.ErrAdminRequired)

	admin := env.user(t, "registrar", true)
	_, err = env.mutations.Approve(ctx, admin, uuid.New())
	assert.ErrorIs(t, err, errors.ErrMutationNotFound)
}

func TestMutationService_ConcurrentApproveHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	admin := env.user(t, "registrar", true)
	parcel := env.land(t, alice, "SN-100")
	m := env.mutation(t, alice, parcel.ID, bob)

	const reviewers = 8
	var wg sync.WaitGroup
	errs := make([]error, reviewers)
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = env.mutations.Approve(ctx, admin, m.ID)
			} else {
				_, errs[i] = env.mutations.Reject(ctx, admin, m.ID)
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, errors.ErrMutationNotPending)
	}
	assert.Equal(t, 1, wins)

	final, err := env.repos.Mutations.FindByID(ctx, m.ID)
	require.NoError(t, err)
	land, err := env.repos.LandRecords.FindByID(ctx, parcel.ID)
	require.NoError(t, err)
	if final.Status == model.MutationStatusApproved {
		assert.Equal(t, bob.UserID, land.OwnerID)
	} else {
		assert.Equal(t, model.MutationStatusRejected, final.Status)
		assert.Equal(t, alice.UserID, land.OwnerID)
	}
}

func TestMutationService_StaleMutationCannotBeApproved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	carol := env.user(t, "carol", false)
	admin := env.user(t, "registrar", true)
	parcel := env.land(t, alice, "SN-100")

	toBob := env.mutation(t, alice, parcel.ID, bob)
	toCarol := env.mutation(t, alice, parcel.ID, carol)

	_, err := env.mutations.Approve(ctx, admin, toBob.ID)
	require.NoError(t, err)

	_, err = env.mutations.Approve(ctx, admin, toCarol.ID)
	require.ErrorIs(t, err, errors.ErrOwnershipChanged)

	// The failed approval rolled back entirely.
	still, err := env.repos.Mutations.FindByID(ctx, toCarol.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MutationStatusPending, still.Status)
	assert.Nil(t, still.VerificationHash)

	// It can still be rejected.
	_, err = env.mutations.Reject(ctx, admin, toCarol.ID)
	require.NoError(t, err)
}

func TestMutationService_ListScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	carol := env.user(t, "carol", false)
	dave := env.user(t, "dave", false)
	admin := env.user(t, "registrar", true)

	aliceLand := env.land(t, alice, "SN-A")
	carolLand := env.land(t, carol, "SN-C")
	aToB := env.mutation(t, alice, aliceLand.ID, bob)
	cToA := env.mutation(t, carol, carolLand.ID, alice)
	cToD := env.mutation(t, carol, carolLand.ID, dave)

	ids := func(ms []model.Mutation) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	forAlice, err := env.mutations.List(ctx, alice, repository.Page{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{aToB.ID, cToA.ID}, ids(forAlice))

	forBob, err := env.mutations.List(ctx, bob, repository.Page{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{aToB.ID}, ids(forBob))

	all, err := env.mutations.List(ctx, admin, repository.Page{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{aToB.ID, cToA.ID, cToD.ID}, ids(all))

	_, err = env.mutations.Get(ctx, bob, cToD.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
	got, err := env.mutations.Get(ctx, dave, cToD.ID)
	require.NoError(t, err)
	assert.Equal(t, cToD.TransactionID, got.TransactionID)
}

func TestMutationService_RetriesTransactionIDCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	parcel := env.land(t, alice, "SN-100")

	svc := env.mutations.(*mutationService)
	ids := []string{"MUT-aaaaaaaa-aaaa", "MUT-aaaaaaaa-aaaa", "MUT-bbbbbbbb-bbbb"}
	calls := 0
	svc.newTxID = func() string {
		id := ids[calls]
		calls++
		return id
	}

	first := env.mutation(t, alice, parcel.ID, bob)
	second := env.mutation(t, alice, parcel.ID, bob)
	assert.Equal(t, "MUT-aaaaaaaa-aaaa", first.TransactionID)
	assert.Equal(t, "MUT-bbbbbbbb-bbbb", second.TransactionID)
	assert.Equal(t, 3, calls)

	svc.newTxID = func() string { return "MUT-aaaaaaaa-aaaa" }
	_, err := svc.Create(ctx, alice, CreateMutationInput{LandID: parcel.ID, NewOwnerID: bob.UserID})
	assert.ErrorIs(t, err, errors.ErrTransactionIDTaken)
}

func TestNewTransactionID_Format(t *testing.T) {
	re := regexp.MustCompile(`^MUT-[0-9a-f]{8}-[0-9a-f]{4}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewTransactionID()
		assert.Regexp(t, re, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
