package integrity

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landrecords/internal/config"
	"landrecords/internal/model"
)

func TestDigest_IndependentOfChunkSize(t *testing.T) {
	content := bytes.Repeat([]byte("survey-deed-"), 3000)
	want := sha256.Sum256(content)

	for _, size := range []int{1, 7, 4096, 1 << 20} {
		e := New(config.IntegrityConfig{ChunkSize: size})
		got, n, err := e.DigestReader(context.Background(), bytes.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(want[:]), got, "chunk size %d", size)
		assert.Equal(t, int64(len(content)), n)
	}
}

func TestDigest_EmptyInput(t *testing.T) {
	e := New(config.IntegrityConfig{})
	got, n, err := e.DigestReader(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, DigestBytes(nil), got)
	assert.Equal(t, DefaultChunkSize, e.ChunkSize())
}

func TestCopy_WritesAndDigests(t *testing.T) {
	e := New(config.IntegrityConfig{ChunkSize: 3})
	var dst bytes.Buffer

	got, n, err := e.Copy(context.Background(), &dst, iotest.OneByteReader(strings.NewReader("hello world")))
	require.NoError(t, err)
	assert.Equal(t, "hello world", dst.String())
	assert.Equal(t, int64(11), n)
	assert.Equal(t, DigestBytes([]byte("hello world")), got)
}

func TestCopy_StopsOnCancel(t *testing.T) {
	e := New(config.IntegrityConfig{ChunkSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := e.DigestReader(ctx, strings.NewReader("data"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCopy_PropagatesReadError(t *testing.T) {
	e := New(config.IntegrityConfig{})
	_, _, err := e.DigestReader(context.Background(), iotest.ErrReader(assert.AnError))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMutationDigest_CanonicalForm(t *testing.T) {
	id, land, prev, next := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	canonical := strings.Join([]string{id.String(), land.String(), prev.String(), next.String(), "approved"}, "-")

	assert.Equal(t, DigestBytes([]byte(canonical)), MutationDigest(id, land, prev, next, model.MutationStatusApproved))
	assert.NotEqual(t,
		MutationDigest(id, land, prev, next, model.MutationStatusApproved),
		MutationDigest(id, land, prev, next, model.MutationStatusRejected))
}

func TestVerifyMutation(t *testing.T) {
	m := &model.Mutation{
		ID: uuid.New(), LandID: uuid.New(), PreviousOwnerID: uuid.New(), NewOwnerID: uuid.New(),
		Status: model.MutationStatusPending,
	}
	assert.False(t, VerifyMutation(m))

	m.Status = model.MutationStatusRejected
	hash := MutationDigest(m.ID, m.LandID, m.PreviousOwnerID, m.NewOwnerID, m.Status)
	m.VerificationHash = &hash
	assert.True(t, VerifyMutation(m))

	m.NewOwnerID = uuid.New()
	assert.False(t, VerifyMutation(m))
}
