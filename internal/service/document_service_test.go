package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landrecords/internal/errors"
	"landrecords/internal/model"
	"landrecords/internal/policy"
)

func sha(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func upload(t *testing.T, env *testEnv, caller policy.Caller, landID uuid.UUID, content []byte) *model.Document {
	t.Helper()
	doc, err := env.documents.Upload(context.Background(), caller, UploadInput{
		LandID: landID, DocumentType: "deed", FileName: "deed.pdf", Content: bytes.NewReader(content),
	})
	require.NoError(t, err)
	return doc
}

func TestDocumentService_LatestDigestScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	land := env.land(t, alice, "SN-100")

	b1 := bytes.Repeat([]byte("first deed "), 100)
	b2 := []byte("second deed")

	d1 := upload(t, env, alice, land.ID, b1)
	assert.Equal(t, sha(b1), d1.FileHash)
	assert.Equal(t, int64(len(b1)), d1.FileSize)
	assert.Equal(t, alice.UserID, d1.UploadedBy)

	got, err := env.repos.LandRecords.FindByID(ctx, land.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DocumentHash)
	assert.Equal(t, sha(b1), *got.DocumentHash)

	d2 := upload(t, env, alice, land.ID, b2)
	got, err = env.repos.LandRecords.FindByID(ctx, land.ID)
	require.NoError(t, err)
	assert.Equal(t, sha(b2), *got.DocumentHash)

	docs, err := env.documents.List(ctx, alice, land.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.ElementsMatch(t, []uuid.UUID{d1.ID, d2.ID}, []uuid.UUID{docs[0].ID, docs[1].ID})
}

func TestDocumentService_SameBytesSameDigest(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", false)
	land := env.land(t, alice, "SN-100")
	content := []byte("identical")

	a := upload(t, env, alice, land.ID, content)
	b := upload(t, env, alice, land.ID, content)
	assert.Equal(t, a.FileHash, b.FileHash)
	assert.NotEqual(t, a.FilePath, b.FilePath)
}

func TestDocumentService_UploadAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	admin := env.user(t, "registrar", true)
	land := env.land(t, alice, "SN-100")

	_, err := env.documents.Upload(ctx, bob, UploadInput{
		LandID: uuid.New(), DocumentType: "deed", FileName: "x.pdf", Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, errors.ErrLandRecordNotFound)

	_, err = env.documents.Upload(ctx, bob, UploadInput{
		LandID: land.ID, DocumentType: "deed", FileName: "x.pdf", Content: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = env.documents.List(ctx, bob, land.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	upload(t, env, admin, land.ID, []byte("admin upload"))
	docs, err := env.documents.List(ctx, admin, land.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentService_FailedUploadLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	land := env.land(t, alice, "SN-100")

	_, err := env.documents.Upload(ctx, alice, UploadInput{
		LandID: land.ID, DocumentType: "deed", FileName: "x.pdf",
		Content: iotest.TimeoutReader(strings.NewReader(strings.Repeat("y", 64))),
	})
	require.Error(t, err)

	docs, err := env.repos.Documents.ListByLand(ctx, land.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	got, err := env.repos.LandRecords.FindByID(ctx, land.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DocumentHash)
}

func TestDocumentService_EmptyFileIsRecorded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	land := env.land(t, alice, "SN-100")

	doc := upload(t, env, alice, land.ID, nil)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", doc.FileHash)
	assert.Equal(t, int64(0), doc.FileSize)

	got, err := env.repos.LandRecords.FindByID(ctx, land.ID)
	require.NoError(t, err)
	require.NotNil(t, got.DocumentHash)
	assert.Equal(t, doc.FileHash, *got.DocumentHash)

	res, err := env.documents.Verify(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.True(t, res.Intact)
}

func TestDocumentService_CancelledUploadLeavesNoTrace(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice", false)
	land := env.land(t, alice, "SN-100")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := env.documents.Upload(ctx, alice, UploadInput{
		LandID: land.ID, DocumentType: "deed", FileName: "x.pdf", Content: strings.NewReader("data"),
	})
	require.Error(t, err)

	docs, err := env.repos.Documents.ListByLand(context.Background(), land.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentService_VerifyDetectsTampering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice", false)
	bob := env.user(t, "bob", false)
	land := env.land(t, alice, "SN-100")
	doc := upload(t, env, alice, land.ID, []byte("recorded bytes"))

	res, err := env.documents.Verify(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.True(t, res.Intact)
	assert.Equal(t, doc.FileHash, res.ComputedHash)

	_, err = env.documents.Verify(ctx, bob, doc.ID)
	assert.ErrorIs(t, err, errors.ErrForbidden)
	_, err = env.documents.Verify(ctx, alice, uuid.New())
	assert.ErrorIs(t, err, errors.ErrDocumentNotFound)

	stored, err := env.repos.Documents.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	full := filepath.Join(env.storeRoot, filepath.FromSlash(stored.FilePath))
	require.NoError(t, os.WriteFile(full, []byte("forged bytes"), 0o644))

	res, err = env.documents.Verify(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.False(t, res.Intact)

	require.NoError(t, os.Remove(full))
	res, err = env.documents.Verify(ctx, alice, doc.ID)
	require.NoError(t, err)
	assert.False(t, res.Intact)
	assert.Empty(t, res.ComputedHash)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "deed.pdf", displayName("C:\\docs\\deed.pdf"))
	assert.Equal(t, "passwd", displayName("../../etc/passwd"))
	assert.Equal(t, "document", displayName("  "))
}
