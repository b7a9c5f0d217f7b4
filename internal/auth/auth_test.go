package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"landrecords/internal/config"
)

func newJWT() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "landrecords",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	})
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	svc := newJWT()
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	got, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, (30 * time.Minute).Seconds(), svc.RemainingTTL(claims).Seconds(), 5)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	svc := newJWT()
	tokenID, refresh, err := svc.GenerateRefreshToken(uuid.New(), "alice")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	id, err := svc.ExtractTokenID(refresh)
	require.NoError(t, err)
	assert.Equal(t, tokenID, id)
}

func TestJWTService_RejectsForeignSecretAndIssuer(t *testing.T) {
	svc := newJWT()
	other := NewJWTService(config.JWTConfig{Secret: "other", Issuer: "landrecords", AccessTTL: time.Minute})
	token, err := other.GenerateAccessToken(uuid.New(), "mallory")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)

	wrongIssuer := NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "elsewhere", AccessTTL: time.Minute})
	token, err = wrongIssuer.GenerateAccessToken(uuid.New(), "mallory")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := newJWT()
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.GenerateAccessToken(uuid.New(), "alice")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV { return &memoryKV{data: map[string][]byte{}} }

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestTokenStore_RefreshLifecycle(t *testing.T) {
	store := NewTokenStore(newMemoryKV())
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.StoreRefreshToken(ctx, "t1", userID, "alice", time.Hour))
	gotID, name, err := store.GetRefreshToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "alice", name)

	require.NoError(t, store.DeleteRefreshToken(ctx, "t1"))
	_, _, err = store.GetRefreshToken(ctx, "t1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestTokenStore_Blacklist(t *testing.T) {
	store := NewTokenStore(newMemoryKV())
	ctx := context.Background()

	listed, err := store.IsAccessTokenBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, listed)

	require.NoError(t, store.BlacklistAccessToken(ctx, "jti", time.Minute))
	listed, err = store.IsAccessTokenBlacklisted(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, listed)

	require.NoError(t, store.BlacklistAccessToken(ctx, "expired", 0))
	listed, _ = store.IsAccessTokenBlacklisted(ctx, "expired")
	assert.False(t, listed)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(config.PasswordConfig{BcryptCost: bcrypt.MinCost})

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.Error(t, h.Compare(hash, "wrong"))

	again, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(config.PasswordConfig{BcryptCost: 99}).cost)
}
