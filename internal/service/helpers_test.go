package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"landrecords/internal/auth"
	"landrecords/internal/config"
	"landrecords/internal/db"
	"landrecords/internal/integrity"
	"landrecords/internal/logger"
	"landrecords/internal/metrics"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
	"landrecords/internal/storage"
)

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, username string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, username, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type testEnv struct {
	repos     repository.Repositories
	tx        repository.Transactor
	store     *storage.Local
	storeRoot string
	engine    *integrity.Engine
	metrics   *metrics.Metrics
	jwt       *auth.JWTService
	tokens    *MockTokenStore
	users     UserService
	auth      AuthService
	lands     LandRecordService
	documents DocumentService
	mutations MutationService
	verify    VerificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn, err := db.New(config.DBConfig{Driver: config.DriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	root := t.TempDir()
	store, err := storage.NewLocal(config.StorageConfig{UploadDir: root})
	require.NoError(t, err)

	log := logger.Nop()
	env := &testEnv{
		repos:     repository.New(conn),
		tx:        repository.NewTransactor(conn),
		store:     store,
		storeRoot: root,
		engine:    integrity.New(config.IntegrityConfig{ChunkSize: 16}),
		metrics:   metrics.New(prometheus.NewRegistry()),
		tokens:    new(MockTokenStore),
	}
	env.jwt = auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "landrecords",
		AccessTTL:  30 * time.Minute,
		RefreshTTL: time.Hour,
	})
	env.users = NewUserService(env.repos.Users, nil)
	env.auth = NewAuthService(env.repos.Users, env.users, env.jwt, env.tokens,
		auth.NewPasswordHasher(config.PasswordConfig{BcryptCost: bcrypt.MinCost}), env.metrics, log)
	env.lands = NewLandRecordService(env.repos, log)
	env.documents = NewDocumentService(env.repos, env.tx, env.store, env.engine, env.metrics, log)
	env.mutations = NewMutationService(env.repos, env.tx, env.metrics, log)
	env.verify = NewVerificationService(env.repos)
	return env
}

func (e *testEnv) user(t *testing.T, name string, admin bool) policy.Caller {
	t.Helper()
	u := &model.User{
		Username: name, Email: name + "@example.com", FullName: name,
		PasswordHash: "x", AadhaarNumber: "AAD-" + name, IsActive: true, IsAdmin: admin,
	}
	require.NoError(t, e.repos.Users.Create(context.Background(), u))
	return policy.Caller{UserID: u.ID, IsAdmin: admin}
}

func (e *testEnv) land(t *testing.T, owner policy.Caller, survey string) *model.LandRecord {
	t.Helper()
	l, err := e.lands.Create(context.Background(), owner, CreateLandRecordInput{
		PropertyAddress: "12 Main Road",
		AreaSqft:        decimal.NewFromInt(1200),
		SurveyNumber:    survey,
	})
	require.NoError(t, err)
	return l
}

func (e *testEnv) mutation(t *testing.T, caller policy.Caller, landID uuid.UUID, to policy.Caller) *model.Mutation {
	t.Helper()
	m, err := e.mutations.Create(context.Background(), caller, CreateMutationInput{
		LandID: landID, NewOwnerID: to.UserID, Reason: "sale",
	})
	require.NoError(t, err)
	return m
}
