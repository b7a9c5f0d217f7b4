package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"landrecords/internal/auth"
	"landrecords/internal/errors"
	"landrecords/internal/logger"
	"landrecords/internal/metrics"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
)

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	FullName      string
	AadhaarNumber string
}

// TokenPair is issued on login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, username, password string) (*TokenPair, *model.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// Authenticate resolves validated access-token claims into a caller.
	Authenticate(ctx context.Context, claims *auth.Claims) (policy.Caller, error)
}

type authService struct {
	userRepo   repository.UserRepository
	users      UserService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	hasher     *auth.PasswordHasher
	metrics    *metrics.Metrics
	log        *logger.Logger
}

var userUniqueColumns = map[string]*errors.Error{
	"username":       errors.ErrUsernameTaken,
	"email":          errors.ErrEmailTaken,
	"aadhaar_number": errors.ErrAadhaarTaken,
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	users UserService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	hasher *auth.PasswordHasher,
	m *metrics.Metrics,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		hasher:     hasher,
		metrics:    m,
		log:        log,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.AadhaarNumber = strings.TrimSpace(in.AadhaarNumber)

	checks := []struct {
		find  func(context.Context, string) (*model.User, error)
		value string
		taken *errors.Error
	}{
		{s.userRepo.FindByUsername, in.Username, errors.ErrUsernameTaken},
		{s.userRepo.FindByEmail, in.Email, errors.ErrEmailTaken},
		{s.userRepo.FindByAadhaar, in.AadhaarNumber, errors.ErrAadhaarTaken},
	}
	for _, c := range checks {
		existing, err := c.find(ctx, c.value)
		if err == nil && existing != nil {
			return nil, c.taken
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check user existence: %w", err)
		}
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:      in.Username,
		Email:         in.Email,
		FullName:      strings.TrimSpace(in.FullName),
		PasswordHash:  hashed,
		AadhaarNumber: in.AadhaarNumber,
		IsActive:      true,
	}
	// The pre-checks race with concurrent registrations; the unique indexes decide.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, conflictAs(err, errors.ErrUsernameTaken, userUniqueColumns, "create user")
	}

	s.log.Info(ctx, "user registered", map[string]any{"user_id": user.ID.String(), "username": user.Username})
	return user, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, username, password string) (*TokenPair, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("find user: %w", err)
		}
		s.metrics.IncAuthAttempt("failure")
		return nil, nil, errors.ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil || !user.IsActive {
		s.metrics.IncAuthAttempt("failure")
		return nil, nil, errors.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Username, s.jwtService.RefreshTTL()); err != nil {
		return nil, nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.metrics.IncAuthAttempt("success")
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.jwtService.AccessTTL().Seconds()),
	}, user, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}

	storedUserID, storedUsername, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}
	if storedUserID != userID || storedUsername != claims.Username {
		return "", errors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(userID, claims.Username)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes the refresh token (when given) and blacklists the access
// token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if refreshToken != "" {
		tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
		if err != nil {
			return errors.ErrInvalidRefreshToken
		}
		if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
	}

	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return errors.ErrUnauthorized
	}
	if err := s.tokenStore.BlacklistAccessToken(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, claims *auth.Claims) (policy.Caller, error) {
	if claims == nil || claims.TokenType != auth.TokenTypeAccess {
		return policy.Caller{}, errors.ErrUnauthorized
	}
	revoked, err := s.tokenStore.IsAccessTokenBlacklisted(ctx, claims.ID)
	if err != nil || revoked {
		return policy.Caller{}, errors.ErrUnauthorized
	}
	userID, err := claims.UserUUID()
	if err != nil {
		return policy.Caller{}, errors.ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrUserNotFound) {
			return policy.Caller{}, errors.ErrUnauthorized
		}
		return policy.Caller{}, err
	}
	if !user.IsActive {
		return policy.Caller{}, errors.ErrUnauthorized
	}
	return policy.Caller{UserID: user.ID, IsAdmin: user.IsAdmin}, nil
}
