package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"landrecords/internal/cache"
	"landrecords/internal/errors"
	"landrecords/internal/model"
	"landrecords/internal/policy"
	"landrecords/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes user lookups and administration.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	Profile(ctx context.Context, caller policy.Caller) (*model.User, error)
	PromoteToAdmin(ctx context.Context, username string) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id.String())
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrUserNotFound, "find user")
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) Profile(ctx context.Context, caller policy.Caller) (*model.User, error) {
	return s.GetUser(ctx, caller.UserID)
}

// PromoteToAdmin grants the administrator flag and drops the cached profile
// so the next request sees the new role.
func (s *userService) PromoteToAdmin(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFoundAs(err, errors.ErrUserNotFound, "find user")
	}
	if err := s.repo.SetAdmin(ctx, user.ID, true); err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	user.IsAdmin = true
	return user, nil
}
