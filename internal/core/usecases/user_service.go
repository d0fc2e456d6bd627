package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/ports"
	"github.com/samirrijal/pokedex/internal/pkg/logging"
	"github.com/samirrijal/pokedex/internal/pkg/metrics"
)

// UserService resolves caller identities against the user directory.
type UserService struct {
	users    ports.UserRepository
	cache    ports.CacheService
	cacheTTL int
}

// NewUserService creates a new UserService. cache may be nil; cacheTTL is in seconds
// and a value <= 0 disables caching.
func NewUserService(users ports.UserRepository, cache ports.CacheService, cacheTTL int) *UserService {
	return &UserService{users: users, cache: cache, cacheTTL: cacheTTL}
}

func userCacheKey(id string) string {
	return "users:id:" + id
}

// GetByID returns the user for id, reading through the cache.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}

	cacheKey := userCacheKey(id)
	if s.cacheable() {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var u domain.User
			if err := json.Unmarshal(data, &u); err == nil {
				metrics.CacheHits.WithLabelValues("user").Inc()
				return &u, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("user").Inc()
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	if s.cacheable() {
		if data, err := json.Marshal(u); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return u, nil
}

// Authorize resolves id and checks that the user holds role.
func (s *UserService) Authorize(ctx context.Context, id, role string) (*domain.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve user %s: %w", id, err)
	}

	logging.FromContext(ctx).Info("authed user",
		"fqname", u.FQName,
		"username", u.Username,
		"roles", u.Roles,
	)

	if !u.HasRole(role) {
		// Drop the cached entry so a newly granted role is seen on the next request.
		if s.cacheable() {
			_ = s.cache.Delete(ctx, userCacheKey(id))
		}
		return u, domain.ErrRoleDenied
	}
	return u, nil
}

func (s *UserService) cacheable() bool {
	return s.cache != nil && s.cacheTTL > 0
}
