package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/usecases"
)

func TestUserService_Authorize(t *testing.T) {
	tests := []struct {
		name    string
		user    *domain.User
		repoErr error
		wantErr error
	}{
		{name: "push role", user: &domain.User{ID: "u1", Roles: []string{"read", "push"}}},
		{name: "missing role", user: &domain.User{ID: "u1", Roles: []string{"read"}}, wantErr: domain.ErrRoleDenied},
		{name: "no roles", user: &domain.User{ID: "u1"}, wantErr: domain.ErrRoleDenied},
		{name: "unknown user", repoErr: domain.ErrUserNotFound, wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockUserRepo{
				getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
					return tt.user, tt.repoErr
				},
			}
			svc := usecases.NewUserService(repo, nil, 0)

			_, err := svc.Authorize(context.Background(), "u1", domain.RolePush)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_Authorize_WrapsStoreError(t *testing.T) {
	dbErr := errors.New("pool closed")
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) { return nil, dbErr },
	}
	svc := usecases.NewUserService(repo, nil, 0)

	_, err := svc.Authorize(context.Background(), "u1", domain.RolePush)
	if !errors.Is(err, dbErr) || errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected wrapped store error, got %v", err)
	}
}

func TestUserService_GetByID_EmptyID(t *testing.T) {
	repo := &mockUserRepo{}
	svc := usecases.NewUserService(repo, nil, 0)

	if _, err := svc.GetByID(context.Background(), ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if repo.calls != 0 {
		t.Error("repo should not be called for empty id")
	}
}

func TestUserService_GetByID_Cached(t *testing.T) {
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "misty", Roles: []string{"push"}}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewUserService(repo, cache, 30)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u, err := svc.GetByID(ctx, "u2")
		if err != nil {
			t.Fatal(err)
		}
		if u.Username != "misty" || !u.HasRole("push") {
			t.Errorf("unexpected user %+v", u)
		}
	}
	if repo.calls != 1 {
		t.Errorf("expected 1 directory lookup, got %d", repo.calls)
	}
	if cache.ttl["users:id:u2"] != 30 {
		t.Errorf("expected ttl 30, got %d", cache.ttl["users:id:u2"])
	}
}

func TestUserService_GetByID_NoCacheWhenTTLZero(t *testing.T) {
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewUserService(repo, cache, 0)

	_, _ = svc.GetByID(context.Background(), "u3")
	_, _ = svc.GetByID(context.Background(), "u3")
	if repo.calls != 2 {
		t.Errorf("expected 2 lookups with caching disabled, got %d", repo.calls)
	}
	if len(cache.data) != 0 {
		t.Error("cache should stay empty")
	}
}

func TestUserService_Authorize_DenialDropsCachedUser(t *testing.T) {
	roles := []string{"read"}
	repo := &mockUserRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.User, error) {
			return &domain.User{ID: id, Username: "brock", Roles: roles}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewUserService(repo, cache, 30)
	ctx := context.Background()

	if _, err := svc.Authorize(ctx, "u4", domain.RolePush); !errors.Is(err, domain.ErrRoleDenied) {
		t.Fatalf("expected ErrRoleDenied, got %v", err)
	}
	if _, ok := cache.data["users:id:u4"]; ok {
		t.Error("denied user should not stay cached")
	}

	roles = []string{"read", "push"}
	if _, err := svc.Authorize(ctx, "u4", domain.RolePush); err != nil {
		t.Fatalf("expected newly granted role to be seen, got %v", err)
	}
	if repo.calls != 2 {
		t.Errorf("expected 2 directory lookups, got %d", repo.calls)
	}
}
