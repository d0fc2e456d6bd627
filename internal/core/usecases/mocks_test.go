package usecases_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

// --- Mock MapObjectRepository ---

type mockMapObjectRepo struct {
	upsertFn   func(ctx context.Context, in *domain.MapObjectInput, updatedBy string) (*domain.MapObject, error)
	getByUIDFn func(ctx context.Context, uid string) (*domain.MapObject, error)
	findFn     func(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error)
}

func (m *mockMapObjectRepo) Upsert(ctx context.Context, in *domain.MapObjectInput, updatedBy string) (*domain.MapObject, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, in, updatedBy)
	}
	return &domain.MapObject{UID: in.UID, ObjectType: in.Type}, nil
}

func (m *mockMapObjectRepo) GetByUID(ctx context.Context, uid string) (*domain.MapObject, error) {
	if m.getByUIDFn != nil {
		return m.getByUIDFn(ctx, uid)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMapObjectRepo) FindVisibleInBounds(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error) {
	if m.findFn != nil {
		return m.findFn(ctx, b, now)
	}
	return nil, nil
}

// --- In-memory MapObjectRepository keyed by uid ---

type memMapObjectRepo struct {
	mu      sync.Mutex
	objects map[string]domain.MapObject
	now     func() time.Time
}

func newMemRepo(now func() time.Time) *memMapObjectRepo {
	return &memMapObjectRepo{objects: make(map[string]domain.MapObject), now: now}
}

func (r *memMapObjectRepo) Upsert(ctx context.Context, in *domain.MapObjectInput, updatedBy string) (*domain.MapObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, exists := r.objects[in.UID]
	if !exists {
		obj.CreatedAt = r.now()
	}
	obj.UID = in.UID
	obj.ObjectType = in.Type
	obj.Location = *in.Location
	obj.Properties = in.Properties
	obj.Stale = false
	obj.UpdatedAt = r.now()
	r.objects[in.UID] = obj
	return &obj, nil
}

func (r *memMapObjectRepo) GetByUID(ctx context.Context, uid string) (*domain.MapObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[uid]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &obj, nil
}

func (r *memMapObjectRepo) FindVisibleInBounds(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MapObject
	for _, o := range r.objects {
		if b.Contains(o.Location) {
			out = append(out, o)
		}
	}
	return out, nil
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.User, error)
	calls     int
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.calls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockPublisher) PublishMapObjectUpserted(ctx context.Context, obj *domain.MapObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, obj.UID)
	return m.err
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	data map[string][]byte
	ttl  map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ttl: make(map[string]int)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.data[key] = value
	m.ttl[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}
