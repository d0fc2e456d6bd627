package ports

import (
	"context"
	"time"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

// MapObjectRepository persists map objects.
type MapObjectRepository interface {
	// Upsert writes the object keyed by uid and returns the stored record.
	Upsert(ctx context.Context, in *domain.MapObjectInput, updatedBy string) (*domain.MapObject, error)
	GetByUID(ctx context.Context, uid string) (*domain.MapObject, error)
	// FindVisibleInBounds returns objects inside b that are visible at now.
	FindVisibleInBounds(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error)
}

// UserRepository reads accounts from the user directory.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
