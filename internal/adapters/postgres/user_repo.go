package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

// UserRepo implements ports.UserRepository with pgx.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID returns the user with the given UUID. Ids that are not UUIDs
// cannot exist in the directory and report domain.ErrUserNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var u domain.User
	err = r.db.Pool.QueryRow(ctx, `
		SELECT id::text, fqname, username, COALESCE(roles, '{}')
		FROM users WHERE id = $1
	`, uid.String()).Scan(&u.ID, &u.FQName, &u.Username, &u.Roles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. An empty ID is filled with a new UUID.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (id, fqname, username, roles)
		VALUES ($1, $2, $3, $4)
	`, u.ID, u.FQName, u.Username, u.Roles)
	return err
}
