package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

const mapObjectColumns = `
	id::text, uid, object_type,
	ST_Y(location::geometry) AS lat,
	ST_X(location::geometry) AS lon,
	properties, COALESCE(updated_by::text, ''), stale, updated_at, created_at`

// MapObjectRepo implements ports.MapObjectRepository on PostGIS.
type MapObjectRepo struct {
	db *DB
}

// NewMapObjectRepo creates a new MapObjectRepo.
func NewMapObjectRepo(db *DB) *MapObjectRepo {
	return &MapObjectRepo{db: db}
}

// Upsert inserts the object or, when uid already exists, replaces its type,
// location, properties and author, clears stale and bumps updated_at.
func (r *MapObjectRepo) Upsert(ctx context.Context, in *domain.MapObjectInput, updatedBy string) (*domain.MapObject, error) {
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO map_objects (uid, object_type, location, properties, updated_by, stale, updated_at)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6, false, now())
		ON CONFLICT (uid) DO UPDATE
		SET object_type = EXCLUDED.object_type,
		    location    = EXCLUDED.location,
		    properties  = EXCLUDED.properties,
		    updated_by  = EXCLUDED.updated_by,
		    stale       = false,
		    updated_at  = now()
		RETURNING `+mapObjectColumns,
		in.UID, string(in.Type), in.Location.Lon, in.Location.Lat, in.Properties, nilIfEmpty(updatedBy))

	obj, err := scanMapObject(row)
	if err != nil {
		return nil, translateWriteError(err)
	}
	return obj, nil
}

// GetByUID returns a map object by uid.
func (r *MapObjectRepo) GetByUID(ctx context.Context, uid string) (*domain.MapObject, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+mapObjectColumns+` FROM map_objects WHERE uid = $1`, uid)
	obj, err := scanMapObject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return obj, err
}

// FindVisibleInBounds returns objects whose location lies in b (edges
// included). Pokemon are limited to those whose WillDisappear (epoch ms) is
// after now, or, lacking WillDisappear, that were updated within the last
// domain.PokemonTTL.
func (r *MapObjectRepo) FindVisibleInBounds(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+mapObjectColumns+`
		FROM map_objects
		WHERE ST_Intersects(location::geometry, ST_MakeEnvelope($1, $2, $3, $4, 4326))
		  AND (
		    object_type <> 'pokemon'
		    OR (
		      jsonb_exists(COALESCE(properties, '{}'::jsonb), 'WillDisappear')
		      AND jsonb_typeof(properties->'WillDisappear') = 'number'
		      AND (properties->>'WillDisappear')::double precision > $5
		    )
		    OR (
		      NOT jsonb_exists(COALESCE(properties, '{}'::jsonb), 'WillDisappear')
		      AND updated_at > $6
		    )
		  )
	`, b.MinLon, b.MinLat, b.MaxLon, b.MaxLat,
		float64(now.UnixMilli()), now.Add(-domain.PokemonTTL))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []domain.MapObject
	for rows.Next() {
		obj, err := scanMapObject(rows)
		if err != nil {
			return nil, err
		}
		objects = append(objects, *obj)
	}
	return objects, rows.Err()
}

func scanMapObject(row pgx.Row) (*domain.MapObject, error) {
	var (
		o         domain.MapObject
		typ       string
		updatedBy string
	)
	if err := row.Scan(
		&o.ID, &o.UID, &typ,
		&o.Location.Lat, &o.Location.Lon,
		&o.Properties, &updatedBy, &o.Stale, &o.UpdatedAt, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	o.ObjectType = domain.ObjectType(typ)
	if updatedBy != "" {
		o.UpdatedBy = &domain.User{ID: updatedBy}
	}
	return &o, nil
}

// translateWriteError maps constraint violations to validation errors.
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23514", "23502", "22P02":
		field := pgErr.ColumnName
		if field == "" {
			field = pgErr.ConstraintName
		}
		return &domain.ValidationError{
			Message: "MapObject validation failed",
			Errors:  map[string]string{field: pgErr.Message},
		}
	}
	return err
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
