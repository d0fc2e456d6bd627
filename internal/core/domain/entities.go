package domain

import (
	"fmt"
	"slices"
	"time"
)

// ObjectType is the kind of entity a map object represents.
type ObjectType string

const (
	ObjectTypePokemon    ObjectType = "pokemon"
	ObjectTypeGym        ObjectType = "gym"
	ObjectTypeSpawnpoint ObjectType = "spawnpoint"
	ObjectTypePokestop   ObjectType = "pokestop"
)

// ObjectTypes lists every accepted object type.
var ObjectTypes = []ObjectType{
	ObjectTypePokemon,
	ObjectTypeGym,
	ObjectTypeSpawnpoint,
	ObjectTypePokestop,
}

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	return slices.Contains(ObjectTypes, t)
}

// RolePush grants permission to write map objects.
const RolePush = "push"

// PokemonTTL is how long a pokemon without an explicit expiry stays visible after its last update.
const PokemonTTL = 15 * time.Minute

// WillDisappearKey is the properties key holding a pokemon's expiry in epoch milliseconds.
const WillDisappearKey = "WillDisappear"

// User is an account from the user directory.
type User struct {
	ID       string   `json:"id"`
	FQName   string   `json:"fqname"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the user was granted role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// MapObject is a persisted sighting of a game entity.
type MapObject struct {
	ID         string         `json:"id"`
	ObjectType ObjectType     `json:"objectType"`
	UID        string         `json:"uid"`
	Location   GeoPoint       `json:"location"`
	Properties map[string]any `json:"properties,omitempty"`
	UpdatedBy  *User          `json:"updatedBy,omitempty"`
	Stale      bool           `json:"stale"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// MapObjectInput is the writable part of a map object, as pushed by a client.
type MapObjectInput struct {
	Type       ObjectType
	UID        string
	Location   *GeoPoint
	Properties map[string]any

	// DecodeErrors holds fields the client sent with a type that could not be cast.
	DecodeErrors map[string]string
}

// Validate checks the input and returns a *ValidationError listing every bad field.
func (in *MapObjectInput) Validate() error {
	errs := make(map[string]string)

	if !in.Type.Valid() {
		errs["objectType"] = fmt.Sprintf("`%s` is not a valid enum value for path `objectType`.", in.Type)
	}
	if in.UID == "" {
		errs["uid"] = "Path `uid` is required."
	}
	if in.Location == nil {
		errs["location"] = "Path `location` is required."
	} else if err := in.Location.Validate(); err != nil {
		errs["location"] = err.Error()
	}
	// Cast failures replace the generic messages for the same path.
	for path, msg := range in.DecodeErrors {
		errs[path] = msg
	}

	if len(errs) > 0 {
		return &ValidationError{Message: "MapObject validation failed", Errors: errs}
	}
	return nil
}

// WillDisappear returns the pokemon expiry stored in the properties, in
// epoch milliseconds. present is false when the key is absent; numeric is
// false when the value is not a number.
func (m *MapObject) WillDisappear() (ms float64, present, numeric bool) {
	raw, ok := m.Properties[WillDisappearKey]
	if !ok {
		return 0, false, false
	}
	ms, numeric = toFloat(raw)
	return ms, true, numeric
}

// Visible reports whether the object should be shown at time now.
// Non-pokemon objects are always visible. A pokemon is visible while its
// WillDisappear lies in the future, or, lacking one, for PokemonTTL after
// its last update.
func (m *MapObject) Visible(now time.Time) bool {
	if m.ObjectType != ObjectTypePokemon {
		return true
	}
	ms, present, numeric := m.WillDisappear()
	if present {
		return numeric && ms > float64(now.UnixMilli())
	}
	return m.UpdatedAt.After(now.Add(-PokemonTTL))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
