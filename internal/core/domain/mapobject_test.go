package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

func TestObjectType_Valid(t *testing.T) {
	for _, typ := range []domain.ObjectType{"pokemon", "gym", "spawnpoint", "pokestop"} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	for _, typ := range []domain.ObjectType{"", "Pokemon", "raid"} {
		if typ.Valid() {
			t.Errorf("%q should be invalid", typ)
		}
	}
}

func TestMapObjectInput_Validate(t *testing.T) {
	ok := &domain.MapObjectInput{Type: "gym", UID: "G1", Location: &domain.GeoPoint{Lat: 10, Lon: 10}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &domain.MapObjectInput{Type: "gym", UID: "G1", Location: &domain.GeoPoint{Lat: 10, Lon: 181}}
	var verr *domain.ValidationError
	if err := bad.Validate(); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Errors["location"]; !ok || len(verr.Errors) != 1 {
		t.Errorf("expected only a location error, got %v", verr.Errors)
	}

	missing := &domain.MapObjectInput{Type: "gym", UID: "G1"}
	if err := missing.Validate(); err == nil {
		t.Error("expected error for missing location")
	}
}

func TestMapObjectInput_Validate_DecodeErrors(t *testing.T) {
	in := &domain.MapObjectInput{
		Type:         "gym",
		Location:     &domain.GeoPoint{Lat: 10, Lon: 10},
		DecodeErrors: map[string]string{"uid": "Cast to String failed for value at path `uid`"},
	}

	var verr *domain.ValidationError
	if err := in.Validate(); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors["uid"] != "Cast to String failed for value at path `uid`" {
		t.Errorf("expected cast message to replace the required message, got %q", verr.Errors["uid"])
	}
	if len(verr.Errors) != 1 {
		t.Errorf("expected a single field error, got %v", verr.Errors)
	}
}

func TestMapObject_Visible(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ms := func(d time.Duration) float64 { return float64(now.Add(d).UnixMilli()) }

	tests := []struct {
		name string
		obj  domain.MapObject
		want bool
	}{
		{"gym always", domain.MapObject{ObjectType: "gym", UpdatedAt: now.Add(-24 * time.Hour)}, true},
		{"pokestop ignores expiry", domain.MapObject{ObjectType: "pokestop", Properties: map[string]any{"WillDisappear": ms(-time.Hour)}}, true},
		{"pokemon future expiry", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": ms(time.Minute)}}, true},
		{"pokemon past expiry", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": ms(-time.Minute)}, UpdatedAt: now}, false},
		{"pokemon expiry overrides fresh update", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": ms(-time.Second)}, UpdatedAt: now}, false},
		{"pokemon no expiry recent", domain.MapObject{ObjectType: "pokemon", UpdatedAt: now.Add(-10 * time.Minute)}, true},
		{"pokemon no expiry stale", domain.MapObject{ObjectType: "pokemon", UpdatedAt: now.Add(-20 * time.Minute)}, false},
		{"pokemon non-numeric expiry", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": "soon"}, UpdatedAt: now}, false},
		{"pokemon expiry beyond int64 millis", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": 1e19}, UpdatedAt: now}, true},
		{"pokemon huge negative expiry", domain.MapObject{ObjectType: "pokemon", Properties: map[string]any{"WillDisappear": -1e19}, UpdatedAt: now}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.obj.Visible(now); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_HasRole(t *testing.T) {
	u := &domain.User{Roles: []string{"read", "push"}}
	if !u.HasRole(domain.RolePush) {
		t.Error("expected push role")
	}
	var nilUser *domain.User
	if nilUser.HasRole(domain.RolePush) {
		t.Error("nil user has no roles")
	}
}

func TestParseBounds(t *testing.T) {
	b, err := domain.ParseBounds("9, 9,11,11.5")
	if err != nil {
		t.Fatal(err)
	}
	want := domain.Bounds{MinLon: 9, MinLat: 9, MaxLon: 11, MaxLat: 11.5}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
	if !b.Contains(domain.GeoPoint{Lat: 11.5, Lon: 9}) {
		t.Error("edges should be inside")
	}
	if b.Contains(domain.GeoPoint{Lat: 12, Lon: 10}) {
		t.Error("point should be outside")
	}

	for _, in := range []string{"", "1,2,3", "1,2,3,x", "1,2,3,4,5"} {
		if _, err := domain.ParseBounds(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestNewFeatureCollection(t *testing.T) {
	fc := domain.NewFeatureCollection([]domain.MapObject{
		{UID: "G1", Location: domain.GeoPoint{Lat: 10, Lon: 20}, Properties: map[string]any{"team": "mystic"}},
		{UID: "S1", Location: domain.GeoPoint{Lat: 1, Lon: 2}},
	})

	data, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	const want = `{"features":[` +
		`{"geometry":{"type":"Point","coordinates":[20,10]},"id":"G1","properties":{"team":"mystic"},"type":"Feature"},` +
		`{"geometry":{"type":"Point","coordinates":[2,1]},"id":"S1","properties":{"id":"junk"},"type":"Feature"}` +
		`],"type":"FeatureCollection"}`
	if string(data) != want {
		t.Errorf("got  %s\nwant %s", data, want)
	}

	empty, _ := json.Marshal(domain.NewFeatureCollection(nil))
	if string(empty) != `{"features":[],"type":"FeatureCollection"}` {
		t.Errorf("unexpected empty collection %s", empty)
	}
}
