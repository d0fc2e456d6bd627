package natsadapter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

func TestSubject(t *testing.T) {
	if got := Subject(domain.ObjectTypeGym); got != "mapobjects.upserted.gym" {
		t.Errorf("Subject() = %s", got)
	}
}

func TestNewMapObjectEvent(t *testing.T) {
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	ev := NewMapObjectEvent(&domain.MapObject{
		UID:        "P1",
		ObjectType: domain.ObjectTypePokemon,
		Location:   domain.GeoPoint{Lat: 43.26, Lon: -2.93},
		UpdatedAt:  at,
	})

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Type    string `json:"type"`
		Feature struct {
			ID         string         `json:"id"`
			Properties map[string]any `json:"properties"`
			Geometry   struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"feature"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != "mapobject.upserted" || decoded.Feature.ID != "P1" {
		t.Errorf("unexpected event %s", data)
	}
	if decoded.Feature.Properties["id"] != "junk" {
		t.Errorf("expected placeholder properties, got %v", decoded.Feature.Properties)
	}
	if len(decoded.Feature.Geometry.Coordinates) != 2 || decoded.Feature.Geometry.Coordinates[0] != -2.93 {
		t.Errorf("unexpected coordinates %v", decoded.Feature.Geometry.Coordinates)
	}
}
