package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pokedex/internal/core/domain"
)

const (
	// StreamMapObjects holds upsert events for every map object type.
	StreamMapObjects = "MAP_OBJECTS"
	// SubjectPrefix is followed by the object type, e.g. mapobjects.upserted.gym.
	SubjectPrefix = "mapobjects.upserted."
	// SubjectAll matches upserts of any type.
	SubjectAll = SubjectPrefix + ">"
)

// Subject returns the subject upserts of typ are published on.
func Subject(typ domain.ObjectType) string {
	return SubjectPrefix + string(typ)
}

// MapObjectEvent is the payload published after a successful upsert.
type MapObjectEvent struct {
	Type    string         `json:"type"`
	Feature domain.Feature `json:"feature"`
	At      time.Time      `json:"at"`
}

// NewMapObjectEvent shapes obj as a GeoJSON feature event.
func NewMapObjectEvent(obj *domain.MapObject) MapObjectEvent {
	fc := domain.NewFeatureCollection([]domain.MapObject{*obj})
	return MapObjectEvent{
		Type:    "mapobject.upserted",
		Feature: fc.Features[0],
		At:      obj.UpdatedAt,
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamMapObjects,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    1 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishMapObjectUpserted publishes obj on its type subject.
func (p *Publisher) PublishMapObjectUpserted(ctx context.Context, obj *domain.MapObject) error {
	data, err := json.Marshal(NewMapObjectEvent(obj))
	if err != nil {
		return err
	}
	_, err = p.js.Publish(Subject(obj.ObjectType), data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
