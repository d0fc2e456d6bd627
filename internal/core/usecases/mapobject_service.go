package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/pokedex/internal/core/domain"
	"github.com/samirrijal/pokedex/internal/core/ports"
	"github.com/samirrijal/pokedex/internal/pkg/geospatial"
	"github.com/samirrijal/pokedex/internal/pkg/logging"
	"github.com/samirrijal/pokedex/internal/pkg/metrics"
	"github.com/samirrijal/pokedex/internal/pkg/telemetry"
)

// MinQueryZoom is the lowest map zoom level that is answered from the store.
const MinQueryZoom = 10

// MaxNearRadius caps radius queries, in meters.
const MaxNearRadius = 50000.0

// BBoxQuery selects map objects inside Bounds. Zoom is nil when the client
// sent no parseable zoom level.
type BBoxQuery struct {
	Bounds domain.Bounds
	Zoom   *int
}

// Gated reports whether the zoom level is too low to query.
func (q BBoxQuery) Gated() bool {
	return q.Zoom != nil && *q.Zoom < MinQueryZoom
}

// MapObjectService handles pushes and spatial queries of map objects.
type MapObjectService struct {
	objects     ports.MapObjectRepository
	publisher   ports.EventPublisher
	bulkTimeout time.Duration
	now         func() time.Time

	inflight sync.WaitGroup
}

// NewMapObjectService creates a new MapObjectService. publisher may be nil.
// bulkTimeout bounds how long a detached bulk batch may run.
func NewMapObjectService(objects ports.MapObjectRepository, publisher ports.EventPublisher, bulkTimeout time.Duration) *MapObjectService {
	if bulkTimeout <= 0 {
		bulkTimeout = time.Minute
	}
	return &MapObjectService{
		objects:     objects,
		publisher:   publisher,
		bulkTimeout: bulkTimeout,
		now:         time.Now,
	}
}

// SetClock overrides the time source used for freshness checks.
func (s *MapObjectService) SetClock(now func() time.Time) {
	s.now = now
}

// Push validates and upserts one map object on behalf of user.
func (s *MapObjectService) Push(ctx context.Context, in *domain.MapObjectInput, user *domain.User) (*domain.MapObject, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "MapObjectService.Push")
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.AttrObjectType, string(in.Type)),
		attribute.String(telemetry.AttrObjectUID, in.UID),
		attribute.String(telemetry.AttrUserID, user.ID),
	)

	if err := in.Validate(); err != nil {
		metrics.MapObjectsUpserted.WithLabelValues(string(in.Type), "invalid").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	obj, err := s.objects.Upsert(ctx, in, user.ID)
	if err != nil {
		metrics.MapObjectsUpserted.WithLabelValues(string(in.Type), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("upsert map object %s: %w", in.UID, err)
	}
	obj.UpdatedBy = user
	metrics.MapObjectsUpserted.WithLabelValues(string(in.Type), "ok").Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishMapObjectUpserted(ctx, obj); err != nil {
			logging.FromContext(ctx).Warn("publish map object event failed", "uid", obj.UID, "error", err)
		}
	}
	return obj, nil
}

// PushBulk hands items to a background writer and returns immediately.
// Items are upserted one after another; a failed item is logged and the
// batch continues. The writer is detached from ctx cancellation.
func (s *MapObjectService) PushBulk(ctx context.Context, items []domain.MapObjectInput, user *domain.User) {
	metrics.BulkBatchesDispatched.Inc()
	log := logging.FromContext(ctx)
	bctx := context.WithoutCancel(ctx)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		bctx, cancel := context.WithTimeout(bctx, s.bulkTimeout)
		defer cancel()

		bctx, span := telemetry.Tracer().Start(bctx, "MapObjectService.PushBulk")
		defer span.End()
		span.SetAttributes(
			attribute.Int(telemetry.AttrBatchSize, len(items)),
			attribute.String(telemetry.AttrUserID, user.ID),
		)

		failed := 0
		for i := range items {
			if _, err := s.Push(bctx, &items[i], user); err != nil {
				failed++
				metrics.BulkItemFailures.Inc()
				attrs := []any{"index", i, "uid", items[i].UID, "error", err}
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					attrs = append(attrs, "errors", verr.Errors)
				}
				log.Error("bulk upsert failed", attrs...)
			}
		}
		log.Info("bulk push finished", "items", len(items), "failed", failed)
	}()
}

// Wait blocks until every dispatched bulk batch has finished.
func (s *MapObjectService) Wait() {
	s.inflight.Wait()
}

// FindInBounds returns the visible map objects inside the query box as GeoJSON.
// Queries below MinQueryZoom return an empty collection without touching the store.
func (s *MapObjectService) FindInBounds(ctx context.Context, q BBoxQuery) (domain.FeatureCollection, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "MapObjectService.FindInBounds")
	defer span.End()
	if q.Zoom != nil {
		span.SetAttributes(attribute.Int(telemetry.AttrZoom, *q.Zoom))
	}

	gated := q.Gated()
	metrics.BBoxQueries.WithLabelValues(strconv.FormatBool(gated)).Inc()
	if gated {
		return domain.NewFeatureCollection(nil), nil
	}

	objects, err := s.visibleIn(ctx, q.Bounds, s.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.FeatureCollection{}, err
	}

	fc := domain.NewFeatureCollection(objects)
	span.SetAttributes(attribute.Int(telemetry.AttrFeatures, len(fc.Features)))
	metrics.BBoxResultSize.Observe(float64(len(fc.Features)))
	return fc, nil
}

// FindNear returns the visible map objects within radiusMeters of center,
// nearest first. The zoom gate applies as for FindInBounds.
func (s *MapObjectService) FindNear(ctx context.Context, center domain.GeoPoint, radiusMeters float64, zoom *int) (domain.FeatureCollection, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "MapObjectService.FindNear")
	defer span.End()

	if err := center.Validate(); err != nil {
		return domain.FeatureCollection{}, err
	}
	if radiusMeters <= 0 || radiusMeters > MaxNearRadius {
		return domain.FeatureCollection{}, fmt.Errorf("radius must be in (0, %g] meters, got %g", MaxNearRadius, radiusMeters)
	}
	if (BBoxQuery{Zoom: zoom}).Gated() {
		return domain.NewFeatureCollection(nil), nil
	}

	now := s.now()
	var near []domain.MapObject
	dist := make(map[string]float64)
	for _, b := range geospatial.Around(center, radiusMeters) {
		objects, err := s.visibleIn(ctx, b, now)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return domain.FeatureCollection{}, err
		}
		for _, o := range objects {
			if _, seen := dist[o.UID]; seen {
				continue
			}
			if d := geospatial.Distance(center, o.Location); d <= radiusMeters {
				dist[o.UID] = d
				near = append(near, o)
			}
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return dist[near[i].UID] < dist[near[j].UID] })

	fc := domain.NewFeatureCollection(near)
	span.SetAttributes(attribute.Int(telemetry.AttrFeatures, len(fc.Features)))
	return fc, nil
}

// visibleIn queries the store and drops objects that are no longer visible at now.
func (s *MapObjectService) visibleIn(ctx context.Context, b domain.Bounds, now time.Time) ([]domain.MapObject, error) {
	objects, err := s.objects.FindVisibleInBounds(ctx, b, now)
	if err != nil {
		return nil, err
	}

	visible := objects[:0]
	for _, o := range objects {
		if o.Visible(now) {
			visible = append(visible, o)
		}
	}
	return visible, nil
}

// GetByUID returns a single map object.
func (s *MapObjectService) GetByUID(ctx context.Context, uid string) (*domain.MapObject, error) {
	return s.objects.GetByUID(ctx, uid)
}
