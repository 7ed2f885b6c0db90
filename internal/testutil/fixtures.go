package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEntityType creates an entity type with a random GUID.
func (f *Fixtures) CreateEntityType(ctx context.Context, name string) models.EntityType {
	f.t.Helper()

	et := models.EntityType{
		ID:           primitive.NewObjectID(),
		GUID:         uuid.NewString(),
		Name:         name,
		FriendlyName: name,
	}
	if _, err := f.db.Collection("entity_types").InsertOne(ctx, et); err != nil {
		f.t.Fatalf("failed to create test entity type: %v", err)
	}
	return et
}

// CreateMetric creates a metric with a random GUID. Each entity type GUID
// given becomes one partition of the metric.
func (f *Fixtures) CreateMetric(ctx context.Context, title string, entityTypeGUIDs ...string) models.Metric {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Metric{
		ID:           primitive.NewObjectID(),
		GUID:         uuid.NewString(),
		Title:        title,
		Subtitle:     title + " subtitle",
		Description:  title + " description",
		IconCSSClass: "fa fa-chart-line",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, g := range entityTypeGUIDs {
		m.Partitions = append(m.Partitions, models.MetricPartition{Label: "Partition", EntityTypeGUID: g})
	}

	if _, err := f.db.Collection("metrics").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test metric: %v", err)
	}
	return m
}

// CreateMeasure records a measure value for m at the given time. Each
// entity id given becomes one partition of the value.
func (f *Fixtures) CreateMeasure(ctx context.Context, m models.Metric, at time.Time, y float64, entityIDs ...int) models.MetricValue {
	f.t.Helper()
	return f.createValue(ctx, m, models.MetricValueMeasure, at, y, entityIDs)
}

// CreateGoal records a goal value for m at the given time.
func (f *Fixtures) CreateGoal(ctx context.Context, m models.Metric, at time.Time, y float64, entityIDs ...int) models.MetricValue {
	f.t.Helper()
	return f.createValue(ctx, m, models.MetricValueGoal, at, y, entityIDs)
}

func (f *Fixtures) createValue(ctx context.Context, m models.Metric, vt models.MetricValueType, at time.Time, y float64, entityIDs []int) models.MetricValue {
	f.t.Helper()

	v := models.MetricValue{
		ID:            primitive.NewObjectID(),
		MetricID:      m.ID,
		ValueType:     vt,
		ValueDateTime: &at,
		YValue:        &y,
		CreatedAt:     time.Now().UTC(),
	}
	for _, id := range entityIDs {
		id := id
		v.Partitions = append(v.Partitions, models.MetricValuePartition{EntityID: &id})
	}

	if _, err := f.db.Collection("metric_values").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("failed to create test metric value: %v", err)
	}
	return v
}

// CreateWidget stores a widget under key showing the given metrics.
func (f *Fixtures) CreateWidget(ctx context.Context, key string, metrics ...models.Metric) models.Widget {
	f.t.Helper()

	var pairs string
	for i, m := range metrics {
		if i > 0 {
			pairs += ","
		}
		pairs += m.GUID + "|" + uuid.NewString()
	}

	w := models.Widget{
		ID:               primitive.NewObjectID(),
		Key:              key,
		Title:            "Last Week",
		MetricCategories: pairs,
		LiquidTemplate:   "{% for metric in Metrics %}<span class='metric'>{{ metric.Title }}={{ metric.LastValue }}</span>{% endfor %}",
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := f.db.Collection("widgets").InsertOne(ctx, w); err != nil {
		f.t.Fatalf("failed to create test widget: %v", err)
	}
	return w
}
