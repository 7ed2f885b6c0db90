package metricwidget_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/stratametrics/internal/app/features/metricwidget"
	entitytypestore "github.com/dalemusser/stratametrics/internal/app/store/entitytypes"
	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/metricsummary"
	"github.com/dalemusser/stratametrics/internal/app/system/timeouts"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetrender"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/dalemusser/stratametrics/internal/testutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeWidgets struct {
	widgets map[string]models.Widget
	err     error
}

func (f *fakeWidgets) GetByKey(_ context.Context, key string) (models.Widget, error) {
	if f.err != nil {
		return models.Widget{}, f.err
	}
	w, ok := f.widgets[key]
	if !ok {
		return models.Widget{}, widgetstore.ErrNotFound
	}
	return w, nil
}

type fakeEntityTypes struct {
	types    map[string]models.EntityType
	deadline time.Time
}

func (f *fakeEntityTypes) GetByGUID(ctx context.Context, guid uuid.UUID) (models.EntityType, error) {
	f.deadline, _ = ctx.Deadline()
	et, ok := f.types[guid.String()]
	if !ok {
		return models.EntityType{}, entitytypestore.ErrNotFound
	}
	return et, nil
}

type fakeMetrics struct{ metrics []models.Metric }

func (f *fakeMetrics) GetByGUIDs(_ context.Context, guids []uuid.UUID) ([]models.Metric, error) {
	var out []models.Metric
	for _, g := range guids {
		for _, m := range f.metrics {
			if m.GUID == g.String() {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

type fakeValues struct {
	values []models.MetricValue
	err    error
}

func (f *fakeValues) QueryValues(_ context.Context, metricID primitive.ObjectID, _ models.MetricValueType, _ time.Time, _ *int) ([]models.MetricValue, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.MetricValue
	for _, v := range f.values {
		if v.MetricID == metricID {
			out = append(out, v)
		}
	}
	return out, nil
}

var now = time.Date(2024, time.March, 20, 15, 30, 0, 0, time.UTC)

var campus = models.EntityType{
	ID:   primitive.NewObjectID(),
	GUID: "5b0e3a7c-0000-4000-8000-00000000ca11",
	Name: "Campus",
}

type fixture struct {
	handler     *metricwidget.Handler
	values      *fakeValues
	widgets     *fakeWidgets
	entityTypes *fakeEntityTypes
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	m := models.Metric{
		ID:         primitive.NewObjectID(),
		GUID:       uuid.NewString(),
		Title:      "Attendance",
		Partitions: []models.MetricPartition{{EntityTypeGUID: campus.GUID}},
	}
	value := func(y float64, daysAgo int, entityID int) models.MetricValue {
		at := now.AddDate(0, 0, -daysAgo)
		return models.MetricValue{
			ID:            primitive.NewObjectID(),
			MetricID:      m.ID,
			ValueType:     models.MetricValueMeasure,
			ValueDateTime: &at,
			YValue:        &y,
			Partitions:    []models.MetricValuePartition{{EntityID: &entityID}},
		}
	}
	fv := &fakeValues{values: []models.MetricValue{value(100, 1, 8), value(70, 2, 7)}}
	fw := &fakeWidgets{widgets: map[string]models.Widget{
		"weekly": {
			Key:              "weekly",
			Title:            "Last Week",
			MetricCategories: m.GUID + "|" + uuid.NewString(),
			Entity:           campus.GUID + "|",
			LiquidTemplate:   "{% for m in Metrics %}<b>{{ m.Title }}:{{ m.LastValue }}</b>{% endfor %}",
		},
		"bad-entity": {
			Key:              "bad-entity",
			MetricCategories: m.GUID,
			Entity:           campus.GUID + "|abc",
			LiquidTemplate:   "{% for m in Metrics %}<b>{{ m.Title }}:{{ m.LastValue }}</b>{% endfor %}",
		},
		"empty": {Key: "empty"},
	}}

	fe := &fakeEntityTypes{types: map[string]models.EntityType{campus.GUID: campus}}
	selector := metricsummary.New(&fakeMetrics{metrics: []models.Metric{m}}, fv)
	return fixture{
		handler: &metricwidget.Handler{
			Widgets:     fw,
			EntityTypes: fe,
			Renderer:    widgetrender.New(selector, lava.New()).WithClock(func() time.Time { return now }),
			Log:         zap.NewNop(),
		},
		values:      fv,
		widgets:     fw,
		entityTypes: fe,
	}
}

func serveFragment(h *metricwidget.Handler, target, key string) *testutil.ResponseRecorder {
	req := testutil.WithChiURLParam(testutil.NewRequest("GET", target), "key", key)
	rec := testutil.NewRecorder()
	h.ServeFragment(rec, req)
	return rec
}

func TestServeFragment_NoContextUsesAllValues(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/weekly/html", "weekly")

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<b>Attendance:100</b>")
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q", ct)
	}
}

func TestServeFragment_ContextEntityFromQuery(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/weekly/html?CampusId=7", "weekly")

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<b>Attendance:70</b>")
}

func TestServeFragment_BadContextIgnored(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/weekly/html?CampusId=abc", "weekly")

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<b>Attendance:100</b>")
}

func TestServeFragment_NonIntegerEntityIDIgnoresContext(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/bad-entity/html?CampusId=7", "bad-entity")

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<b>Attendance:100</b>")
	if !f.entityTypes.deadline.IsZero() {
		t.Error("entity type looked up for a widget without a usable entity setting")
	}
}

func TestServeFragment_EntityTypeLookupUsesShortTimeout(t *testing.T) {
	t.Cleanup(timeouts.Reset)
	timeouts.Configure(timeouts.Config{Short: time.Second, Medium: time.Minute})
	f := newFixture(t)

	start := time.Now()
	rec := serveFragment(f.handler, "/widgets/weekly/html?CampusId=7", "weekly")

	rec.AssertStatus(t, http.StatusOK)
	if f.entityTypes.deadline.IsZero() {
		t.Fatal("entity type lookup ran without a deadline")
	}
	if d := f.entityTypes.deadline.Sub(start); d > 2*time.Second {
		t.Errorf("lookup deadline %v away, want the short timeout", d)
	}
}

func TestServeFragment_NoMetricsWarning(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/empty/html", "empty")

	rec.AssertStatus(t, http.StatusOK)
	if rec.Body.String() != widgetrender.NoMetricsHTML {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestServeFragment_UnknownWidget(t *testing.T) {
	f := newFixture(t)

	rec := serveFragment(f.handler, "/widgets/missing/html", "missing")

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeFragment_StoreErrors(t *testing.T) {
	t.Run("widget store", func(t *testing.T) {
		f := newFixture(t)
		f.widgets.err = errors.New("connection reset")

		rec := serveFragment(f.handler, "/widgets/weekly/html", "weekly")
		rec.AssertStatus(t, http.StatusInternalServerError)
	})

	t.Run("value store", func(t *testing.T) {
		f := newFixture(t)
		f.values.err = errors.New("cursor killed")

		rec := serveFragment(f.handler, "/widgets/weekly/html", "weekly")
		rec.AssertStatus(t, http.StatusInternalServerError)
		rec.AssertNotContains(t, "cursor killed")
	})
}

func TestServeWidget_UnknownWidget(t *testing.T) {
	f := newFixture(t)

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/widgets/missing"), "key", "missing")
	rec := testutil.NewRecorder()
	f.handler.ServeWidget(rec, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeWidget_Renders(t *testing.T) {
	f := newFixture(t)

	req := testutil.WithChiURLParam(testutil.NewRequest("GET", "/widgets/weekly"), "key", "weekly")
	rec := testutil.NewRecorder()

	// The page layout needs the template engine, which is not booted here.
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Logf("template render panicked (engine not booted): %v", r)
			}
		}()
		f.handler.ServeWidget(rec, req)
	}()

	if rec.Code == http.StatusNotFound {
		t.Error("known widget reported as not found")
	}
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)
	router := metricwidget.Routes(f.handler)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/weekly/html?CampusId=7"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "<b>Attendance:70</b>")
}
