// internal/app/features/metricwidget/handler.go
package metricwidget

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	entitytypestore "github.com/dalemusser/stratametrics/internal/app/store/entitytypes"
	metricsstore "github.com/dalemusser/stratametrics/internal/app/store/metrics"
	metricvaluestore "github.com/dalemusser/stratametrics/internal/app/store/metricvalues"
	widgetstore "github.com/dalemusser/stratametrics/internal/app/store/widgets"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/metricsummary"
	"github.com/dalemusser/stratametrics/internal/app/system/timeouts"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetrender"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WidgetSource loads stored widget settings.
type WidgetSource interface {
	GetByKey(ctx context.Context, key string) (models.Widget, error)
}

// EntityTypeSource resolves entity types for the page-context fallback.
type EntityTypeSource interface {
	GetByGUID(ctx context.Context, guid uuid.UUID) (models.EntityType, error)
}

type Handler struct {
	Widgets     WidgetSource
	EntityTypes EntityTypeSource
	Renderer    *widgetrender.Service
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	selector := metricsummary.New(metricsstore.New(db), metricvaluestore.New(db))
	return &Handler{
		Widgets:     widgetstore.New(db),
		EntityTypes: entitytypestore.New(db),
		Renderer:    widgetrender.New(selector, lava.New()),
		Log:         logger,
	}
}

type pageData struct {
	Title       string
	Subtitle    string
	Key         string
	Body        template.HTML
	CurrentPath string
}

// ServeWidget renders the widget inside its panel page.
func (h *Handler) ServeWidget(w http.ResponseWriter, r *http.Request) {
	settings, html, ok := h.render(w, r)
	if !ok {
		return
	}

	templates.Render(w, r, "metric_widget", pageData{
		Title:       settings.Title,
		Subtitle:    settings.Subtitle,
		Key:         chi.URLParam(r, "key"),
		Body:        template.HTML(html),
		CurrentPath: httpnav.CurrentPath(r),
	})
}

// ServeFragment writes the bare widget HTML, for embedding in other pages.
func (h *Handler) ServeFragment(w http.ResponseWriter, r *http.Request) {
	_, html, ok := h.render(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

// render loads the widget named in the URL and renders it. On failure it
// writes the error response and returns ok=false.
func (h *Handler) render(w http.ResponseWriter, r *http.Request) (widgetconfig.Settings, string, bool) {
	key := chi.URLParam(r, "key")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "render widget")
	defer cancel()

	widget, err := h.Widgets.GetByKey(ctx, key)
	if errors.Is(err, widgetstore.ErrNotFound) {
		http.NotFound(w, r)
		return widgetconfig.Settings{}, "", false
	}
	if err != nil {
		h.Log.Error("load widget failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return widgetconfig.Settings{}, "", false
	}

	settings := widgetconfig.FromWidget(widget)
	html, err := h.Renderer.Render(ctx, settings, widgetrender.RenderContext{
		CurrentPath: httpnav.CurrentPath(r),
		PageParams:  pageParams(r),
		Lookup:      h.contextLookup(ctx, r),
	})
	if err != nil {
		h.Log.Error("render widget failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return widgetconfig.Settings{}, "", false
	}

	h.Log.Debug("widget rendered", zap.String("key", key), zap.Int("metrics", len(settings.Metrics)))
	return settings, html, true
}

// contextLookup resolves the page's entity of a given type from the
// "<EntityTypeName>Id" query parameter, e.g. ?CampusId=7.
func (h *Handler) contextLookup(ctx context.Context, r *http.Request) widgetconfig.ContextLookup {
	return func(entityType uuid.UUID) (int, bool) {
		lookupCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), h.Log, "entity type lookup")
		et, err := h.EntityTypes.GetByGUID(lookupCtx, entityType)
		cancel()
		if err != nil {
			if !errors.Is(err, entitytypestore.ErrNotFound) {
				h.Log.Warn("entity type lookup failed", zap.String("entity_type", entityType.String()), zap.Error(err))
			}
			return 0, false
		}
		id, err := strconv.Atoi(query.Get(r, et.Name+"Id"))
		if err != nil {
			return 0, false
		}
		return id, true
	}
}

// pageParams flattens the route key and the query string into the
// PageParameter merge field.
func pageParams(r *http.Request) map[string]string {
	out := map[string]string{}
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	if key := chi.URLParam(r, "key"); key != "" {
		out["key"] = key
	}
	return out
}
