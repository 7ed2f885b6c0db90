// Package widgetrender turns a widget's settings into HTML: it selects the
// last value per metric, projects the summaries into Lava merge fields,
// renders the template and sanitizes the result.
package widgetrender

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dalemusser/stratametrics/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratametrics/internal/app/system/lava"
	"github.com/dalemusser/stratametrics/internal/app/system/metricsummary"
	"github.com/dalemusser/stratametrics/internal/app/system/widgetconfig"
)

// NoMetricsHTML is returned instead of rendering when the widget has no
// resolvable metrics.
const NoMetricsHTML = "<div class='alert alert-warning'>Please select a metric in the block settings.</div>"

// RenderContext carries the page the widget is rendered on.
type RenderContext struct {
	CurrentPath string
	PageParams  map[string]string

	// Lookup resolves the page's context entity when the widget's entity
	// setting names a type but no id. May be nil.
	Lookup widgetconfig.ContextLookup
}

// Service renders widgets. It is safe for concurrent use.
type Service struct {
	selector *metricsummary.Selector
	lava     *lava.Renderer
	now      func() time.Time
}

// New returns a Service using the wall clock.
func New(selector *metricsummary.Selector, renderer *lava.Renderer) *Service {
	return &Service{selector: selector, lava: renderer, now: time.Now}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// Render produces the widget's HTML.
func (s *Service) Render(ctx context.Context, settings widgetconfig.Settings, rc RenderContext) (string, error) {
	now := s.now()

	res, err := s.selector.Select(ctx, settings.Metrics, settings.Entity.Filter(rc.Lookup), now)
	if err != nil {
		return "", fmt.Errorf("select metric values: %w", err)
	}
	if res.NoMetrics {
		return NoMetricsHTML, nil
	}

	fields := lava.CommonFields(now, rc.CurrentPath, rc.PageParams)
	fields["Metrics"] = Project(res.Summaries, settings.RoundValues)

	source := settings.Template
	if source == "" {
		source = lava.DefaultTemplate
	}
	out, err := s.lava.Render(source, fields)
	if err != nil {
		return "", err
	}
	out = htmlsanitize.Sanitize(out)

	if settings.EnableDebug {
		out += lava.DebugInfo(fields)
	}
	return out, nil
}

// Project converts summaries to the maps templates iterate over. With
// round set, LastValue becomes the nearest whole number. An unset LastValue
// is nil and an unset LastValueDate is the zero time, which the Date filter
// renders empty.
func Project(summaries []metricsummary.Summary, round bool) []map[string]any {
	out := make([]map[string]any, 0, len(summaries))
	for _, s := range summaries {
		m := map[string]any{
			"Id":            s.MetricID.Hex(),
			"Guid":          s.GUID,
			"Title":         s.Title,
			"Subtitle":      s.Subtitle,
			"Description":   s.Description,
			"IconCssClass":  s.IconCSSClass,
			"LastValue":     nil,
			"LastValueDate": s.LastValueDate,
		}
		if s.LastValue != nil {
			if round {
				m["LastValue"] = int64(math.Round(*s.LastValue))
			} else {
				m["LastValue"] = *s.LastValue
			}
		}
		out = append(out, m)
	}
	return out
}
