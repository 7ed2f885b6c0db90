// Package widgetconfig turns the raw, delimited widget settings into typed
// values. Parsing happens once, at the configuration boundary; malformed
// input degrades to "not set" rather than an error.
package widgetconfig

import (
	"strconv"
	"strings"

	"github.com/dalemusser/stratametrics/internal/app/system/metricsummary"
	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/google/uuid"
)

// EntitySetting is the parsed "<entityTypeGuid>|<entityId>" value.
// EntityID is nil when the id segment was empty or not a number; the
// widget then falls back to the page context.
type EntitySetting struct {
	EntityType uuid.UUID
	EntityID   *int
}

// ContextLookup returns the id of the page's context entity of the given
// type, if there is one.
type ContextLookup func(entityType uuid.UUID) (int, bool)

// ParseEntitySetting parses the entity setting. It returns nil when the
// value does not have exactly two segments, the type segment is not a UUID,
// or the id segment is present but not an integer. A blank id segment
// leaves EntityID nil so the page context can supply it.
func ParseEntitySetting(raw string) *EntitySetting {
	parts := strings.Split(raw, "|")
	if len(parts) != 2 {
		return nil
	}
	typeSeg := strings.TrimSpace(parts[0])
	if typeSeg == "" {
		return nil
	}
	et, err := uuid.Parse(typeSeg)
	if err != nil {
		return nil
	}

	es := &EntitySetting{EntityType: et}
	if idSeg := strings.TrimSpace(parts[1]); idSeg != "" {
		id, err := strconv.Atoi(idSeg)
		if err != nil {
			return nil
		}
		es.EntityID = &id
	}
	return es
}

// Filter resolves the setting into an entity filter. An explicit id wins;
// otherwise lookup (which may be nil) supplies the page's context entity.
// The result is nil when no id can be found.
func (es *EntitySetting) Filter(lookup ContextLookup) *metricsummary.EntityFilter {
	if es == nil {
		return nil
	}
	id, ok := 0, false
	switch {
	case es.EntityID != nil:
		id, ok = *es.EntityID, true
	case lookup != nil:
		id, ok = lookup(es.EntityType)
	}
	if !ok {
		return nil
	}
	return &metricsummary.EntityFilter{
		EntityTypeGUID: es.EntityType.String(),
		EntityID:       id,
	}
}

// ParseMetricCategories extracts the metric GUIDs from a comma separated
// list of "metricGuid|categoryGuid" pairs. Order is kept and duplicates
// are dropped. A bare "metricGuid" is accepted; unparsable pairs are
// skipped.
func ParseMetricCategories(raw string) []uuid.UUID {
	var out []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, pair := range strings.Split(raw, ",") {
		metricSeg, _, _ := strings.Cut(strings.TrimSpace(pair), "|")
		if metricSeg == "" {
			continue
		}
		g, err := uuid.Parse(strings.TrimSpace(metricSeg))
		if err != nil || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// Settings is a widget's configuration after parsing.
type Settings struct {
	Title       string
	Subtitle    string
	Metrics     []uuid.UUID
	Entity      *EntitySetting
	RoundValues bool
	Template    string
	EnableDebug bool
}

// FromWidget parses a stored widget.
func FromWidget(w models.Widget) Settings {
	return Settings{
		Title:       w.Title,
		Subtitle:    w.Subtitle,
		Metrics:     ParseMetricCategories(w.MetricCategories),
		Entity:      ParseEntitySetting(w.Entity),
		RoundValues: w.RoundValues,
		Template:    w.LiquidTemplate,
		EnableDebug: w.EnableDebug,
	}
}
