// Package metricsummary selects the latest measured value of each configured
// metric inside a fixed trailing window, optionally narrowed to one entity
// (a campus, a group, ...), and shapes the result into summaries for a
// dashboard template.
//
// The package owns no storage. Metrics and values come from a MetricSource
// and a ValueSource; the Mongo stores satisfy both.
package metricsummary

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WindowDays is the size of the trailing window. Only values strictly after
// now minus WindowDays qualify. It is not configurable.
const WindowDays = 8

// MetricSource resolves metric GUIDs to metrics.
type MetricSource interface {
	GetByGUIDs(ctx context.Context, guids []uuid.UUID) ([]models.Metric, error)
}

// ValueSource returns the values of one metric of the given type whose
// timestamp is strictly after the cutoff. When entityID is non-nil the
// result is limited to values partitioned to that entity or carrying no
// entity information at all.
type ValueSource interface {
	QueryValues(ctx context.Context, metricID primitive.ObjectID, valueType models.MetricValueType, after time.Time, entityID *int) ([]models.MetricValue, error)
}

// EntityFilter narrows values to one entity of one entity type.
type EntityFilter struct {
	EntityTypeGUID string
	EntityID       int
}

// Summary is a metric's descriptive fields plus its last value.
//
// LastValue is nil when no qualifying value exists or the value carried no
// number. LastValueDate is the zero time when unset.
type Summary struct {
	MetricID     primitive.ObjectID
	GUID         string
	Title        string
	Subtitle     string
	Description  string
	IconCSSClass string

	LastValue     *float64
	LastValueDate time.Time
}

// HasLastValue reports whether a qualifying value was found.
func (s Summary) HasLastValue() bool {
	return s.LastValue != nil || !s.LastValueDate.IsZero()
}

// Result is either "no metrics configured" or an ordered list of summaries.
type Result struct {
	NoMetrics bool
	Summaries []Summary
}

// Selector picks the last value per metric.
type Selector struct {
	metrics MetricSource
	values  ValueSource
}

// New returns a Selector reading from the given sources.
func New(metrics MetricSource, values ValueSource) *Selector {
	return &Selector{metrics: metrics, values: values}
}

// Cutoff returns the exclusive lower bound of the window ending at now.
func Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -WindowDays)
}

// Select returns one summary per resolved metric, in the order the
// MetricSource returned them. If no metric resolves the result has
// NoMetrics set and no summaries.
func (s *Selector) Select(ctx context.Context, guids []uuid.UUID, filter *EntityFilter, now time.Time) (Result, error) {
	var metrics []models.Metric
	if len(guids) > 0 {
		var err error
		metrics, err = s.metrics.GetByGUIDs(ctx, guids)
		if err != nil {
			return Result{}, fmt.Errorf("resolve metrics: %w", err)
		}
	}
	if len(metrics) == 0 {
		return Result{NoMetrics: true}, nil
	}

	cutoff := Cutoff(now)
	out := make([]Summary, 0, len(metrics))
	for _, m := range metrics {
		sum := NewSummary(m)

		var entityID *int
		if filter != nil && m.HasEntityType(filter.EntityTypeGUID) {
			id := filter.EntityID
			entityID = &id
		}

		values, err := s.values.QueryValues(ctx, m.ID, models.MetricValueMeasure, cutoff, entityID)
		if err != nil {
			return Result{}, fmt.Errorf("query values for metric %s: %w", m.GUID, err)
		}

		if last, ok := latest(values, cutoff, entityID); ok {
			applyLast(&sum, last, now.Location())
		}
		out = append(out, sum)
	}

	return Result{Summaries: out}, nil
}

// NewSummary copies the descriptive fields of m into a fresh summary.
func NewSummary(m models.Metric) Summary {
	return Summary{
		MetricID:     m.ID,
		GUID:         m.GUID,
		Title:        m.Title,
		Subtitle:     m.Subtitle,
		Description:  m.Description,
		IconCSSClass: m.IconCSSClass,
	}
}

// qualifies re-checks the value predicate so the selection does not depend
// on how strictly a ValueSource filters.
func qualifies(v models.MetricValue, cutoff time.Time, entityID *int) bool {
	if v.ValueType != models.MetricValueMeasure {
		return false
	}
	if v.ValueDateTime == nil || !v.ValueDateTime.After(cutoff) {
		return false
	}
	if entityID != nil && v.HasEntityInfo() && !v.HasEntity(*entityID) {
		return false
	}
	return true
}

// latest returns the qualifying value with the greatest timestamp. Ties go
// to the highest ObjectID, matching the store's sort order.
func latest(values []models.MetricValue, cutoff time.Time, entityID *int) (models.MetricValue, bool) {
	var best models.MetricValue
	found := false
	for _, v := range values {
		if !qualifies(v, cutoff, entityID) {
			continue
		}
		if !found {
			best, found = v, true
			continue
		}
		switch {
		case v.ValueDateTime.After(*best.ValueDateTime):
			best = v
		case v.ValueDateTime.Equal(*best.ValueDateTime) && v.ID.Hex() > best.ID.Hex():
			best = v
		}
	}
	return best, found
}

// applyLast copies v onto sum. The date is taken in loc, the zone of the
// caller's clock, since stored timestamps decode as UTC.
func applyLast(sum *Summary, v models.MetricValue, loc *time.Location) {
	if v.ValueDateTime != nil {
		sum.LastValueDate = dateOnly(v.ValueDateTime.In(loc))
	}
	if v.YValue != nil {
		y := *v.YValue
		sum.LastValue = &y
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
