// internal/domain/models/metricvalue.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetricValueType classifies a metric value.
type MetricValueType string

const (
	// MetricValueMeasure is a raw measured point.
	MetricValueMeasure MetricValueType = "measure"
	// MetricValueGoal is a target, never shown as a "last value".
	MetricValueGoal MetricValueType = "goal"
)

// MetricValue is one measurement of a Metric at a point in time.
type MetricValue struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	MetricID primitive.ObjectID `bson:"metric_id" json:"metric_id"`

	ValueType     MetricValueType `bson:"value_type" json:"value_type"`
	ValueDateTime *time.Time      `bson:"value_datetime,omitempty" json:"value_datetime,omitempty"`
	YValue        *float64        `bson:"y_value,omitempty" json:"y_value,omitempty"`
	Note          string          `bson:"note,omitempty" json:"note,omitempty"`

	// Partitions tie the value to specific entity instances. EntityID is nil
	// for partitions without context, and is omitted from the document so
	// "no entity information" is simply a missing field.
	Partitions []MetricValuePartition `bson:"partitions,omitempty" json:"partitions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MetricValuePartition optionally associates a value with one entity.
type MetricValuePartition struct {
	EntityID *int `bson:"entity_id,omitempty" json:"entity_id,omitempty"`
}

// HasEntityInfo reports whether any partition names an entity.
func (v MetricValue) HasEntityInfo() bool {
	for _, p := range v.Partitions {
		if p.EntityID != nil {
			return true
		}
	}
	return false
}

// HasEntity reports whether any partition names the given entity.
func (v MetricValue) HasEntity(entityID int) bool {
	for _, p := range v.Partitions {
		if p.EntityID != nil && *p.EntityID == entityID {
			return true
		}
	}
	return false
}
