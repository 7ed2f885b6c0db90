// internal/domain/models/metric.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metric is a named, trackable quantity (e.g. "Weekly Attendance").
//
// GUID is the stable identifier used by widget settings. It may be stored
// in lower or upper case. _id only links metric values to their metric.
type Metric struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	GUID         string             `bson:"guid" json:"guid"`
	Title        string             `bson:"title" json:"title"`
	Subtitle     string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	IconCSSClass string             `bson:"icon_css_class,omitempty" json:"icon_css_class,omitempty"`

	// Partitions narrow the metric to entity types (campus, group, ...).
	// A partition with an empty EntityTypeGUID carries no context.
	Partitions []MetricPartition `bson:"partitions,omitempty" json:"partitions,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// MetricPartition associates a metric with zero or one entity type.
type MetricPartition struct {
	Label          string `bson:"label,omitempty" json:"label,omitempty"`
	EntityTypeGUID string `bson:"entity_type_guid,omitempty" json:"entity_type_guid,omitempty"`
}

// HasEntityType reports whether any partition references the entity type.
func (m Metric) HasEntityType(entityTypeGUID string) bool {
	if entityTypeGUID == "" {
		return false
	}
	for _, p := range m.Partitions {
		if strings.EqualFold(p.EntityTypeGUID, entityTypeGUID) {
			return true
		}
	}
	return false
}
