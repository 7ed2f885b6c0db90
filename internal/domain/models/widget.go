// internal/domain/models/widget.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Widget holds the settings of one "last week's data" dashboard block.
//
// MetricCategories and Entity are kept in their raw delimited form
// ("metricGuid|categoryGuid,..." and "entityTypeGuid|entityId") and are
// parsed once per render by the widgetconfig package.
type Widget struct {
	ID  primitive.ObjectID `bson:"_id" json:"id"`
	Key string             `bson:"key" json:"key"`

	Title    string `bson:"title,omitempty" json:"title,omitempty"`
	Subtitle string `bson:"subtitle,omitempty" json:"subtitle,omitempty"`

	MetricCategories string `bson:"metric_categories" json:"metric_categories"`
	Entity           string `bson:"entity,omitempty" json:"entity,omitempty"`
	RoundValues      bool   `bson:"round_values" json:"round_values"`
	LiquidTemplate   string `bson:"liquid_template" json:"liquid_template"`
	EnableDebug      bool   `bson:"enable_debug" json:"enable_debug"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
