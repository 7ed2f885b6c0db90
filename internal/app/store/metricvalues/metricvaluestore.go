// internal/app/store/metricvalues/metricvaluestore.go
package metricvaluestore

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides read access to the metric_values collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new metric value store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("metric_values")}
}

// QueryValues returns the values of one metric with the given type whose
// value_datetime is strictly after the cutoff, newest first (ties by _id
// descending).
//
// When entityID is non-nil only values partitioned to that entity, or
// carrying no entity at all, are returned.
func (s *Store) QueryValues(ctx context.Context, metricID primitive.ObjectID, valueType models.MetricValueType, after time.Time, entityID *int) ([]models.MetricValue, error) {
	filter := bson.M{
		"metric_id":      metricID,
		"value_type":     valueType,
		"value_datetime": bson.M{"$gt": after},
	}
	if entityID != nil {
		filter["$or"] = bson.A{
			bson.M{"partitions.entity_id": *entityID},
			bson.M{"partitions.entity_id": bson.M{"$exists": false}},
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "value_datetime", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find metric values: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.MetricValue
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode metric values: %w", err)
	}
	return out, nil
}
