// internal/app/store/metrics/metricsstore.go
package metricsstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides read access to the metrics collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new metrics store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("metrics")}
}

// GetByGUIDs returns the metrics with the given GUIDs, in the order the
// GUIDs were given. Unknown GUIDs are skipped and repeated GUIDs yield one
// metric.
func (s *Store) GetByGUIDs(ctx context.Context, guids []uuid.UUID) ([]models.Metric, error) {
	if len(guids) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(guids))
	forms := make([]string, 0, 2*len(guids))
	for _, g := range guids {
		k := g.String()
		keys = append(keys, k)
		forms = append(forms, k, strings.ToUpper(k))
	}

	// GUIDs imported from other systems are often upper case.
	cur, err := s.c.Find(ctx, bson.M{"guid": bson.M{"$in": forms}})
	if err != nil {
		return nil, fmt.Errorf("find metrics: %w", err)
	}
	defer cur.Close(ctx)

	var found []models.Metric
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}

	byGUID := make(map[string]models.Metric, len(found))
	for _, m := range found {
		byGUID[strings.ToLower(m.GUID)] = m
	}
	out := make([]models.Metric, 0, len(found))
	for _, k := range keys {
		if m, ok := byGUID[k]; ok {
			out = append(out, m)
			delete(byGUID, k)
		}
	}
	return out, nil
}
