// internal/app/store/widgets/widgetstore.go
package widgetstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no widget has the requested key.
var ErrNotFound = errors.New("widget not found")

// Store provides access to the widgets collection.
// Widgets are addressed by their unique key.
type Store struct {
	c *mongo.Collection
}

// New creates a new widget store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("widgets")}
}

// GetByKey returns the widget stored under key.
func (s *Store) GetByKey(ctx context.Context, key string) (models.Widget, error) {
	var w models.Widget
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Widget{}, ErrNotFound
	}
	if err != nil {
		return models.Widget{}, fmt.Errorf("find widget %q: %w", key, err)
	}
	return w, nil
}

// Save writes the widget's settings under its key, creating it when absent.
func (s *Store) Save(ctx context.Context, w models.Widget) error {
	now := time.Now().UTC()
	filter := bson.M{"key": w.Key}
	update := bson.M{
		"$set": bson.M{
			"title":             w.Title,
			"subtitle":          w.Subtitle,
			"metric_categories": w.MetricCategories,
			"entity":            w.Entity,
			"round_values":      w.RoundValues,
			"liquid_template":   w.LiquidTemplate,
			"enable_debug":      w.EnableDebug,
			"updated_at":        now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
		},
	}

	if _, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("save widget %q: %w", w.Key, err)
	}
	return nil
}

// EnsureDefault inserts w when no widget with its key exists yet. Existing
// widgets are left untouched. Reports whether a document was created.
func (s *Store) EnsureDefault(ctx context.Context, w models.Widget) (bool, error) {
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"key": w.Key},
		bson.M{"$setOnInsert": w},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("ensure widget %q: %w", w.Key, err)
	}
	return res.UpsertedCount > 0, nil
}
