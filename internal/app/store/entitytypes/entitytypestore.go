// internal/app/store/entitytypes/entitytypestore.go
package entitytypestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/stratametrics/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no entity type has the requested GUID.
var ErrNotFound = errors.New("entity type not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("entity_types")}
}

// GetByGUID returns the entity type with the given GUID, stored in either
// lower or upper case.
func (s *Store) GetByGUID(ctx context.Context, guid uuid.UUID) (models.EntityType, error) {
	var et models.EntityType
	k := guid.String()
	err := s.c.FindOne(ctx, bson.M{"guid": bson.M{"$in": []string{k, strings.ToUpper(k)}}}).Decode(&et)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.EntityType{}, ErrNotFound
	}
	if err != nil {
		return models.EntityType{}, fmt.Errorf("find entity type %s: %w", guid, err)
	}
	return et, nil
}
