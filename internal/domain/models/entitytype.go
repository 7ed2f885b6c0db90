// internal/domain/models/entitytype.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EntityType describes a kind of entity metrics can be partitioned by.
// Name is the short type name ("Campus", "Group") used for page context
// parameters such as ?CampusId=7.
type EntityType struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	GUID         string             `bson:"guid" json:"guid"`
	Name         string             `bson:"name" json:"name"`
	FriendlyName string             `bson:"friendly_name,omitempty" json:"friendly_name,omitempty"`
}
