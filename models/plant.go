package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plant represents a tracked plant
type Plant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	Species       string             `bson:"species,omitempty" json:"species,omitempty"`
	ImageURL      string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	LastCheckupAt time.Time          `bson:"last_checkup_at,omitempty" json:"lastCheckupAt,omitempty"`
}

// PlantInfo is one catalog entry in the plant_basics collection, built from
// the Wikidata and iNaturalist APIs by the catalog ingestion command and
// read by the (out-of-scope) plant search UI.
type PlantInfo struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommonName       string             `bson:"common_name" json:"commonName"`
	ScientificName   string             `bson:"scientific_name" json:"scientificName"`
	PlantType        string             `bson:"plant_type" json:"plantType"`
	Family           string             `bson:"family,omitempty" json:"family,omitempty"`
	NamesInLanguages map[string]string  `bson:"names_in_languages" json:"namesInLanguages"`
	DefaultImageURL  string             `bson:"default_image_url" json:"defaultImageUrl"`
	LastUpdated      time.Time          `bson:"last_updated" json:"lastUpdated"`
}
