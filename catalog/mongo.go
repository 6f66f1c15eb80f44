package catalog

import (
	"context"

	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName holds the plant catalog documents.
const CollectionName = "plant_basics"

// MongoSave upserts a catalog entry keyed by its common name, so
// re-running the ingester refreshes entries instead of duplicating them.
func MongoSave(db *utils.DB) SaveFunc {
	return func(ctx context.Context, info *models.PlantInfo) error {
		collection, err := db.Collection(ctx, CollectionName)
		if err != nil {
			return err
		}
		update := bson.M{"$set": bson.M{
			"common_name":        info.CommonName,
			"scientific_name":    info.ScientificName,
			"plant_type":         info.PlantType,
			"family":             info.Family,
			"names_in_languages": info.NamesInLanguages,
			"default_image_url":  info.DefaultImageURL,
			"last_updated":       info.LastUpdated,
		}}
		_, err = collection.UpdateOne(ctx, bson.M{"common_name": info.CommonName}, update,
			options.Update().SetUpsert(true))
		return err
	}
}

// MongoExists reports whether a common name is already cataloged.
func MongoExists(db *utils.DB) ExistsFunc {
	return func(ctx context.Context, commonName string) (bool, error) {
		collection, err := db.Collection(ctx, CollectionName)
		if err != nil {
			return false, err
		}
		n, err := collection.CountDocuments(ctx, bson.M{"common_name": commonName})
		return n > 0, err
	}
}
