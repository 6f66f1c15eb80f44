package checkup

import (
	"context"
	"errors"
	"fmt"

	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the checkup collection in MongoDB.
const CollectionName = "plant_checkups"

// ErrNotFound is returned when no checkup exists for the given id.
var ErrNotFound = errors.New("checkup not found")

// mutableFields are the only fields Update lets through. Everything else on
// the record is immutable after creation.
var mutableFields = map[string]bool{
	"status":             true,
	"progress":           true,
	"checkup_result":     true,
	"action_items":       true,
	"growth_analysis":    true,
	"error":              true,
	"archived_image_key": true,
}

// Store persists checkup records. The orchestrator is the only writer for a
// given record; the poll endpoint only reads.
type Store interface {
	Create(ctx context.Context, c *models.Checkup) (string, error)
	Get(ctx context.Context, id string) (*models.Checkup, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	ListByPlant(ctx context.Context, plantID string) ([]models.Checkup, error)
	Delete(ctx context.Context, id string) error
}

// MongoStore implements Store over the shared health-checked Mongo handle.
type MongoStore struct {
	DB *utils.DB
}

func (s *MongoStore) collection(ctx context.Context) (*mongo.Collection, error) {
	return s.DB.Collection(ctx, CollectionName)
}

// Create inserts the record and returns its hex id.
func (s *MongoStore) Create(ctx context.Context, c *models.Checkup) (string, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	col, err := s.collection(ctx)
	if err != nil {
		return "", err
	}
	if _, err := col.InsertOne(ctx, c); err != nil {
		return "", fmt.Errorf("failed to insert checkup: %w", err)
	}
	return c.ID.Hex(), nil
}

// Get fetches one record by hex id.
func (s *MongoStore) Get(ctx context.Context, id string) (*models.Checkup, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	col, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	var c models.Checkup
	if err := col.FindOne(ctx, bson.M{"_id": objID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch checkup: %w", err)
	}
	return &c, nil
}

// Update performs a shallow $set merge of the given fields, restricted to
// the mutable set. Each call is a single atomic document merge, so readers
// never observe a torn write.
func (s *MongoStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	set := bson.M{}
	for k, v := range fields {
		if mutableFields[k] {
			set[k] = v
		}
	}
	if len(set) == 0 {
		return nil
	}

	col, err := s.collection(ctx)
	if err != nil {
		return err
	}
	res, err := col.UpdateByID(ctx, objID, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update checkup: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPlant returns all checkups for a plant, newest first.
func (s *MongoStore) ListByPlant(ctx context.Context, plantID string) ([]models.Checkup, error) {
	col, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := col.Find(ctx, bson.M{"plant_id": plantID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkups: %w", err)
	}
	defer cursor.Close(ctx)

	var checkups []models.Checkup
	if err := cursor.All(ctx, &checkups); err != nil {
		return nil, fmt.Errorf("failed to decode checkups: %w", err)
	}
	if checkups == nil {
		checkups = []models.Checkup{}
	}
	return checkups, nil
}

// Delete removes one record by hex id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	col, err := s.collection(ctx)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete checkup: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
