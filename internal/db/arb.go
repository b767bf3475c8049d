package db

import (
	"context"
	"errors"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArbRecordCollection implements ArbRecordCollection for MongoDB. It
// exposes no update or delete.
type MongoArbRecordCollection struct {
	Collection *mongo.Collection
	// Vehicles is consulted so records only reference existing vehicles.
	Vehicles *mongo.Collection
}

// InsertArbRecord appends a record for an existing vehicle. It returns
// ErrNotFound when the vehicle does not exist.
//
// The existence check and the insert are two round trips without a
// transaction. That is safe only because vehicles are never deleted: a
// vehicle seen by the check still exists at insert time.
func (c *MongoArbRecordCollection) InsertArbRecord(ctx context.Context, record *models.ArbRecord) error {
	if c.Collection == nil || c.Vehicles == nil {
		return errNilCollection
	}
	err := c.Vehicles.FindOne(ctx, bson.M{"_id": record.VehicleID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now().UTC()
	_, err = c.Collection.InsertOne(ctx, record)
	return err
}

// FindArbHistory returns the records of one vehicle, newest first, each
// joined with its creator's display identity in a single aggregation.
func (c *MongoArbRecordCollection) FindArbHistory(ctx context.Context, vehicleID string) ([]models.ArbHistoryEntry, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(vehicleID)
	if err != nil {
		return nil, err
	}

	cursor, err := c.Collection.Aggregate(ctx, ArbHistoryPipeline(oid))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.ArbHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ArbHistoryPipeline builds the history aggregation for one vehicle.
func ArbHistoryPipeline(vehicleID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "vehicle_id", Value: vehicleID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ProfilesCollection},
			{Key: "localField", Value: "created_by"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "creator"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$creator"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "vehicle_id", Value: 1},
			{Key: "created_by", Value: 1},
			{Key: "notes", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "creator._id", Value: 1},
			{Key: "creator.username", Value: 1},
			{Key: "creator.email", Value: 1},
		}}},
	}
}
