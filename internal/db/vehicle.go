package db

import (
	"context"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

type vehicleUpdate struct {
	models.VehicleFields `bson:",inline"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

// InsertVehicle inserts a vehicle record and assigns its id and timestamps.
func (c *MongoVehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, vehicle)
	return err
}

// FindVehicleByID finds a vehicle by its ID.
func (c *MongoVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var vehicle models.Vehicle
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&vehicle); err != nil {
		return nil, notFound(err)
	}
	return &vehicle, nil
}

// FindVehicles lists vehicles, newest first, optionally narrowed to one status.
func (c *MongoVehicleCollection) FindVehicles(ctx context.Context, status string) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// UpdateVehicle replaces the writable fields of a vehicle and returns the
// stored record.
func (c *MongoVehicleCollection) UpdateVehicle(ctx context.Context, id string, fields models.VehicleFields) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": vehicleUpdate{VehicleFields: fields, UpdatedAt: time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var vehicle models.Vehicle
	if err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&vehicle); err != nil {
		return nil, notFound(err)
	}
	return &vehicle, nil
}
