package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the backend store.
const (
	ProfilesCollection   = "profiles"
	VehiclesCollection   = "vehicles"
	TasksCollection      = "tasks"
	ArbRecordsCollection = "vehicle_arb_records"
	MessagesCollection   = "messages"
	DropdownCollection   = "dropdown_settings"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for ids that are not ObjectID hex strings.
	ErrInvalidID = errors.New("invalid id")

	errNilCollection = errors.New("mongo collection is nil")
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Database bundles the collections the inventory service uses.
type Database struct {
	Profiles   *MongoProfileCollection
	Vehicles   *MongoVehicleCollection
	Tasks      *MongoTaskCollection
	ArbRecords *MongoArbRecordCollection
	Messages   *MongoMessageCollection
	Dropdowns  *MongoDropdownCollection
}

// NewDatabase wires the typed collections of database.
func NewDatabase(database *mongo.Database) *Database {
	vehicles := database.Collection(VehiclesCollection)
	return &Database{
		Profiles:   &MongoProfileCollection{Collection: database.Collection(ProfilesCollection)},
		Vehicles:   &MongoVehicleCollection{Collection: vehicles},
		Tasks:      &MongoTaskCollection{Collection: database.Collection(TasksCollection)},
		ArbRecords: &MongoArbRecordCollection{Collection: database.Collection(ArbRecordsCollection), Vehicles: vehicles},
		Messages:   &MongoMessageCollection{Collection: database.Collection(MessagesCollection)},
		Dropdowns:  &MongoDropdownCollection{Collection: database.Collection(DropdownCollection)},
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func (d *Database) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{d.Profiles.Collection, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{d.Profiles.Collection, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{d.Vehicles.Collection, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}}},
		{d.Tasks.Collection, mongo.IndexModel{Keys: bson.D{{Key: "due_date", Value: 1}}}},
		{d.ArbRecords.Collection, mongo.IndexModel{Keys: bson.D{{Key: "vehicle_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{d.Messages.Collection, mongo.IndexModel{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}}}},
		{d.Dropdowns.Collection, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}, {Key: "sort_order", Value: 1}}}},
	}
	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("create index on %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
