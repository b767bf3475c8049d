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

// MongoMessageCollection implements MessageCollection for MongoDB.
type MongoMessageCollection struct {
	Collection *mongo.Collection
}

// InsertMessage stores an unread message and assigns its id.
func (c *MongoMessageCollection) InsertMessage(ctx context.Context, message *models.Message) error {
	if c.Collection == nil {
		return errNilCollection
	}
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now().UTC()
	message.Read = false

	_, err := c.Collection.InsertOne(ctx, message)
	return err
}

// CountUnread counts unread messages addressed to recipientID.
func (c *MongoMessageCollection) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	return c.Collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "read": false})
}

// MarkRead marks one of recipientID's messages as read.
func (c *MongoMessageCollection) MarkRead(ctx context.Context, id, recipientID string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": oid, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MessageChange is one insert or update observed on the messages collection.
type MessageChange struct {
	Operation string
	Message   models.Message
}

// Watch streams message inserts and updates to handle until ctx is done. It
// requires a replica set. A nil error is returned on cancellation.
func (c *MongoMessageCollection) Watch(ctx context.Context, handle func(context.Context, MessageChange)) error {
	if c.Collection == nil {
		return errNilCollection
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}}}}},
	}
	stream, err := c.Collection.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var ev struct {
			OperationType string         `bson:"operationType"`
			FullDocument  models.Message `bson:"fullDocument"`
		}
		if err := stream.Decode(&ev); err != nil {
			return err
		}
		handle(ctx, MessageChange{Operation: ev.OperationType, Message: ev.FullDocument})
	}
	if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return err
	}
	return nil
}
