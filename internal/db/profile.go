package db

import (
	"context"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoProfileCollection implements ProfileCollection for MongoDB
type MongoProfileCollection struct {
	Collection *mongo.Collection
}

// InsertProfile inserts a new profile and assigns its id
func (c *MongoProfileCollection) InsertProfile(ctx context.Context, profile *models.Profile) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	profile.ID = primitive.NewObjectID()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.IsActive = true

	_, err := c.Collection.InsertOne(ctx, profile)
	return err
}

// FindProfileByID finds a profile by its id
func (c *MongoProfileCollection) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return c.findOne(ctx, bson.M{"_id": oid})
}

// FindProfileByUsername finds a profile by its username
func (c *MongoProfileCollection) FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return c.findOne(ctx, bson.M{"username": username})
}

// FindProfileByEmail finds a profile by its email
func (c *MongoProfileCollection) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

func (c *MongoProfileCollection) findOne(ctx context.Context, filter bson.M) (*models.Profile, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	var profile models.Profile
	if err := c.Collection.FindOne(ctx, filter).Decode(&profile); err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// UpdateLastLogin updates the last login time for a profile
func (c *MongoProfileCollection) UpdateLastLogin(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = c.Collection.UpdateOne(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_login": now, "updated_at": now}},
	)
	return err
}
