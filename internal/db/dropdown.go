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

// MongoDropdownCollection implements DropdownSettingCollection for MongoDB.
type MongoDropdownCollection struct {
	Collection *mongo.Collection
}

// FindOptions lists the settings of a category by sort order.
func (c *MongoDropdownCollection) FindOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownSetting, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	filter := bson.M{"category": category}
	if activeOnly {
		filter["is_active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "label", Value: 1}})

	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	settings := []models.DropdownSetting{}
	if err := cursor.All(ctx, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// InsertSetting stores a dropdown setting and assigns its id.
func (c *MongoDropdownCollection) InsertSetting(ctx context.Context, setting *models.DropdownSetting) error {
	if c.Collection == nil {
		return errNilCollection
	}
	setting.ID = primitive.NewObjectID()
	setting.CreatedAt = time.Now().UTC()

	_, err := c.Collection.InsertOne(ctx, setting)
	return err
}
