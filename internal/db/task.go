package db

import (
	"context"
	"regexp"
	"time"

	"github.com/ukydev/vehicle-inventory/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTaskCollection implements TaskCollection for MongoDB.
type MongoTaskCollection struct {
	Collection *mongo.Collection
}

type taskUpdate struct {
	models.TaskFields `bson:",inline"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// InsertTask inserts a task and assigns its id and timestamps.
func (c *MongoTaskCollection) InsertTask(ctx context.Context, task *models.Task) error {
	if c.Collection == nil {
		return errNilCollection
	}
	now := time.Now().UTC()
	task.ID = primitive.NewObjectID()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, task)
	return err
}

// UpdateTask replaces the writable fields of a task and returns the stored
// record.
func (c *MongoTaskCollection) UpdateTask(ctx context.Context, id string, fields models.TaskFields) (*models.Task, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": taskUpdate{TaskFields: fields, UpdatedAt: time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var task models.Task
	if err := c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&task); err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

// FindTasks lists tasks matching filters ordered by due date.
func (c *MongoTaskCollection) FindTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := c.Collection.Find(ctx, TaskQuery(filters), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskQuery translates filters into a query document. Empty fields add no
// condition. Search matches task_name or notes case-insensitively and
// literally; the date bounds are inclusive and compare due_date as text, so
// they expect YYYY-MM-DD.
func TaskQuery(f models.TaskFilters) bson.M {
	q := bson.M{}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		q["$or"] = bson.A{bson.M{"task_name": re}, bson.M{"notes": re}}
	}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.AssignedTo != "" {
		q["assigned_to"] = f.AssignedTo
	}
	due := bson.M{}
	if f.DateFrom != "" {
		due["$gte"] = f.DateFrom
	}
	if f.DateTo != "" {
		due["$lte"] = f.DateTo
	}
	if len(due) > 0 {
		q["due_date"] = due
	}
	return q
}
