package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus is the state of a to-do item.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
)

// TaskFields holds the validated, writable attributes of a task.
type TaskFields struct {
	VehicleID  string     `bson:"vehicle_id,omitempty" json:"vehicle_id,omitempty"`
	TaskName   string     `bson:"task_name" json:"task_name"`
	DueDate    string     `bson:"due_date" json:"due_date"`
	Notes      string     `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedTo string     `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Category   string     `bson:"category,omitempty" json:"category,omitempty"`
	Status     TaskStatus `bson:"status" json:"status"`
}

// Task is a to-do item, optionally tied to a vehicle.
type Task struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TaskFields `bson:",inline"`
	CreatedBy  string    `bson:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// TaskFilters narrows a task listing. An empty field applies no filter.
type TaskFilters struct {
	Search     string `json:"search,omitempty"`
	Category   string `json:"category,omitempty"`
	Status     string `json:"status,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	DateFrom   string `json:"date_from,omitempty"`
	DateTo     string `json:"date_to,omitempty"`
}
