package db

import (
	"context"

	"github.com/ukydev/vehicle-inventory/internal/models"
)

// ProfileCollection defines the interface for profile data operations.
type ProfileCollection interface {
	InsertProfile(ctx context.Context, profile *models.Profile) error
	FindProfileByID(ctx context.Context, id string) (*models.Profile, error)
	FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// VehicleCollection defines the interface for vehicle data operations.
// Vehicles are never deleted; withdrawal is a status.
type VehicleCollection interface {
	InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error)
	FindVehicles(ctx context.Context, status string) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, fields models.VehicleFields) (*models.Vehicle, error)
}

// TaskCollection defines the interface for task data operations.
type TaskCollection interface {
	InsertTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id string, fields models.TaskFields) (*models.Task, error)
	FindTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error)
}

// ArbRecordCollection defines the append-only ARB audit trail.
type ArbRecordCollection interface {
	InsertArbRecord(ctx context.Context, record *models.ArbRecord) error
	FindArbHistory(ctx context.Context, vehicleID string) ([]models.ArbHistoryEntry, error)
}

// MessageCollection defines the interface for message data operations.
type MessageCollection interface {
	InsertMessage(ctx context.Context, message *models.Message) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

// DropdownSettingCollection defines the interface for dropdown settings.
type DropdownSettingCollection interface {
	FindOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownSetting, error)
	InsertSetting(ctx context.Context, setting *models.DropdownSetting) error
}
