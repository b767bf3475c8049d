// Package dbtest provides testify mocks of the db collection interfaces.
package dbtest

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/models"
)

var (
	_ db.ProfileCollection         = (*ProfileCollection)(nil)
	_ db.VehicleCollection         = (*VehicleCollection)(nil)
	_ db.TaskCollection            = (*TaskCollection)(nil)
	_ db.ArbRecordCollection       = (*ArbRecordCollection)(nil)
	_ db.MessageCollection         = (*MessageCollection)(nil)
	_ db.DropdownSettingCollection = (*DropdownCollection)(nil)
)

// ProfileCollection is a mock implementation of db.ProfileCollection
type ProfileCollection struct {
	mock.Mock
}

func (m *ProfileCollection) InsertProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *ProfileCollection) FindProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *ProfileCollection) FindProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *ProfileCollection) FindProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *ProfileCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// VehicleCollection is a mock implementation of db.VehicleCollection
type VehicleCollection struct {
	mock.Mock
}

func (m *VehicleCollection) InsertVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *VehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *VehicleCollection) FindVehicles(ctx context.Context, status string) ([]models.Vehicle, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *VehicleCollection) UpdateVehicle(ctx context.Context, id string, fields models.VehicleFields) (*models.Vehicle, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

// TaskCollection is a mock implementation of db.TaskCollection
type TaskCollection struct {
	mock.Mock
}

func (m *TaskCollection) InsertTask(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskCollection) UpdateTask(ctx context.Context, id string, fields models.TaskFields) (*models.Task, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *TaskCollection) FindTasks(ctx context.Context, filters models.TaskFilters) ([]models.Task, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

// ArbRecordCollection is a mock implementation of db.ArbRecordCollection
type ArbRecordCollection struct {
	mock.Mock
}

func (m *ArbRecordCollection) InsertArbRecord(ctx context.Context, record *models.ArbRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *ArbRecordCollection) FindArbHistory(ctx context.Context, vehicleID string) ([]models.ArbHistoryEntry, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArbHistoryEntry), args.Error(1)
}

// MessageCollection is a mock implementation of db.MessageCollection
type MessageCollection struct {
	mock.Mock
}

func (m *MessageCollection) InsertMessage(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageCollection) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	args := m.Called(ctx, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageCollection) MarkRead(ctx context.Context, id, recipientID string) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

// DropdownCollection is a mock implementation of db.DropdownSettingCollection
type DropdownCollection struct {
	mock.Mock
}

func (m *DropdownCollection) FindOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownSetting, error) {
	args := m.Called(ctx, category, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DropdownSetting), args.Error(1)
}

func (m *DropdownCollection) InsertSetting(ctx context.Context, setting *models.DropdownSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}
