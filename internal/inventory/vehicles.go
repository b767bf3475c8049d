package inventory

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

// CreateVehicle validates fields and stores a new vehicle, returning the
// persisted record.
func (s *Service) CreateVehicle(ctx context.Context, sess session.Session, fields map[string]any) (*models.Vehicle, error) {
	if err := authorize(sess, models.PermCreateVehicle); err != nil {
		return nil, err
	}
	rec, violations := s.validator.Vehicle(fields)
	if len(violations) > 0 {
		return nil, violations
	}

	vehicle := &models.Vehicle{VehicleFields: rec, CreatedBy: sess.UserID()}
	if err := s.store.Vehicles.InsertVehicle(ctx, vehicle); err != nil {
		return nil, s.backendError("create_vehicle", err, logrus.Fields{"vin": rec.VIN})
	}
	return vehicle, nil
}

// UpdateVehicle validates fields and replaces the writable attributes of
// vehicle id.
func (s *Service) UpdateVehicle(ctx context.Context, sess session.Session, id string, fields map[string]any) (*models.Vehicle, error) {
	if err := authorize(sess, models.PermUpdateVehicle); err != nil {
		return nil, err
	}
	rec, violations := s.validator.Vehicle(fields)
	if len(violations) > 0 {
		return nil, violations
	}

	vehicle, err := s.store.Vehicles.UpdateVehicle(ctx, id, rec)
	if err != nil {
		return nil, s.backendError("update_vehicle", err, logrus.Fields{"vehicle_id": id})
	}
	return vehicle, nil
}

// GetVehicle loads one vehicle.
func (s *Service) GetVehicle(ctx context.Context, sess session.Session, id string) (*models.Vehicle, error) {
	if err := authorize(sess, models.PermViewVehicles); err != nil {
		return nil, err
	}
	vehicle, err := s.store.Vehicles.FindVehicleByID(ctx, id)
	if err != nil {
		return nil, s.backendError("get_vehicle", err, logrus.Fields{"vehicle_id": id})
	}
	return vehicle, nil
}

// ListVehicles lists vehicles, optionally restricted to one status.
func (s *Service) ListVehicles(ctx context.Context, sess session.Session, status string) ([]models.Vehicle, error) {
	if err := authorize(sess, models.PermViewVehicles); err != nil {
		return nil, err
	}
	if status != "" && !models.IsValidVehicleStatus(models.VehicleStatus(status)) {
		return nil, validation.Violations{{Field: "status", Message: "is not a known vehicle status"}}
	}

	vehicles, err := s.store.Vehicles.FindVehicles(ctx, status)
	if err != nil {
		return nil, s.backendError("list_vehicles", err, logrus.Fields{"status": status})
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	return vehicles, nil
}
