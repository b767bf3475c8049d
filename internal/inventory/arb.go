package inventory

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArbHistory returns the arbitration records of a vehicle, newest first, each
// with its creator's display identity. A vehicle without records yields an
// empty slice.
func (s *Service) ArbHistory(ctx context.Context, sess session.Session, vehicleID string) ([]models.ArbHistoryEntry, error) {
	if err := authorize(sess, models.PermViewArb); err != nil {
		return nil, err
	}
	if vehicleID == "" {
		return nil, ErrInvalidInput
	}

	entries, err := s.store.ArbRecords.FindArbHistory(ctx, vehicleID)
	if err != nil {
		return nil, s.backendError("arb_history", err, logrus.Fields{"vehicle_id": vehicleID})
	}
	if entries == nil {
		entries = []models.ArbHistoryEntry{}
	}
	return entries, nil
}

// CreateArbRecord appends an arbitration record to a vehicle's history on
// behalf of the effective user.
func (s *Service) CreateArbRecord(ctx context.Context, sess session.Session, vehicleID, notes string) (*models.ArbRecord, error) {
	if err := authorize(sess, models.PermCreateArb); err != nil {
		return nil, err
	}
	vid, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	creator, err := primitive.ObjectIDFromHex(sess.UserID())
	if err != nil {
		return nil, ErrUnauthorized
	}

	record := &models.ArbRecord{
		VehicleID: vid,
		CreatedBy: creator,
		Notes:     strings.TrimSpace(notes),
	}
	if err := s.store.ArbRecords.InsertArbRecord(ctx, record); err != nil {
		return nil, s.backendError("create_arb_record", err, logrus.Fields{"vehicle_id": vehicleID})
	}
	return record, nil
}
