// Package inventory is the data access boundary of the dashboards. Every
// operation authenticates the caller's session, checks the role permission
// for the action and performs one logical read or write against the store.
//
// Backend failures are logged with detail and surfaced as ErrInternal so the
// caller never sees driver errors.
package inventory

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/auth"
	"github.com/ukydev/vehicle-inventory/internal/db"
	"github.com/ukydev/vehicle-inventory/internal/session"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Store groups the collections the service reads and writes.
type Store struct {
	Profiles   db.ProfileCollection
	Vehicles   db.VehicleCollection
	Tasks      db.TaskCollection
	ArbRecords db.ArbRecordCollection
	Messages   db.MessageCollection
	Dropdowns  db.DropdownSettingCollection
}

// StoreFromDatabase adapts the Mongo collections to a Store.
func StoreFromDatabase(d *db.Database) Store {
	return Store{
		Profiles:   d.Profiles,
		Vehicles:   d.Vehicles,
		Tasks:      d.Tasks,
		ArbRecords: d.ArbRecords,
		Messages:   d.Messages,
		Dropdowns:  d.Dropdowns,
	}
}

// Service implements the boundary operations.
type Service struct {
	store     Store
	auth      *auth.Service
	validator *validation.Validator
	log       logrus.FieldLogger
}

// NewService creates a Service.
func NewService(store Store, authService *auth.Service, v *validation.Validator, log logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		auth:      authService,
		validator: v,
		log:       log,
	}
}

// authorize checks that sess is authenticated and allowed to perform action.
func authorize(sess session.Session, action string) error {
	if !sess.Authenticated() {
		return ErrUnauthorized
	}
	if !sess.Can(action) {
		return ErrForbidden
	}
	return nil
}

// backendError maps a store error to a boundary error, logging anything
// that is not an expected lookup miss.
func (s *Service) backendError(op string, err error, fields logrus.Fields) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, db.ErrInvalidID):
		return ErrInvalidInput
	}
	s.log.WithError(err).WithFields(fields).WithField("op", op).Error("Backend operation failed")
	return ErrInternal
}

func required(field string) validation.Violations {
	return validation.Violations{{Field: field, Message: "is required"}}
}
