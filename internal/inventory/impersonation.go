package inventory

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/session"
)

// fallbackAdminName is shown when the admin profile has neither username nor
// email.
const fallbackAdminName = "Admin"

// Switch is the outcome of starting or stopping impersonation. Marker is
// empty when impersonation has ended.
type Switch struct {
	Token  string
	Marker string
	User   models.Profile
}

// CheckImpersonation reports whether marker records an active impersonation
// and who the real admin is. It never fails: any problem reads as "not
// impersonating".
func (s *Service) CheckImpersonation(ctx context.Context, marker string) models.ImpersonationStatus {
	if marker == "" {
		return models.ImpersonationStatus{}
	}
	m, err := s.auth.ValidateImpersonationToken(marker)
	if err != nil {
		s.log.WithError(err).Debug("Ignoring invalid impersonation marker")
		return models.ImpersonationStatus{}
	}
	admin := m.Admin

	profile, err := s.store.Profiles.FindProfileByID(ctx, admin.UserID)
	if err != nil {
		s.log.WithError(err).WithField("admin_id", admin.UserID).Warn("Impersonation check could not load admin profile")
		return models.ImpersonationStatus{}
	}

	name := profile.DisplayName()
	if name == "" {
		name = fallbackAdminName
	}
	return models.ImpersonationStatus{
		IsImpersonating: true,
		AdminID:         admin.UserID,
		AdminUsername:   name,
	}
}

// StartImpersonation lets an admin act as targetID. The permission is
// checked against the real admin, so an admin already impersonating someone
// may switch directly to another user.
func (s *Service) StartImpersonation(ctx context.Context, sess session.Session, targetID string) (*Switch, error) {
	admin := sess.Real()
	if admin == nil {
		return nil, ErrUnauthorized
	}
	if !admin.Role.HasPermission(models.PermImpersonate) {
		return nil, ErrForbidden
	}
	if targetID == "" || targetID == admin.UserID {
		return nil, ErrInvalidInput
	}

	target, err := s.store.Profiles.FindProfileByID(ctx, targetID)
	if err != nil {
		return nil, s.backendError("start_impersonation", err, logrus.Fields{"target_id": targetID})
	}
	if !target.IsActive {
		return nil, ErrForbidden
	}

	token, err := s.auth.GenerateToken(target)
	if err != nil {
		return nil, s.backendError("start_impersonation", err, logrus.Fields{"target_id": targetID})
	}
	marker, err := s.auth.GenerateImpersonationToken(admin, targetID)
	if err != nil {
		return nil, s.backendError("start_impersonation", err, logrus.Fields{"target_id": targetID})
	}

	s.log.WithFields(logrus.Fields{"admin_id": admin.UserID, "target_id": targetID}).Info("Impersonation started")
	return &Switch{Token: token, Marker: marker, User: *target}, nil
}

// StopImpersonation ends the impersonation recorded by marker and issues a
// fresh session for the admin. The marker must belong to sess: it names
// sess's user as its target and sess carries the same admin as impersonator.
func (s *Service) StopImpersonation(ctx context.Context, sess session.Session, marker string) (*Switch, error) {
	if !sess.Authenticated() {
		return nil, ErrUnauthorized
	}
	if marker == "" {
		return nil, ErrInvalidInput
	}
	m, err := s.auth.ValidateImpersonationToken(marker)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !sess.IsImpersonating() || !m.Matches(sess.User) || sess.Impersonator.UserID != m.Admin.UserID {
		s.log.WithFields(logrus.Fields{"user_id": sess.UserID(), "admin_id": m.Admin.UserID}).Warn("Rejected impersonation marker issued for another session")
		return nil, ErrForbidden
	}

	profile, err := s.store.Profiles.FindProfileByID(ctx, m.Admin.UserID)
	if err != nil {
		return nil, s.backendError("stop_impersonation", err, logrus.Fields{"admin_id": m.Admin.UserID})
	}
	if !profile.IsActive {
		return nil, ErrForbidden
	}
	token, err := s.auth.GenerateToken(profile)
	if err != nil {
		return nil, s.backendError("stop_impersonation", err, logrus.Fields{"admin_id": m.Admin.UserID})
	}

	s.log.WithFields(logrus.Fields{"admin_id": m.Admin.UserID, "target_id": m.TargetID}).Info("Impersonation stopped")
	return &Switch{Token: token, User: *profile}, nil
}
