// Package session carries the caller's identity for the lifetime of one
// request.
package session

import (
	"context"

	"github.com/ukydev/vehicle-inventory/internal/models"
)

// MarkerCookie names the cookie holding the signed impersonation marker.
const MarkerCookie = "admin_impersonation"

// Session is the request-scoped identity. User is the effective identity the
// caller acts as. Impersonator is set only while an admin acts as User and
// always holds that admin's real claims.
type Session struct {
	User         *models.Claims
	Impersonator *models.Claims
}

// Authenticated reports whether the request carries a valid session.
func (s Session) Authenticated() bool { return s.User != nil }

// UserID returns the effective user id, or "" for anonymous sessions.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.UserID
}

// IsImpersonating reports whether an admin is acting as another user.
func (s Session) IsImpersonating() bool { return s.Impersonator != nil }

// Real returns the identity that authorization about impersonation itself
// must resolve against.
func (s Session) Real() *models.Claims {
	if s.Impersonator != nil {
		return s.Impersonator
	}
	return s.User
}

// Can reports whether the effective user may perform action.
func (s Session) Can(action string) bool {
	return s.User != nil && s.User.Role.HasPermission(action)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx. Requests that never passed
// the authentication middleware yield an anonymous session.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(contextKey{}).(Session)
	return s
}
