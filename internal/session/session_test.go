package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/vehicle-inventory/internal/models"
)

func TestSession_Anonymous(t *testing.T) {
	s := FromContext(context.Background())

	assert.False(t, s.Authenticated())
	assert.False(t, s.IsImpersonating())
	assert.Empty(t, s.UserID())
	assert.Nil(t, s.Real())
	assert.False(t, s.Can(models.PermViewVehicles))
}

func TestSession_Impersonation(t *testing.T) {
	admin := &models.Claims{UserID: "admin-1", Role: models.RoleAdmin}
	seller := &models.Claims{UserID: "seller-1", Role: models.RoleSeller}

	s := Session{User: seller, Impersonator: admin}
	ctx := NewContext(context.Background(), s)
	got := FromContext(ctx)

	assert.True(t, got.Authenticated())
	assert.True(t, got.IsImpersonating())
	assert.Equal(t, "seller-1", got.UserID())
	assert.Equal(t, admin, got.Real())
	// Effective permissions are the impersonated user's.
	assert.False(t, got.Can(models.PermImpersonate))
	assert.True(t, got.Real().Role.HasPermission(models.PermImpersonate))
}
