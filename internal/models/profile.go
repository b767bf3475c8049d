package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents a dashboard role
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleSeller      Role = "seller"
	RoleTransporter Role = "transporter"
)

// Actions checked by HasPermission
const (
	PermViewVehicles   = "view_vehicles"
	PermCreateVehicle  = "create_vehicle"
	PermUpdateVehicle  = "update_vehicle"
	PermViewArb        = "view_arb"
	PermCreateArb      = "create_arb"
	PermViewTasks      = "view_tasks"
	PermManageTasks    = "manage_tasks"
	PermSendMessage    = "send_message"
	PermManageSettings = "manage_settings"
	PermImpersonate    = "impersonate"
	PermReadAnyInbox   = "read_any_inbox"
)

// Profile represents a user of the inventory dashboards
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	FullName     string             `bson:"full_name" json:"full_name"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// DisplayName prefers the username, then the email.
func (p *Profile) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}
	return p.Email
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// LoginResponse is returned by login, register and impersonation switches
type LoginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleTransporter:
		return true
	default:
		return false
	}
}

// HasPermission checks if the role may perform action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleSeller:
		switch action {
		case PermViewVehicles, PermCreateVehicle, PermUpdateVehicle,
			PermViewArb, PermCreateArb, PermViewTasks, PermManageTasks, PermSendMessage:
			return true
		}
		return false
	case RoleTransporter:
		switch action {
		case PermViewVehicles, PermViewArb, PermViewTasks, PermManageTasks, PermSendMessage:
			return true
		}
		return false
	default:
		return false
	}
}

// HasPermission checks if a profile has permission for a specific action
func (p *Profile) HasPermission(action string) bool {
	return p.Role.HasPermission(action)
}
