package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DropdownSetting is a server-configured select option.
type DropdownSetting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category  string             `bson:"category" json:"category" yaml:"category"`
	Label     string             `bson:"label" json:"label" yaml:"label"`
	Value     string             `bson:"value" json:"value" yaml:"value"`
	IsActive  bool               `bson:"is_active" json:"is_active" yaml:"is_active"`
	SortOrder int                `bson:"sort_order" json:"sort_order" yaml:"sort_order"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at" yaml:"-"`
}

// DropdownOption is the client-facing shape of a DropdownSetting.
type DropdownOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ImpersonationStatus is returned by the impersonation check.
type ImpersonationStatus struct {
	IsImpersonating bool   `json:"isImpersonating"`
	AdminID         string `json:"adminId,omitempty"`
	AdminUsername   string `json:"adminUsername,omitempty"`
}
