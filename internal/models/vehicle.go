package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleStatus is the sales lifecycle state of a vehicle.
type VehicleStatus string

const (
	VehiclePending    VehicleStatus = "pending"
	VehicleSold       VehicleStatus = "sold"
	VehicleWithdrew   VehicleStatus = "withdrew"
	VehicleComplete   VehicleStatus = "complete"
	VehicleArb        VehicleStatus = "arb"
	VehicleInProgress VehicleStatus = "in_progress"
)

// TitleStatus tracks the ownership title document.
type TitleStatus string

const (
	TitleAbsent               TitleStatus = "absent"
	TitlePresent              TitleStatus = "present"
	TitleInTransit            TitleStatus = "in_transit"
	TitleReceived             TitleStatus = "received"
	TitleAvailableNotReceived TitleStatus = "available_not_received"
	TitleReleased             TitleStatus = "released"
	TitleValidated            TitleStatus = "validated"
	TitleSentNotValidated     TitleStatus = "sent_not_validated"
)

// ArbStatus tracks arbitration on a vehicle.
type ArbStatus string

const (
	ArbAbsent    ArbStatus = "absent"
	ArbPresent   ArbStatus = "present"
	ArbInTransit ArbStatus = "in_transit"
	ArbFailed    ArbStatus = "failed"
)

// VehicleFields holds the validated, writable attributes of a vehicle.
type VehicleFields struct {
	Make           string        `bson:"make" json:"make"`
	Model          string        `bson:"model" json:"model"`
	Year           int           `bson:"year" json:"year"`
	VIN            string        `bson:"vin" json:"vin"`
	PurchaseDate   string        `bson:"purchase_date" json:"purchase_date"`
	Status         VehicleStatus `bson:"status" json:"status"`
	PickupLocation string        `bson:"pickup_location" json:"pickup_location"`
	Odometer       *float64      `bson:"odometer" json:"odometer,omitempty"`
	BoughtPrice    *float64      `bson:"bought_price" json:"bought_price,omitempty"`
	TitleStatus    TitleStatus   `bson:"title_status" json:"title_status"`
	ArbStatus      ArbStatus     `bson:"arb_status" json:"arb_status"`
}

// Vehicle represents one inventory unit.
type Vehicle struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleFields `bson:",inline"`
	CreatedBy     string    `bson:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// IsValidVehicleStatus checks if a status is one of the lifecycle states
func IsValidVehicleStatus(s VehicleStatus) bool {
	switch s {
	case VehiclePending, VehicleSold, VehicleWithdrew, VehicleComplete, VehicleArb, VehicleInProgress:
		return true
	default:
		return false
	}
}
