package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ArbRecord is an append-only arbitration audit entry for one vehicle.
type ArbRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Creator is the display identity joined onto ARB history.
type Creator struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
}

// ArbHistoryEntry is an ArbRecord joined with its creator.
type ArbHistoryEntry struct {
	ArbRecord `bson:",inline"`
	Creator   *Creator `bson:"creator,omitempty" json:"creator"`
}
