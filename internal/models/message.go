package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a dashboard message between two profiles.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SenderID    string             `bson:"sender_id" json:"sender_id"`
	RecipientID string             `bson:"recipient_id" json:"recipient_id"`
	Body        string             `bson:"body" json:"body"`
	Read        bool               `bson:"read" json:"read"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// SendMessageRequest is the body of POST /api/messages.
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id"`
	Body        string `json:"body"`
}
