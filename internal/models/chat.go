package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ChatTypeText      = "text"
	ChatTypeImage     = "image"
	ChatTypeTextImage = "text-image"
)

// ChatMessage is ephemeral: every message of an order is purged when the
// order reaches a terminal status.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	SenderID  primitive.ObjectID `bson:"senderId" json:"senderId"`
	Type      string             `bson:"type" json:"type"`
	Text      string             `bson:"text,omitempty" json:"text,omitempty"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Time      int64              `bson:"time" json:"time"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ChatType resolves the message type from its content.
func ChatType(text, imageURL string) string {
	switch {
	case text != "" && imageURL != "":
		return ChatTypeTextImage
	case imageURL != "":
		return ChatTypeImage
	default:
		return ChatTypeText
	}
}
