package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusSearching = "searching"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order is the canonical mutable order record. OrderID is the short
// shareable code used in URLs and realtime topics; ID is the Mongo key.
// StukerID stays unset until a courier wins the claim.
type Order struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID     string              `bson:"orderId" json:"orderId"`
	CustomerID  primitive.ObjectID  `bson:"customerId" json:"customerId"`
	StukerID    *primitive.ObjectID `bson:"stukerId,omitempty" json:"stukerId,omitempty"`
	PickupLoc   string              `bson:"pickupLoc" json:"pickupLoc"`
	DeliveryLoc string              `bson:"deliveryLoc" json:"deliveryLoc"`
	Description string              `bson:"description" json:"description"`
	ItemPrice   int64               `bson:"itemPrice" json:"itemPrice"`
	DeliveryFee int64               `bson:"deliveryFee" json:"deliveryFee"`
	TotalPrice  int64               `bson:"totalPrice" json:"totalPrice"`
	Status      string              `bson:"status" json:"status"`
	CompletedAt *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt *time.Time          `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// IsParty reports whether the given user is the customer or the assigned
// stuker of this order.
func (o *Order) IsParty(userID primitive.ObjectID) bool {
	if o.CustomerID == userID {
		return true
	}
	return o.StukerID != nil && *o.StukerID == userID
}
