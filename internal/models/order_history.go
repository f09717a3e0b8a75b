package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingSnapshot is a rating embedded into a history row. Each slot is
// written at most once.
type RatingSnapshot struct {
	Stars     int       `bson:"stars" json:"stars"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// OrderHistory is the append-only snapshot written exactly once when an
// order completes. Party display fields are denormalized as they were at
// completion time, so later profile edits do not rewrite history. The two
// rating slots are the source of truth for aggregate recomputation:
// CustomerRating is given by the customer to the stuker, StukerRating by
// the stuker to the customer.
type OrderHistory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     string             `bson:"orderId" json:"orderId"`
	CustomerID  primitive.ObjectID `bson:"customerId" json:"customerId"`
	StukerID    primitive.ObjectID `bson:"stukerId" json:"stukerId"`
	PickupLoc   string             `bson:"pickupLoc" json:"pickupLoc"`
	DeliveryLoc string             `bson:"deliveryLoc" json:"deliveryLoc"`
	Description string             `bson:"description" json:"description"`
	ItemPrice   int64              `bson:"itemPrice" json:"itemPrice"`
	DeliveryFee int64              `bson:"deliveryFee" json:"deliveryFee"`
	TotalPrice  int64              `bson:"totalPrice" json:"totalPrice"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`

	CustomerName    string `bson:"customerName" json:"customerName"`
	CustomerPicture string `bson:"customerPicture,omitempty" json:"customerPicture,omitempty"`
	CustomerNIM     string `bson:"customerNim,omitempty" json:"customerNim,omitempty"`
	StukerName      string `bson:"stukerName" json:"stukerName"`
	StukerPicture   string `bson:"stukerPicture,omitempty" json:"stukerPicture,omitempty"`
	StukerNIM       string `bson:"stukerNim,omitempty" json:"stukerNim,omitempty"`

	CustomerRating *RatingSnapshot `bson:"customerRating,omitempty" json:"customerRating,omitempty"`
	StukerRating   *RatingSnapshot `bson:"stukerRating,omitempty" json:"stukerRating,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
