package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Direction tags who rates whom. It is resolved once per submission from
// the rater's relationship to the order and selects both the rating
// collection and the history slot to write.
type Direction string

const (
	// CustomerRatesStuker: the customer scores the courier.
	CustomerRatesStuker Direction = "customer-rates-stuker"
	// StukerRatesCustomer: the courier scores the customer.
	StukerRatesCustomer Direction = "stuker-rates-customer"
)

// Rating is one submitted rating row, unique on (orderId, raterId).
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	RaterID   primitive.ObjectID `bson:"raterId" json:"raterId"`
	RateeID   primitive.ObjectID `bson:"rateeId" json:"rateeId"`
	Stars     int                `bson:"stars" json:"stars"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
