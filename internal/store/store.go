// Package store is the Mongo-backed persistence layer. Every order status
// transition goes through a single conditional write so the database stays
// the sole arbiter of same-order ordering.
package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	collUsers           = "users"
	collOrders          = "orders"
	collOrderHistory    = "order_history"
	collStukerRatings   = "stuker_ratings"   // given by customers to stukers
	collCustomerRatings = "customer_ratings" // given by stukers to customers
	collChats           = "chats"
)

type Mongo struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}
