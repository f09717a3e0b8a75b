package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nimIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "nim", Value: 1}},
		Options: options.Index().
			SetName("nim_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating nim_unique index")
	_, err := db.Collection("users").Indexes().CreateOne(ctx, nimIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: nim index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().
				SetName("orderId_unique").
				SetUnique(true),
		},
		{
			// Serves the available-orders feed: searching first, newest first.
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}},
			Options: options.Index().SetName("customerId_index"),
		},
		{
			Keys:    bson.D{{Key: "stukerId", Value: 1}},
			Options: options.Index().SetName("stukerId_index"),
		},
	}

	log.Println("EnsureOrderIndexes: creating order indexes")
	_, err := db.Collection("orders").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	return nil
}

func EnsureHistoryIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			// One snapshot per completed order, ever.
			Keys: bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().
				SetName("orderId_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index().SetName("customer_completedAt"),
		},
		{
			Keys:    bson.D{{Key: "stukerId", Value: 1}, {Key: "completedAt", Value: -1}},
			Options: options.Index().SetName("stuker_completedAt"),
		},
	}

	log.Println("EnsureHistoryIndexes: creating order_history indexes")
	_, err := db.Collection("order_history").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Println("EnsureHistoryIndexes: history index error:", err)
		return err
	}
	return nil
}

// EnsureRatingIndexes installs the unique (orderId, raterId) index on both
// rating collections. The index is the duplicate-submission guard.
func EnsureRatingIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pairIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "orderId", Value: 1}, {Key: "raterId", Value: 1}},
		Options: options.Index().
			SetName("order_rater_unique").
			SetUnique(true),
	}

	for _, name := range []string{"stuker_ratings", "customer_ratings"} {
		log.Println("EnsureRatingIndexes: creating order_rater_unique index on", name)
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, pairIndex); err != nil {
			log.Println("EnsureRatingIndexes: rating index error:", err)
			return err
		}
	}
	return nil
}

func EnsureChatIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	orderIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderId", Value: 1}, {Key: "time", Value: 1}},
		Options: options.Index().SetName("order_time"),
	}

	log.Println("EnsureChatIndexes: creating order_time index")
	_, err := db.Collection("chats").Indexes().CreateOne(ctx, orderIndex)
	if err != nil {
		log.Println("EnsureChatIndexes: chat index error:", err)
		return err
	}
	return nil
}
