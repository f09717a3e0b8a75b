package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

func (m *Mongo) InsertHistory(ctx context.Context, history *models.OrderHistory) error {
	res, err := m.db.Collection(collOrderHistory).InsertOne(ctx, history)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// The unique orderId index backstops double completion.
			return models.ErrConflict
		}
		return fmt.Errorf("insert history: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		history.ID = id
	}
	return nil
}

func (m *Mongo) HistoryByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.OrderHistory, error) {
	return m.findHistory(ctx, bson.M{"customerId": customerID})
}

func (m *Mongo) HistoryByStuker(ctx context.Context, stukerID primitive.ObjectID) ([]models.OrderHistory, error) {
	return m.findHistory(ctx, bson.M{"stukerId": stukerID})
}

func (m *Mongo) findHistory(ctx context.Context, filter bson.M) ([]models.OrderHistory, error) {
	cursor, err := m.db.Collection(collOrderHistory).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find history: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []models.OrderHistory
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return rows, nil
}

// SetHistoryRating writes one embedded rating slot, but only while the slot
// is still empty. A second write for the same slot matches nothing and is a
// no-op; the rating row uniqueness has already rejected the duplicate.
func (m *Mongo) SetHistoryRating(ctx context.Context, orderCode string, direction models.Direction, snap models.RatingSnapshot) error {
	field := "customerRating"
	if direction == models.StukerRatesCustomer {
		field = "stukerRating"
	}

	_, err := m.db.Collection(collOrderHistory).UpdateOne(ctx,
		bson.M{
			"orderId": orderCode,
			field:     bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{field: snap}})
	if err != nil {
		return fmt.Errorf("set history rating: %w", err)
	}
	return nil
}

// RatedHistoryAsStuker returns the rows feeding a user's stuker aggregate:
// completed orders they delivered where the customer left a rating.
func (m *Mongo) RatedHistoryAsStuker(ctx context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error) {
	return m.findHistory(ctx, bson.M{
		"stukerId":             userID,
		"customerRating.stars": bson.M{"$gte": 1, "$lte": 5},
	})
}

// RatedHistoryAsCustomer returns the rows feeding a user's customer
// aggregate: completed orders they placed where the stuker left a rating.
func (m *Mongo) RatedHistoryAsCustomer(ctx context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error) {
	return m.findHistory(ctx, bson.M{
		"customerId":         userID,
		"stukerRating.stars": bson.M{"$gte": 1, "$lte": 5},
	})
}
