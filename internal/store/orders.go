package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

func findAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetReturnDocument(options.After)
}

func (m *Mongo) InsertOrder(ctx context.Context, order *models.Order) error {
	res, err := m.db.Collection(collOrders).InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return nil
}

func (m *Mongo) OrderByCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := m.db.Collection(collOrders).FindOne(ctx, bson.M{"orderId": code}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

// ListSearching returns orders still looking for a stuker, newest first.
// The stukerId filter keeps orders out of the feed even in the window where
// a claim has set the courier but a stale status read might linger.
func (m *Mongo) ListSearching(ctx context.Context) ([]models.Order, error) {
	cursor, err := m.db.Collection(collOrders).Find(ctx,
		bson.M{
			"status":   models.StatusSearching,
			"stukerId": bson.M{"$exists": false},
		},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list searching orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode searching orders: %w", err)
	}
	return orders, nil
}

// OrdersForUser returns every order a user is involved in on either side,
// newest first. Feeds the login payload.
func (m *Mongo) OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := m.db.Collection(collOrders).Find(ctx,
		bson.M{"$or": []bson.M{
			{"customerId": userID},
			{"stukerId": userID},
		}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode user orders: %w", err)
	}
	return orders, nil
}

// ClaimOrder is the atomic accept: one conditional update that assigns the
// stuker and flips the status, matching only while the order is still
// searching and unassigned. Under concurrent claims exactly one caller gets
// the document back; every other caller sees ErrConflict.
func (m *Mongo) ClaimOrder(ctx context.Context, code string, stukerID primitive.ObjectID) (*models.Order, error) {
	res := m.db.Collection(collOrders).FindOneAndUpdate(ctx,
		bson.M{
			"orderId":  code,
			"status":   models.StatusSearching,
			"stukerId": bson.M{"$exists": false},
		},
		bson.M{"$set": bson.M{
			"stukerId":  stukerID,
			"status":    models.StatusOngoing,
			"updatedAt": time.Now(),
		}},
		findAfter())

	var order models.Order
	if err := res.Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("claim order: %w", err)
	}
	return &order, nil
}

// CompleteOrder transitions ongoing → completed. The status filter makes the
// transition single-winner: a second completion attempt matches nothing and
// reports ErrInvalidState.
func (m *Mongo) CompleteOrder(ctx context.Context, code string, at time.Time) (*models.Order, error) {
	res := m.db.Collection(collOrders).FindOneAndUpdate(ctx,
		bson.M{
			"orderId": code,
			"status":  models.StatusOngoing,
		},
		bson.M{"$set": bson.M{
			"status":      models.StatusCompleted,
			"completedAt": at,
			"updatedAt":   at,
		}},
		findAfter())

	var order models.Order
	if err := res.Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrInvalidState
		}
		return nil, fmt.Errorf("complete order: %w", err)
	}
	return &order, nil
}

// CancelOrder transitions searching|ongoing → cancelled for the owning
// customer only.
func (m *Mongo) CancelOrder(ctx context.Context, code string, customerID primitive.ObjectID, at time.Time) (*models.Order, error) {
	res := m.db.Collection(collOrders).FindOneAndUpdate(ctx,
		bson.M{
			"orderId":    code,
			"customerId": customerID,
			"status":     bson.M{"$in": []string{models.StatusSearching, models.StatusOngoing}},
		},
		bson.M{"$set": bson.M{
			"status":      models.StatusCancelled,
			"cancelledAt": at,
			"updatedAt":   at,
		}},
		findAfter())

	var order models.Order
	if err := res.Decode(&order); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrInvalidState
		}
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return &order, nil
}
