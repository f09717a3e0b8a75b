package store

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

func ratingCollection(direction models.Direction) string {
	if direction == models.StukerRatesCustomer {
		return collCustomerRatings
	}
	return collStukerRatings
}

// InsertRating persists one rating row, insert-if-absent on the unique
// (orderId, raterId) pair. A concurrent or repeated submission never
// overwrites the first stars: it surfaces as ErrAlreadyRated.
func (m *Mongo) InsertRating(ctx context.Context, direction models.Direction, rating *models.Rating) error {
	coll := m.db.Collection(ratingCollection(direction))

	res, err := coll.UpdateOne(ctx,
		bson.M{"orderId": rating.OrderID, "raterId": rating.RaterID},
		bson.M{"$setOnInsert": rating},
		options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrAlreadyRated
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	if res.UpsertedCount == 0 {
		return models.ErrAlreadyRated
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		rating.ID = id
	}
	return nil
}

// RatingsForRatee merges the ratings a user received in both directions,
// newest first, for the profile page.
func (m *Mongo) RatingsForRatee(ctx context.Context, rateeID primitive.ObjectID) ([]models.Rating, error) {
	var merged []models.Rating
	for _, name := range []string{collStukerRatings, collCustomerRatings} {
		cursor, err := m.db.Collection(name).Find(ctx, bson.M{"rateeId": rateeID})
		if err != nil {
			return nil, fmt.Errorf("find ratings for ratee: %w", err)
		}
		var rows []models.Rating
		if err := cursor.All(ctx, &rows); err != nil {
			return nil, fmt.Errorf("decode ratings for ratee: %w", err)
		}
		merged = append(merged, rows...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}
