package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

func (m *Mongo) InsertChat(ctx context.Context, message *models.ChatMessage) error {
	res, err := m.db.Collection(collChats).InsertOne(ctx, message)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		message.ID = id
	}
	return nil
}

func (m *Mongo) ChatByOrder(ctx context.Context, orderRef primitive.ObjectID) ([]models.ChatMessage, error) {
	cursor, err := m.db.Collection(collChats).Find(ctx,
		bson.M{"orderId": orderRef},
		options.Find().SetSort(bson.D{{Key: "time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode chat messages: %w", err)
	}
	return messages, nil
}

// PurgeChat removes every message of an order. Called when the order
// reaches a terminal status.
func (m *Mongo) PurgeChat(ctx context.Context, orderRef primitive.ObjectID) error {
	_, err := m.db.Collection(collChats).DeleteMany(ctx, bson.M{"orderId": orderRef})
	if err != nil {
		return fmt.Errorf("purge chat: %w", err)
	}
	return nil
}
