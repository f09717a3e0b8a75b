// Package chat handles the per-order conversation. Membership is checked
// against the order record on every read and write; the whole conversation
// is ephemeral and purged when the order terminates.
package chat

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/realtime"
)

type Store interface {
	OrderByCode(ctx context.Context, code string) (*models.Order, error)
	InsertChat(ctx context.Context, message *models.ChatMessage) error
	ChatByOrder(ctx context.Context, orderRef primitive.ObjectID) ([]models.ChatMessage, error)
}

type Service struct {
	store    Store
	notifier realtime.Notifier
	now      func() time.Time
}

func NewService(store Store, notifier realtime.Notifier) *Service {
	return &Service{store: store, notifier: notifier, now: time.Now}
}

func (s *Service) memberOrder(ctx context.Context, code string, userID primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.OrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(userID) {
		return nil, models.ErrForbidden
	}
	return order, nil
}

// Messages returns the order's conversation in chronological order, for
// parties only.
func (s *Service) Messages(ctx context.Context, code string, requesterID primitive.ObjectID) ([]models.ChatMessage, error) {
	order, err := s.memberOrder(ctx, code, requesterID)
	if err != nil {
		return nil, err
	}
	return s.store.ChatByOrder(ctx, order.ID)
}

// Send stores one message and broadcasts it on the order topic. At least
// one of text and imageURL is required; the message type follows from
// which are present.
func (s *Service) Send(ctx context.Context, code string, senderID primitive.ObjectID, text, imageURL string) (*models.ChatMessage, error) {
	if text == "" && imageURL == "" {
		return nil, fmt.Errorf("%w: message must contain text or image", models.ErrValidation)
	}

	order, err := s.memberOrder(ctx, code, senderID)
	if err != nil {
		return nil, err
	}

	message := &models.ChatMessage{
		OrderID:   order.ID,
		SenderID:  senderID,
		Type:      models.ChatType(text, imageURL),
		Text:      text,
		ImageURL:  imageURL,
		Time:      s.now().UnixMilli(),
		CreatedAt: s.now(),
	}
	if err := s.store.InsertChat(ctx, message); err != nil {
		return nil, err
	}

	s.notifier.Publish(realtime.OrderTopic(code), realtime.EventChatMessage, map[string]interface{}{
		"id":       message.ID.Hex(),
		"senderId": senderID.Hex(),
		"type":     message.Type,
		"text":     message.Text,
		"imageUrl": message.ImageURL,
		"time":     message.Time,
	})
	return message, nil
}

// CanJoin verifies a subscriber's membership before they attach to the
// order's realtime topic.
func (s *Service) CanJoin(ctx context.Context, code string, userID primitive.ObjectID) error {
	_, err := s.memberOrder(ctx, code, userID)
	return err
}
