package chat

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

type fakeStore struct {
	orders   map[string]*models.Order
	messages map[primitive.ObjectID][]models.ChatMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[string]*models.Order),
		messages: make(map[primitive.ObjectID][]models.ChatMessage),
	}
}

func (f *fakeStore) OrderByCode(_ context.Context, code string) (*models.Order, error) {
	order, ok := f.orders[code]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeStore) InsertChat(_ context.Context, message *models.ChatMessage) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	f.messages[message.OrderID] = append(f.messages[message.OrderID], *message)
	return nil
}

func (f *fakeStore) ChatByOrder(_ context.Context, orderRef primitive.ObjectID) ([]models.ChatMessage, error) {
	return f.messages[orderRef], nil
}

func (f *fakeStore) seedOrder(code string, customerID, stukerID primitive.ObjectID) *models.Order {
	sid := stukerID
	order := &models.Order{
		ID:         primitive.NewObjectID(),
		OrderID:    code,
		CustomerID: customerID,
		StukerID:   &sid,
		Status:     models.StatusOngoing,
	}
	f.orders[code] = order
	return order
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, interface{}) {}

func TestSendAndRead(t *testing.T) {
	store := newFakeStore()
	customer := primitive.NewObjectID()
	stuker := primitive.NewObjectID()
	store.seedOrder("ORDER001", customer, stuker)
	svc := NewService(store, nopNotifier{})

	sent, err := svc.Send(context.Background(), "ORDER001", customer, "where are you?", "")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Type != models.ChatTypeText {
		t.Errorf("type = %q, want %q", sent.Type, models.ChatTypeText)
	}

	messages, err := svc.Messages(context.Background(), "ORDER001", stuker)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "where are you?" {
		t.Errorf("messages = %+v", messages)
	}
}

func TestSendRequiresContent(t *testing.T) {
	store := newFakeStore()
	customer := primitive.NewObjectID()
	store.seedOrder("ORDER001", customer, primitive.NewObjectID())
	svc := NewService(store, nopNotifier{})

	if _, err := svc.Send(context.Background(), "ORDER001", customer, "", ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSendImageType(t *testing.T) {
	store := newFakeStore()
	customer := primitive.NewObjectID()
	store.seedOrder("ORDER001", customer, primitive.NewObjectID())
	svc := NewService(store, nopNotifier{})

	sent, err := svc.Send(context.Background(), "ORDER001", customer, "", "/uploads/receipt.png")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Type != models.ChatTypeImage {
		t.Errorf("type = %q, want %q", sent.Type, models.ChatTypeImage)
	}
}

func TestMembershipEnforced(t *testing.T) {
	store := newFakeStore()
	customer := primitive.NewObjectID()
	outsider := primitive.NewObjectID()
	store.seedOrder("ORDER001", customer, primitive.NewObjectID())
	svc := NewService(store, nopNotifier{})

	if _, err := svc.Messages(context.Background(), "ORDER001", outsider); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Messages err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Send(context.Background(), "ORDER001", outsider, "hi", ""); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Send err = %v, want ErrForbidden", err)
	}
	if err := svc.CanJoin(context.Background(), "ORDER001", outsider); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("CanJoin err = %v, want ErrForbidden", err)
	}
	if err := svc.CanJoin(context.Background(), "ORDER001", customer); err != nil {
		t.Errorf("CanJoin customer err = %v, want nil", err)
	}
}
