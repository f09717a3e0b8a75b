// Package orders implements the order lifecycle: creation, the courier
// claim, completion with its history snapshot, and cancellation.
//
// State machine: searching → ongoing → completed | cancelled, plus
// searching → cancelled. Every transition is one conditional write in the
// store; the pre-checks here only buy better error messages — correctness
// comes from the conditional write.
package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
	"backend/internal/realtime"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 8

	welcomeMessage = "Hi! Your order is on its way. Your stuker will reach you shortly, thanks for waiting!"
)

// Store is the persistence surface the order service needs.
type Store interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	OrderByCode(ctx context.Context, code string) (*models.Order, error)
	ListSearching(ctx context.Context) ([]models.Order, error)
	ClaimOrder(ctx context.Context, code string, stukerID primitive.ObjectID) (*models.Order, error)
	CompleteOrder(ctx context.Context, code string, at time.Time) (*models.Order, error)
	CancelOrder(ctx context.Context, code string, customerID primitive.ObjectID, at time.Time) (*models.Order, error)

	InsertHistory(ctx context.Context, history *models.OrderHistory) error
	HistoryByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.OrderHistory, error)
	HistoryByStuker(ctx context.Context, stukerID primitive.ObjectID) ([]models.OrderHistory, error)

	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)

	InsertChat(ctx context.Context, message *models.ChatMessage) error
	PurgeChat(ctx context.Context, orderRef primitive.ObjectID) error
}

type Service struct {
	store    Store
	notifier realtime.Notifier

	now     func() time.Time
	newCode func() (string, error)
}

func NewService(store Store, notifier realtime.Notifier) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		newCode: func() (string, error) {
			return gonanoid.Generate(codeAlphabet, codeLength)
		},
	}
}

// CreateInput is the customer's new-order request. TotalPrice is never an
// input: it is computed here.
type CreateInput struct {
	PickupLoc   string
	DeliveryLoc string
	Description string
	ItemPrice   int64
	DeliveryFee int64
}

func (in CreateInput) validate() error {
	if in.PickupLoc == "" || in.DeliveryLoc == "" || in.Description == "" {
		return fmt.Errorf("%w: pickup, delivery and description are required", models.ErrValidation)
	}
	if in.ItemPrice <= 0 || in.DeliveryFee <= 0 {
		return fmt.Errorf("%w: itemPrice and deliveryFee must be greater than zero", models.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, customerID primitive.ObjectID, in CreateInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate order code: %w", err)
	}

	now := s.now()
	order := &models.Order{
		OrderID:     code,
		CustomerID:  customerID,
		PickupLoc:   in.PickupLoc,
		DeliveryLoc: in.DeliveryLoc,
		Description: in.Description,
		ItemPrice:   in.ItemPrice,
		DeliveryFee: in.DeliveryFee,
		TotalPrice:  in.ItemPrice + in.DeliveryFee,
		Status:      models.StatusSearching,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.Publish(realtime.TopicStukerDashboard, realtime.EventOrderCreated, map[string]interface{}{
		"orderId": order.OrderID,
	})
	log.Println("[ORDER] [INFO] order created:", order.OrderID)
	return order, nil
}

// FeedItem is one entry of the stuker-facing discovery feed: the order plus
// a display-safe slice of the customer and their customer-role rating.
type FeedItem struct {
	OrderID          string `json:"order_id"`
	PickupLocation   string `json:"pickup_location"`
	DeliveryLocation string `json:"delivery_location"`
	OrderDescription string `json:"order_description"`
	PriceEstimation  int64  `json:"price_estimation"`
	DeliveryFee      int64  `json:"delivery_fee"`
	TotalPrice       int64  `json:"total_price_estimation"`
	CustomerName     string `json:"customer_name"`
	CustomerImage    string `json:"customer_image"`
	CustomerRate     int    `json:"customer_rate"` // 0-50, one decimal scaled by ten
}

func (s *Service) ListAvailable(ctx context.Context) ([]FeedItem, error) {
	list, err := s.store.ListSearching(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedItem, 0, len(list))
	for _, order := range list {
		item := FeedItem{
			OrderID:          order.OrderID,
			PickupLocation:   order.PickupLoc,
			DeliveryLocation: order.DeliveryLoc,
			OrderDescription: order.Description,
			PriceEstimation:  order.ItemPrice,
			DeliveryFee:      order.DeliveryFee,
			TotalPrice:       order.TotalPrice,
			CustomerName:     "Unknown",
			CustomerImage:    models.DefaultProfilePicture,
		}
		if customer, err := s.store.UserByID(ctx, order.CustomerID); err == nil {
			item.CustomerName = customer.Name
			if customer.ProfilePicture != "" {
				item.CustomerImage = customer.ProfilePicture
			}
			item.CustomerRate = int(customer.AvgRatingAsUser*10 + 0.5)
		}
		feed = append(feed, item)
	}
	return feed, nil
}

// Accept is the claim operation. The lookup-based checks are advisory and
// produce the distinguishable errors the feed UI needs; the ClaimOrder call
// is the one that decides the race.
func (s *Service) Accept(ctx context.Context, code string, stukerID primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.OrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.CustomerID == stukerID {
		return nil, fmt.Errorf("%w: cannot accept your own order", models.ErrForbidden)
	}
	if order.StukerID != nil {
		return nil, models.ErrConflict
	}
	if order.Status != models.StatusSearching {
		return nil, models.ErrInvalidState
	}

	claimed, err := s.store.ClaimOrder(ctx, code, stukerID)
	if err != nil {
		return nil, err
	}

	// The welcome message opens the conversation; losing it must not undo a
	// won claim.
	message := &models.ChatMessage{
		OrderID:   claimed.ID,
		SenderID:  stukerID,
		Type:      models.ChatTypeText,
		Text:      welcomeMessage,
		Time:      s.now().UnixMilli(),
		CreatedAt: s.now(),
	}
	if err := s.store.InsertChat(ctx, message); err != nil {
		log.Println("[ORDER] [ERROR] welcome message failed:", err)
	} else {
		s.notifier.Publish(realtime.OrderTopic(code), realtime.EventChatMessage, map[string]interface{}{
			"id":       message.ID.Hex(),
			"senderId": stukerID.Hex(),
			"type":     message.Type,
			"text":     message.Text,
			"time":     message.Time,
		})
	}

	s.notifier.Publish(realtime.OrderTopic(code), realtime.EventOrderAccepted, map[string]interface{}{
		"orderId":  code,
		"stukerId": stukerID.Hex(),
	})
	s.notifier.Publish(realtime.StukerTopic(stukerID.Hex()), realtime.EventOrderAccepted, map[string]interface{}{
		"orderId": code,
	})

	log.Println("[ORDER] [INFO] order accepted:", code, "by stuker:", stukerID.Hex())
	return claimed, nil
}

// Complete finishes an ongoing order: wins the conditional transition,
// writes the immutable history snapshot and purges the conversation. A
// second call loses the transition and reports ErrInvalidState without a
// duplicate snapshot.
func (s *Service) Complete(ctx context.Context, code string, requesterID primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.OrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(requesterID) {
		return nil, models.ErrForbidden
	}
	if order.Status != models.StatusOngoing || order.StukerID == nil {
		return nil, models.ErrInvalidState
	}

	customer, err := s.store.UserByID(ctx, order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	stuker, err := s.store.UserByID(ctx, *order.StukerID)
	if err != nil {
		return nil, fmt.Errorf("load stuker: %w", err)
	}

	completed, err := s.store.CompleteOrder(ctx, code, s.now())
	if err != nil {
		return nil, err
	}

	history := &models.OrderHistory{
		OrderID:         completed.OrderID,
		CustomerID:      completed.CustomerID,
		StukerID:        *completed.StukerID,
		PickupLoc:       completed.PickupLoc,
		DeliveryLoc:     completed.DeliveryLoc,
		Description:     completed.Description,
		ItemPrice:       completed.ItemPrice,
		DeliveryFee:     completed.DeliveryFee,
		TotalPrice:      completed.TotalPrice,
		CompletedAt:     *completed.CompletedAt,
		CustomerName:    customer.Name,
		CustomerPicture: customer.ProfilePicture,
		CustomerNIM:     customer.NIM,
		StukerName:      stuker.Name,
		StukerPicture:   stuker.ProfilePicture,
		StukerNIM:       stuker.NIM,
		CreatedAt:       s.now(),
	}
	if err := s.store.InsertHistory(ctx, history); err != nil {
		return nil, err
	}

	if err := s.store.PurgeChat(ctx, completed.ID); err != nil {
		log.Println("[ORDER] [ERROR] chat purge failed:", err)
	}

	s.notifier.Publish(realtime.OrderTopic(code), realtime.EventOrderCompleted, map[string]interface{}{
		"orderId": code,
	})
	log.Println("[ORDER] [INFO] order completed:", code)
	return completed, nil
}

// Cancel lets the owning customer abort a searching or ongoing order.
func (s *Service) Cancel(ctx context.Context, code string, requesterID primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.OrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != requesterID {
		return nil, models.ErrForbidden
	}
	if order.Status != models.StatusSearching && order.Status != models.StatusOngoing {
		return nil, models.ErrInvalidState
	}

	cancelled, err := s.store.CancelOrder(ctx, code, requesterID, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.PurgeChat(ctx, cancelled.ID); err != nil {
		log.Println("[ORDER] [ERROR] chat purge failed:", err)
	}

	s.notifier.Publish(realtime.OrderTopic(code), realtime.EventOrderCancelled, map[string]interface{}{
		"orderId": code,
	})
	log.Println("[ORDER] [INFO] order cancelled:", code)
	return cancelled, nil
}

// Details is the party-only full order view with both parties' display
// fields.
type Details struct {
	OrderID          string     `json:"order_id"`
	CustomerNIM      string     `json:"customer_nim,omitempty"`
	CustomerName     string     `json:"customer_name"`
	CustomerImage    string     `json:"customer_image"`
	StukerNIM        string     `json:"stuker_nim,omitempty"`
	StukerName       string     `json:"stuker_name,omitempty"`
	StukerImage      string     `json:"stuker_image,omitempty"`
	PickupLocation   string     `json:"pickup_location"`
	DeliveryLocation string     `json:"delivery_location"`
	OrderDescription string     `json:"order_description"`
	PriceEstimation  int64      `json:"price_estimation"`
	DeliveryFee      int64      `json:"delivery_fee"`
	TotalPrice       int64      `json:"total_price_estimation"`
	OrderDate        string     `json:"order_date"`
	Status           string     `json:"status"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

func (s *Service) Details(ctx context.Context, code string, requesterID primitive.ObjectID) (*Details, error) {
	order, err := s.store.OrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !order.IsParty(requesterID) {
		return nil, models.ErrForbidden
	}

	details := &Details{
		OrderID:          order.OrderID,
		CustomerName:     "Unknown",
		CustomerImage:    models.DefaultProfilePicture,
		PickupLocation:   order.PickupLoc,
		DeliveryLocation: order.DeliveryLoc,
		OrderDescription: order.Description,
		PriceEstimation:  order.ItemPrice,
		DeliveryFee:      order.DeliveryFee,
		TotalPrice:       order.TotalPrice,
		OrderDate:        order.CreatedAt.Format("January 2, 2006"),
		Status:           order.Status,
		CompletedAt:      order.CompletedAt,
	}
	if customer, err := s.store.UserByID(ctx, order.CustomerID); err == nil {
		details.CustomerNIM = customer.NIM
		details.CustomerName = customer.Name
		if customer.ProfilePicture != "" {
			details.CustomerImage = customer.ProfilePicture
		}
	}
	if order.StukerID != nil {
		if stuker, err := s.store.UserByID(ctx, *order.StukerID); err == nil {
			details.StukerNIM = stuker.NIM
			details.StukerName = stuker.Name
			details.StukerImage = stuker.ProfilePicture
			if details.StukerImage == "" {
				details.StukerImage = models.DefaultProfilePicture
			}
		}
	}
	return details, nil
}

// HistoryItem is one completed order as seen from one side, with the rating
// that side received, if any.
type HistoryItem struct {
	OrderID        string                 `json:"orderId"`
	PickupLoc      string                 `json:"pickupLoc"`
	DeliveryLoc    string                 `json:"deliveryLoc"`
	TotalPrice     int64                  `json:"totalPrice"`
	CompletedAt    time.Time              `json:"completedAt"`
	PartnerName    string                 `json:"partnerName"`
	PartnerPicture string                 `json:"partnerPicture"`
	Rating         *models.RatingSnapshot `json:"rating"`
}

// History lists the requester's completed orders for one role. as must be
// "user" (their orders as customer) or "stuker" (their deliveries).
func (s *Service) History(ctx context.Context, userID primitive.ObjectID, as string) ([]HistoryItem, error) {
	var (
		rows []models.OrderHistory
		err  error
	)
	switch as {
	case models.RoleUser:
		rows, err = s.store.HistoryByCustomer(ctx, userID)
	case models.RoleStuker:
		rows, err = s.store.HistoryByStuker(ctx, userID)
	default:
		return nil, fmt.Errorf("%w: \"as\" must be %q or %q", models.ErrValidation, models.RoleUser, models.RoleStuker)
	}
	if err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		item := HistoryItem{
			OrderID:     row.OrderID,
			PickupLoc:   row.PickupLoc,
			DeliveryLoc: row.DeliveryLoc,
			TotalPrice:  row.TotalPrice,
			CompletedAt: row.CompletedAt,
		}
		if as == models.RoleUser {
			item.PartnerName = row.StukerName
			item.PartnerPicture = row.StukerPicture
			item.Rating = row.StukerRating // what the stuker said about them
		} else {
			item.PartnerName = row.CustomerName
			item.PartnerPicture = row.CustomerPicture
			item.Rating = row.CustomerRating
		}
		if item.PartnerPicture == "" {
			item.PartnerPicture = models.DefaultProfilePicture
		}
		items = append(items, item)
	}
	return items, nil
}
