// Package ratings implements the two-sided rating engine. A rating is
// always directional (customer→stuker or stuker→customer); aggregates are
// never incremented in place but recomputed from the order history archive,
// which makes the update idempotent and self-healing regardless of which
// party rates first.
package ratings

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

// Store is the persistence surface the rating engine needs.
type Store interface {
	OrderByCode(ctx context.Context, code string) (*models.Order, error)
	InsertRating(ctx context.Context, direction models.Direction, rating *models.Rating) error
	SetHistoryRating(ctx context.Context, orderCode string, direction models.Direction, snap models.RatingSnapshot) error
	RatedHistoryAsStuker(ctx context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error)
	RatedHistoryAsCustomer(ctx context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error)
	RatingsForRatee(ctx context.Context, rateeID primitive.ObjectID) ([]models.Rating, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	SetRoleAggregate(ctx context.Context, id primitive.ObjectID, role string, total, count int, avg float64) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Aggregate is one recomputed role aggregate as returned to clients.
type Aggregate struct {
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

// SubmitResult reports both parties' aggregates after recomputation.
type SubmitResult struct {
	OrderID string    `json:"orderId"`
	Stars   int       `json:"stars"`
	Comment string    `json:"comment,omitempty"`
	Ratee   Aggregate `json:"ratee"`
	Rater   Aggregate `json:"rater"`
}

// Submit records one rating for a completed order, exactly once per
// (order, rater), then recomputes both parties' role aggregates from the
// history archive.
func (s *Service) Submit(ctx context.Context, orderCode string, raterID primitive.ObjectID, stars int, comment string) (*SubmitResult, error) {
	if stars < 1 || stars > 5 {
		return nil, fmt.Errorf("%w: stars must be between 1 and 5", models.ErrValidation)
	}

	order, err := s.store.OrderByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusCompleted {
		return nil, models.ErrInvalidState
	}

	direction, rateeID, err := resolveDirection(order, raterID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rating := &models.Rating{
		OrderID:   order.ID,
		RaterID:   raterID,
		RateeID:   rateeID,
		Stars:     stars,
		Comment:   comment,
		CreatedAt: now,
	}
	if err := s.store.InsertRating(ctx, direction, rating); err != nil {
		return nil, err
	}

	if err := s.store.SetHistoryRating(ctx, order.OrderID, direction, models.RatingSnapshot{
		Stars:     stars,
		Comment:   comment,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	// Ratee gets the role they were rated in; the rater's own aggregate is
	// refreshed too so a counterpart's earlier rating is picked up no matter
	// the submission order.
	rateeRole := models.RoleStuker
	raterRole := models.RoleUser
	if direction == models.StukerRatesCustomer {
		rateeRole = models.RoleUser
		raterRole = models.RoleStuker
	}
	if err := s.Recompute(ctx, rateeID, rateeRole); err != nil {
		return nil, err
	}
	if err := s.Recompute(ctx, raterID, raterRole); err != nil {
		return nil, err
	}

	ratee, err := s.store.UserByID(ctx, rateeID)
	if err != nil {
		return nil, err
	}
	rater, err := s.store.UserByID(ctx, raterID)
	if err != nil {
		return nil, err
	}

	log.Println("[RATING] [INFO] rating recorded for order:", orderCode)
	return &SubmitResult{
		OrderID: orderCode,
		Stars:   stars,
		Comment: comment,
		Ratee:   roleAggregate(ratee, rateeRole),
		Rater:   roleAggregate(rater, raterRole),
	}, nil
}

func resolveDirection(order *models.Order, raterID primitive.ObjectID) (models.Direction, primitive.ObjectID, error) {
	isCustomer := order.CustomerID == raterID
	isStuker := order.StukerID != nil && *order.StukerID == raterID
	switch {
	case isCustomer && order.StukerID != nil:
		return models.CustomerRatesStuker, *order.StukerID, nil
	case isStuker:
		return models.StukerRatesCustomer, order.CustomerID, nil
	default:
		return "", primitive.NilObjectID, models.ErrForbidden
	}
}

func roleAggregate(user *models.User, role string) Aggregate {
	if role == models.RoleStuker {
		return Aggregate{Avg: user.AvgRatingAsStuker, Count: user.CountRatingAsStuker}
	}
	return Aggregate{Avg: user.AvgRatingAsUser, Count: user.CountRatingAsUser}
}

// Recompute rebuilds one role aggregate from the history archive. Each
// history row counts at most once; a row where the user somehow appears on
// both sides is unreachable because accept rejects self-claims, and the
// per-order dedup here makes that invariant explicit rather than silently
// double-counting.
func (s *Service) Recompute(ctx context.Context, userID primitive.ObjectID, role string) error {
	var (
		rows []models.OrderHistory
		err  error
	)
	if role == models.RoleStuker {
		rows, err = s.store.RatedHistoryAsStuker(ctx, userID)
	} else {
		rows, err = s.store.RatedHistoryAsCustomer(ctx, userID)
	}
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(rows))
	total, count := 0, 0
	for _, row := range rows {
		if row.OrderID == "" || seen[row.OrderID] {
			continue
		}
		snap := row.CustomerRating
		if role == models.RoleUser {
			snap = row.StukerRating
		}
		if snap == nil || snap.Stars < 1 || snap.Stars > 5 {
			continue
		}
		total += snap.Stars
		count++
		seen[row.OrderID] = true
	}

	avg := models.RoundAverage(total, count)
	return s.store.SetRoleAggregate(ctx, userID, role, total, count, avg)
}

// OrderContext is what the "rate this person" screen needs: the
// counterpart's display identity and the order's locations.
type OrderContext struct {
	OrderID          string `json:"orderId"`
	PickupLocation   string `json:"pickupLocation"`
	DeliveryLocation string `json:"deliveryLocation"`
	RateeName        string `json:"rateeName"`
	RateeImage       string `json:"rateeImage"`
}

func (s *Service) RatingContext(ctx context.Context, orderCode string, requesterID primitive.ObjectID) (*OrderContext, error) {
	order, err := s.store.OrderByCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if order.Status != models.StatusCompleted {
		return nil, models.ErrNotFound
	}

	_, rateeID, err := resolveDirection(order, requesterID)
	if err != nil {
		return nil, err
	}

	ratee, err := s.store.UserByID(ctx, rateeID)
	if err != nil {
		return nil, err
	}

	image := ratee.ProfilePicture
	if image == "" {
		image = models.DefaultProfilePicture
	}
	return &OrderContext{
		OrderID:          order.OrderID,
		PickupLocation:   order.PickupLoc,
		DeliveryLocation: order.DeliveryLoc,
		RateeName:        ratee.Name,
		RateeImage:       image,
	}, nil
}

// UserRating exposes a user's role aggregates plus the derived legacy view.
type UserRating struct {
	AvgRatingAsUser     float64 `json:"avgRatingAsUser"`
	CountRatingAsUser   int     `json:"countRatingAsUser"`
	AvgRatingAsStuker   float64 `json:"avgRatingAsStuker"`
	CountRatingAsStuker int     `json:"countRatingAsStuker"`
	AvgRating           float64 `json:"avgRating"`
	CountRating         int     `json:"countRating"`
}

func (s *Service) UserRating(ctx context.Context, userID primitive.ObjectID) (*UserRating, error) {
	user, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	legacyAvg, legacyCount := user.LegacyAggregate()
	return &UserRating{
		AvgRatingAsUser:     user.AvgRatingAsUser,
		CountRatingAsUser:   user.CountRatingAsUser,
		AvgRatingAsStuker:   user.AvgRatingAsStuker,
		CountRatingAsStuker: user.CountRatingAsStuker,
		AvgRating:           legacyAvg,
		CountRating:         legacyCount,
	}, nil
}

// ReceivedRating is one rating a user received, for the profile page.
type ReceivedRating struct {
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	RaterID   string    `json:"raterId"`
}

// Received returns a page of the ratings a user received in both
// directions, newest first, plus the total before paging.
func (s *Service) Received(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]ReceivedRating, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	rows, err := s.store.RatingsForRatee(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	total := len(rows)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	out := make([]ReceivedRating, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, ReceivedRating{
			Stars:     row.Stars,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
			RaterID:   row.RaterID.Hex(),
		})
	}
	return out, total, nil
}
