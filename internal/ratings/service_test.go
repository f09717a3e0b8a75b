package ratings

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	orders  map[string]*models.Order
	history map[string]*models.OrderHistory // by order code
	users   map[primitive.ObjectID]*models.User
	ratings map[string]*models.Rating // order id + rater id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:  make(map[string]*models.Order),
		history: make(map[string]*models.OrderHistory),
		users:   make(map[primitive.ObjectID]*models.User),
		ratings: make(map[string]*models.Rating),
	}
}

func (f *fakeStore) OrderByCode(_ context.Context, code string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[code]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeStore) InsertRating(_ context.Context, _ models.Direction, rating *models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rating.OrderID.Hex() + "/" + rating.RaterID.Hex()
	if _, exists := f.ratings[key]; exists {
		return models.ErrAlreadyRated
	}
	if rating.ID.IsZero() {
		rating.ID = primitive.NewObjectID()
	}
	cp := *rating
	f.ratings[key] = &cp
	return nil
}

func (f *fakeStore) SetHistoryRating(_ context.Context, orderCode string, direction models.Direction, snap models.RatingSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.history[orderCode]
	if !ok {
		return nil
	}
	if direction == models.CustomerRatesStuker {
		if row.CustomerRating == nil {
			row.CustomerRating = &snap
		}
	} else {
		if row.StukerRating == nil {
			row.StukerRating = &snap
		}
	}
	return nil
}

func (f *fakeStore) RatedHistoryAsStuker(_ context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderHistory
	for _, row := range f.history {
		if row.StukerID == userID && row.CustomerRating != nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeStore) RatedHistoryAsCustomer(_ context.Context, userID primitive.ObjectID) ([]models.OrderHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.OrderHistory
	for _, row := range f.history {
		if row.CustomerID == userID && row.StukerRating != nil {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeStore) RatingsForRatee(_ context.Context, rateeID primitive.ObjectID) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rating
	for _, row := range f.ratings {
		if row.RateeID == rateeID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeStore) SetRoleAggregate(_ context.Context, id primitive.ObjectID, role string, total, count int, avg float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if role == models.RoleStuker {
		user.TotalRatingAsStuker, user.CountRatingAsStuker, user.AvgRatingAsStuker = total, count, avg
	} else {
		user.TotalRatingAsUser, user.CountRatingAsUser, user.AvgRatingAsUser = total, count, avg
	}
	return nil
}

func (f *fakeStore) seedUser(name string, roles ...string) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	f.users[id] = &models.User{ID: id, Name: name, Roles: roles}
	return id
}

// seedCompletedOrder installs an order in completed state together with its
// history row, as the order service leaves them.
func (f *fakeStore) seedCompletedOrder(code string, customerID, stukerID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	sid := stukerID
	f.orders[code] = &models.Order{
		ID:          primitive.NewObjectID(),
		OrderID:     code,
		CustomerID:  customerID,
		StukerID:    &sid,
		Status:      models.StatusCompleted,
		CompletedAt: &now,
	}
	f.history[code] = &models.OrderHistory{
		ID:          primitive.NewObjectID(),
		OrderID:     code,
		CustomerID:  customerID,
		StukerID:    stukerID,
		CompletedAt: now,
	}
}

func (f *fakeStore) seedOngoingOrder(code string, customerID, stukerID primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sid := stukerID
	f.orders[code] = &models.Order{
		ID:         primitive.NewObjectID(),
		OrderID:    code,
		CustomerID: customerID,
		StukerID:   &sid,
		Status:     models.StatusOngoing,
	}
}

func TestSubmitUpdatesRateeAggregate(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleUser, models.RoleStuker)
	store.seedCompletedOrder("ORDER001", customer, stuker)
	svc := NewService(store)

	result, err := svc.Submit(context.Background(), "ORDER001", customer, 5, "fast and friendly")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Ratee.Avg != 5.0 || result.Ratee.Count != 1 {
		t.Errorf("ratee aggregate = %+v, want avg 5.0 count 1", result.Ratee)
	}

	ratee, _ := store.UserByID(context.Background(), stuker)
	if ratee.AvgRatingAsStuker != 5.0 || ratee.CountRatingAsStuker != 1 {
		t.Errorf("stored stuker aggregate = %v/%d", ratee.AvgRatingAsStuker, ratee.CountRatingAsStuker)
	}
	if ratee.AvgRatingAsUser != 0 || ratee.CountRatingAsUser != 0 {
		t.Errorf("customer-role aggregate touched: %v/%d", ratee.AvgRatingAsUser, ratee.CountRatingAsUser)
	}
}

func TestSubmitDuplicate(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleStuker)
	store.seedCompletedOrder("ORDER001", customer, stuker)
	svc := NewService(store)

	if _, err := svc.Submit(context.Background(), "ORDER001", customer, 5, ""); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "ORDER001", customer, 1, ""); !errors.Is(err, models.ErrAlreadyRated) {
		t.Fatalf("second Submit err = %v, want ErrAlreadyRated", err)
	}

	// The rejected second submission must not have touched the aggregate.
	ratee, _ := store.UserByID(context.Background(), stuker)
	if ratee.AvgRatingAsStuker != 5.0 || ratee.CountRatingAsStuker != 1 {
		t.Errorf("aggregate after duplicate = %v/%d, want 5.0/1", ratee.AvgRatingAsStuker, ratee.CountRatingAsStuker)
	}
}

func TestSubmitOrderIndependence(t *testing.T) {
	run := func(t *testing.T, customerFirst bool) {
		store := newFakeStore()
		customer := store.seedUser("Budi", models.RoleUser)
		stuker := store.seedUser("Siti", models.RoleStuker)
		store.seedCompletedOrder("ORDER001", customer, stuker)
		svc := NewService(store)

		submitCustomer := func() {
			if _, err := svc.Submit(context.Background(), "ORDER001", customer, 5, ""); err != nil {
				t.Fatalf("customer Submit: %v", err)
			}
		}
		submitStuker := func() {
			if _, err := svc.Submit(context.Background(), "ORDER001", stuker, 4, ""); err != nil {
				t.Fatalf("stuker Submit: %v", err)
			}
		}
		if customerFirst {
			submitCustomer()
			submitStuker()
		} else {
			submitStuker()
			submitCustomer()
		}

		c, _ := store.UserByID(context.Background(), customer)
		s, _ := store.UserByID(context.Background(), stuker)
		if s.AvgRatingAsStuker != 5.0 || s.CountRatingAsStuker != 1 {
			t.Errorf("stuker aggregate = %v/%d, want 5.0/1", s.AvgRatingAsStuker, s.CountRatingAsStuker)
		}
		if c.AvgRatingAsUser != 4.0 || c.CountRatingAsUser != 1 {
			t.Errorf("customer aggregate = %v/%d, want 4.0/1", c.AvgRatingAsUser, c.CountRatingAsUser)
		}
	}

	t.Run("customer first", func(t *testing.T) { run(t, true) })
	t.Run("stuker first", func(t *testing.T) { run(t, false) })
}

func TestSubmitRejectsIncompleteOrder(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleStuker)
	store.seedOngoingOrder("ORDER001", customer, stuker)
	svc := NewService(store)

	if _, err := svc.Submit(context.Background(), "ORDER001", customer, 5, ""); !errors.Is(err, models.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestSubmitRejectsOutsider(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleStuker)
	outsider := store.seedUser("Andi", models.RoleUser)
	store.seedCompletedOrder("ORDER001", customer, stuker)
	svc := NewService(store)

	if _, err := svc.Submit(context.Background(), "ORDER001", outsider, 5, ""); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestSubmitStarsRange(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleStuker)
	store.seedCompletedOrder("ORDER001", customer, stuker)
	svc := NewService(store)

	for _, stars := range []int{0, 6, -1} {
		if _, err := svc.Submit(context.Background(), "ORDER001", customer, stars, ""); !errors.Is(err, models.ErrValidation) {
			t.Errorf("stars %d: err = %v, want ErrValidation", stars, err)
		}
	}
}

func TestRecomputeAveragesAcrossOrders(t *testing.T) {
	store := newFakeStore()
	stuker := store.seedUser("Siti", models.RoleStuker)
	svc := NewService(store)

	for i, stars := range []int{5, 4, 4} {
		code := string(rune('A'+i)) + "RDER001"
		customer := store.seedUser("Customer", models.RoleUser)
		store.seedCompletedOrder(code, customer, stuker)
		if _, err := svc.Submit(context.Background(), code, customer, stars, ""); err != nil {
			t.Fatalf("Submit %s: %v", code, err)
		}
	}

	user, _ := store.UserByID(context.Background(), stuker)
	if user.CountRatingAsStuker != 3 || user.TotalRatingAsStuker != 13 {
		t.Errorf("aggregate = total %d count %d, want 13/3", user.TotalRatingAsStuker, user.CountRatingAsStuker)
	}
	if user.AvgRatingAsStuker != 4.3 {
		t.Errorf("avg = %v, want 4.3 (13/3 rounded to one decimal)", user.AvgRatingAsStuker)
	}
}

func TestRatingContext(t *testing.T) {
	store := newFakeStore()
	customer := store.seedUser("Budi", models.RoleUser)
	stuker := store.seedUser("Siti", models.RoleStuker)
	outsider := store.seedUser("Andi", models.RoleUser)
	store.seedCompletedOrder("ORDER001", customer, stuker)
	store.seedOngoingOrder("ORDER002", customer, stuker)
	svc := NewService(store)

	ctx, err := svc.RatingContext(context.Background(), "ORDER001", customer)
	if err != nil {
		t.Fatalf("RatingContext: %v", err)
	}
	if ctx.RateeName != "Siti" {
		t.Errorf("ratee = %q, want Siti", ctx.RateeName)
	}

	if _, err := svc.RatingContext(context.Background(), "ORDER002", customer); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("incomplete order err = %v, want ErrNotFound", err)
	}
	if _, err := svc.RatingContext(context.Background(), "ORDER001", outsider); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("outsider err = %v, want ErrForbidden", err)
	}
}

func TestReceivedPagination(t *testing.T) {
	store := newFakeStore()
	stuker := store.seedUser("Siti", models.RoleStuker)
	svc := NewService(store)

	base := time.Now()
	for i := 0; i < 5; i++ {
		store.ratings[primitive.NewObjectID().Hex()] = &models.Rating{
			OrderID:   primitive.NewObjectID(),
			RaterID:   primitive.NewObjectID(),
			RateeID:   stuker,
			Stars:     5 - i%2,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}

	page, total, err := svc.Received(context.Background(), stuker, 1, 2)
	if err != nil {
		t.Fatalf("Received: %v", err)
	}
	if total != 5 || len(page) != 2 {
		t.Fatalf("total = %d, page size = %d, want 5 and 2", total, len(page))
	}
	// Newest first.
	if !page[0].CreatedAt.After(page[1].CreatedAt) {
		t.Error("page not ordered newest first")
	}

	last, _, err := svc.Received(context.Background(), stuker, 3, 2)
	if err != nil {
		t.Fatalf("Received page 3: %v", err)
	}
	if len(last) != 1 {
		t.Errorf("last page size = %d, want 1", len(last))
	}
}
