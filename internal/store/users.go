package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name           *string
	Phone          *string
	ProfilePicture *string
}

func (m *Mongo) InsertUser(ctx context.Context, user *models.User) error {
	res, err := m.db.Collection(collUsers).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (m *Mongo) UserByNIM(ctx context.Context, nim string) (*models.User, error) {
	var user models.User
	err := m.db.Collection(collUsers).FindOne(ctx, bson.M{"nim": strings.ToLower(nim)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by nim: %w", err)
	}
	return &user, nil
}

func (m *Mongo) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := m.db.Collection(collUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

func (m *Mongo) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = strings.TrimSpace(*update.Name)
	}
	if update.Phone != nil {
		set["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.ProfilePicture != nil {
		set["profilePicture"] = *update.ProfilePicture
	}

	res := m.db.Collection(collUsers).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		findAfter())
	var user models.User
	if err := res.Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

func (m *Mongo) GrantRole(ctx context.Context, id primitive.ObjectID, role string) error {
	_, err := m.db.Collection(collUsers).UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"role": role},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// SetRoleAggregate overwrites one role aggregate triple. Last writer wins:
// the values are always full recomputations from order_history, so a lost
// update self-heals on the next rating event.
func (m *Mongo) SetRoleAggregate(ctx context.Context, id primitive.ObjectID, role string, total, count int, avg float64) error {
	var set bson.M
	switch role {
	case models.RoleStuker:
		set = bson.M{
			"totalRatingAsStuker": total,
			"countRatingAsStuker": count,
			"avgRatingAsStuker":   avg,
		}
	case models.RoleUser:
		set = bson.M{
			"totalRatingAsUser": total,
			"countRatingAsUser": count,
			"avgRatingAsUser":   avg,
		}
	default:
		return fmt.Errorf("set aggregate: unknown role %q", role)
	}
	set["updatedAt"] = time.Now()

	_, err := m.db.Collection(collUsers).UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("set aggregate: %w", err)
	}
	return nil
}
