package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser   = "user"
	RoleStuker = "stuker"
)

// DefaultProfilePicture is the placeholder served when a user has not
// uploaded a photo.
const DefaultProfilePicture = "/images/profilePhoto.png"

// User represents an account holder. A user may act as a customer
// (role "user"), as a courier (role "stuker"), or both; each role carries
// its own rating aggregate.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NIM            string             `bson:"nim" json:"nim"`
	Name           string             `bson:"name" json:"name"`
	Phone          string             `bson:"phone" json:"phone"`
	PasswordHash   string             `bson:"passwordHash" json:"-"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	Roles          []string           `bson:"role" json:"role"`

	// Aggregate of ratings received while acting as customer.
	TotalRatingAsUser int     `bson:"totalRatingAsUser" json:"totalRatingAsUser"`
	CountRatingAsUser int     `bson:"countRatingAsUser" json:"countRatingAsUser"`
	AvgRatingAsUser   float64 `bson:"avgRatingAsUser" json:"avgRatingAsUser"`

	// Aggregate of ratings received while acting as stuker.
	TotalRatingAsStuker int     `bson:"totalRatingAsStuker" json:"totalRatingAsStuker"`
	CountRatingAsStuker int     `bson:"countRatingAsStuker" json:"countRatingAsStuker"`
	AvgRatingAsStuker   float64 `bson:"avgRatingAsStuker" json:"avgRatingAsStuker"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// LegacyAggregate is the unified role-agnostic rating pair older clients
// still read. It is derived, never stored: the stuker aggregate wins when
// the user holds the stuker role, otherwise the customer aggregate applies.
func (u *User) LegacyAggregate() (avg float64, count int) {
	if u.HasRole(RoleStuker) {
		return u.AvgRatingAsStuker, u.CountRatingAsStuker
	}
	return u.AvgRatingAsUser, u.CountRatingAsUser
}

// RoundAverage computes total/count rounded to one decimal, 0 for an empty
// aggregate.
func RoundAverage(total, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(count)*10) / 10
}
