package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/store"
)

// UserStore is the identity surface the auth and profile handlers use.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	UserByNIM(ctx context.Context, nim string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GrantRole(ctx context.Context, id primitive.ObjectID, role string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update store.ProfileUpdate) (*models.User, error)
	OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
}

type RegisterRequest struct {
	NIM             string `json:"nim" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type LoginRequest struct {
	NIM      string `json:"nim" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SwitchRoleRequest struct {
	TargetRole string `json:"targetRole" binding:"required"`
}

func issueToken(userID primitive.ObjectID, roles []string, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID.Hex(),
		"roles":  roles,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func Register(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		nim := strings.ToLower(strings.TrimSpace(req.NIM))
		if len(nim) < 10 {
			respondWithError(c, http.StatusBadRequest, route, "nim must be at least 10 characters")
			return
		}
		if len(req.Password) < 8 {
			respondWithError(c, http.StatusBadRequest, route, "password must be at least 8 characters")
			return
		}
		if req.Password != req.ConfirmPassword {
			respondWithError(c, http.StatusBadRequest, route, "password confirmation does not match")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		user := &models.User{
			NIM:          nim,
			Name:         strings.TrimSpace(req.Name),
			Phone:        strings.TrimSpace(req.Phone),
			PasswordHash: string(hash),
			Roles:        []string{models.RoleUser},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.InsertUser(ctx, user); err != nil {
			if err == models.ErrConflict {
				respondWithError(c, http.StatusConflict, route, "nim already registered")
				return
			}
			respondDomainError(c, route, err)
			return
		}

		log.Println("[AUTH] [INFO] user registered:", nim)
		c.JSON(http.StatusCreated, gin.H{"message": "registration successful"})
	}
}

func Login(users UserStore, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.UserByNIM(ctx, strings.TrimSpace(req.NIM))
		if err != nil {
			log.Println("[AUTH] [ERROR] login unknown nim")
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid password for:", user.NIM)
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}

		token, err := issueToken(user.ID, user.Roles, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		orders, err := users.OrdersForUser(ctx, user.ID)
		if err != nil {
			log.Println("[AUTH] [ERROR] order lookup failed:", err)
			orders = nil
		}

		legacyAvg, legacyCount := user.LegacyAggregate()
		log.Println("[AUTH] [INFO] login succeeded:", user.NIM)
		c.JSON(http.StatusOK, gin.H{
			"message": "login successful",
			"token":   token,
			"role":    user.Roles,
			"users": gin.H{
				"id":                  user.ID.Hex(),
				"name":                user.Name,
				"phone":               user.Phone,
				"profile_picture":     user.ProfilePicture,
				"order_history":       orders,
				"avgRatingAsUser":     user.AvgRatingAsUser,
				"countRatingAsUser":   user.CountRatingAsUser,
				"avgRatingAsStuker":   user.AvgRatingAsStuker,
				"countRatingAsStuker": user.CountRatingAsStuker,
				"avgRating":           legacyAvg,
				"countRating":         legacyCount,
			},
		})
	}
}

// SwitchRole grants the target role on first use and re-issues the token
// with the updated role set.
func SwitchRole(users UserStore, jwtSecret string, accessTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/switch-role"
		defer handlePanic(c, route)

		var req SwitchRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.TargetRole != models.RoleUser && req.TargetRole != models.RoleStuker {
			respondWithError(c, http.StatusBadRequest, route, "invalid role")
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.UserByID(ctx, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		if !user.HasRole(req.TargetRole) {
			if err := users.GrantRole(ctx, userID, req.TargetRole); err != nil {
				respondDomainError(c, route, err)
				return
			}
			user.Roles = append(user.Roles, req.TargetRole)
		}

		token, err := issueToken(user.ID, user.Roles, jwtSecret, accessTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		log.Println("[AUTH] [INFO] role switch:", user.NIM, "->", req.TargetRole)
		c.JSON(http.StatusOK, gin.H{
			"message": "role switched",
			"token":   token,
			"role":    user.Roles,
		})
	}
}

// Logout is stateless: the bearer token simply expires client-side.
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}
