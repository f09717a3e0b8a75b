package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/ratings"
	"backend/internal/store"
)

type updateProfileRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	ProfilePicture *string `json:"profilePicture"`
}

func profilePayload(user *models.User) gin.H {
	legacyAvg, legacyCount := user.LegacyAggregate()
	picture := user.ProfilePicture
	if picture == "" {
		picture = models.DefaultProfilePicture
	}
	return gin.H{
		"id":                  user.ID.Hex(),
		"nim":                 user.NIM,
		"name":                user.Name,
		"phone":               user.Phone,
		"profilePicture":      picture,
		"role":                user.Roles,
		"avgRatingAsUser":     user.AvgRatingAsUser,
		"countRatingAsUser":   user.CountRatingAsUser,
		"avgRatingAsStuker":   user.AvgRatingAsStuker,
		"countRatingAsStuker": user.CountRatingAsStuker,
		"avgRating":           legacyAvg,
		"countRating":         legacyCount,
	}
}

func GetProfile(users UserStore, ratingSvc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /profile"
		defer handlePanic(c, route)

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

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		received, total, err := ratingSvc.Received(ctx, userID, page, limit)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		totalPages := 0
		if limit > 0 {
			totalPages = (total + limit - 1) / limit
		}

		c.JSON(http.StatusOK, gin.H{
			"user": profilePayload(user),
			"ratings": gin.H{
				"data": received,
				"pagination": gin.H{
					"currentPage":  page,
					"totalPages":   totalPages,
					"totalItems":   total,
					"itemsPerPage": limit,
				},
			},
		})
	}
}

func UpdateProfile(users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /profile"
		defer handlePanic(c, route)

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Name == nil && req.Phone == nil && req.ProfilePicture == nil {
			respondWithError(c, http.StatusBadRequest, route, "nothing to update")
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := users.UpdateProfile(ctx, userID, store.ProfileUpdate{
			Name:           req.Name,
			Phone:          req.Phone,
			ProfilePicture: req.ProfilePicture,
		})
		if err != nil {
			respondDomainError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "profile updated",
			"user":    profilePayload(user),
		})
	}
}
