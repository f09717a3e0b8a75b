package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"backend/internal/middleware"
	"backend/internal/ratings"
)

type submitRatingRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func SubmitRating(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /ratings"
		defer handlePanic(c, route)

		var req submitRatingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		result, err := svc.Submit(ctx, req.OrderID, userID, req.Stars, req.Comment)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "rating saved", "data": result})
	}
}

func GetOrderRatingContext(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /ratings/order/:orderId"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.RatingContext(ctx, c.Param("orderId"), userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": data})
	}
}

func GetUserRating(svc *ratings.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /ratings/user/:userId"
		defer handlePanic(c, route)

		userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		data, err := svc.UserRating(ctx, userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": data})
	}
}
