package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/chat"
	"backend/internal/middleware"
)

type sendMessageRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

func GetChatMessages(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id/chat"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		messages, err := svc.Messages(ctx, c.Param("id"), userID)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": messages})
	}
}

func SendChatMessage(svc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/chat"
		defer handlePanic(c, route)

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		message, err := svc.Send(ctx, c.Param("id"), userID, req.Text, req.ImageURL)
		if err != nil {
			respondDomainError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": message})
	}
}
