package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/chat"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/realtime"
)

// StreamEvents is the SSE endpoint realtime clients attach to. Topic
// membership is verified before subscribing: order rooms require being a
// party, the stuker dashboard requires the stuker role, and per-stuker
// topics are self-only.
func StreamEvents(hub *realtime.Hub, chatSvc *chat.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /events"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		raw := strings.TrimSpace(c.Query("topics"))
		if raw == "" {
			respondWithError(c, http.StatusBadRequest, route, "topics is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		roles := middleware.Roles(c)
		topics := strings.Split(raw, ",")
		for _, topic := range topics {
			switch {
			case strings.HasPrefix(topic, "order:"):
				code := strings.TrimPrefix(topic, "order:")
				if err := chatSvc.CanJoin(ctx, code, userID); err != nil {
					respondDomainError(c, route, err)
					return
				}
			case topic == realtime.TopicStukerDashboard:
				if !hasRole(roles, models.RoleStuker) {
					respondWithError(c, http.StatusForbidden, route, "stuker role required")
					return
				}
			case topic == realtime.StukerTopic(userID.Hex()):
				// Always allowed: it is the caller's own topic.
			default:
				respondWithError(c, http.StatusBadRequest, route, "unknown topic: "+topic)
				return
			}
		}

		sub := hub.Subscribe(topics...)
		defer hub.Unsubscribe(sub)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case event, open := <-sub.Events:
				if !open {
					return false
				}
				c.SSEvent(event.Name, event.Payload)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
