package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"backend/internal/chat"
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/orders"
	"backend/internal/ratings"
	"backend/internal/realtime"
	"backend/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureHistoryIndexes(db); err != nil {
		log.Printf("⚠️ history index warning: %v", err)
	}
	if err := database.EnsureRatingIndexes(db); err != nil {
		log.Printf("⚠️ rating index warning: %v", err)
	}
	if err := database.EnsureChatIndexes(db); err != nil {
		log.Printf("⚠️ chat index warning: %v", err)
	}

	st := store.New(db)
	hub := realtime.NewHub()
	orderSvc := orders.NewService(st, hub)
	ratingSvc := ratings.NewService(st)
	chatSvc := chat.NewService(st, hub)

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.String(200, "OK")
	})

	r.POST("/auth/register", handlers.Register(st))
	r.POST("/auth/login", handlers.Login(st, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/logout", handlers.Logout())

	auth := r.Group("/")
	auth.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		auth.POST("/auth/switch-role", handlers.SwitchRole(st, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

		auth.GET("/profile", handlers.GetProfile(st, ratingSvc))
		auth.PUT("/profile", handlers.UpdateProfile(st))

		auth.POST("/orders", handlers.CreateOrder(orderSvc))
		auth.GET("/orders/available", handlers.ListAvailableOrders(orderSvc))
		auth.GET("/orders/history", handlers.OrderHistory(orderSvc))
		auth.PATCH("/orders/:id/accept", middleware.RequireRole(models.RoleStuker), handlers.AcceptOrder(orderSvc))
		auth.PATCH("/orders/:id/done", handlers.CompleteOrder(orderSvc))
		auth.PATCH("/orders/:id/cancel", handlers.CancelOrder(orderSvc))
		auth.GET("/orders/:id", handlers.GetOrderDetails(orderSvc))

		auth.GET("/orders/:id/chat", handlers.GetChatMessages(chatSvc))
		auth.POST("/orders/:id/chat", handlers.SendChatMessage(chatSvc))

		auth.POST("/ratings", handlers.SubmitRating(ratingSvc))
		auth.GET("/ratings/order/:orderId", handlers.GetOrderRatingContext(ratingSvc))
		auth.GET("/ratings/user/:userId", handlers.GetUserRating(ratingSvc))

		auth.GET("/events", handlers.StreamEvents(hub, chatSvc))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
