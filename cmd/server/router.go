package server

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/thereayou/campuslink/internal/handlers"
	"github.com/thereayou/campuslink/internal/middleware"
	"github.com/thereayou/campuslink/pkg/auth"
)

func APIEndpoints(
	r *gin.Engine,
	jwtMgr *auth.JWTManager,
	rdb *redis.Client,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	convH *handlers.ConversationHandler,
	messageH *handlers.MessageHandler,
	callH *handlers.CallHandler,
	notificationH *handlers.NotificationHandler,
	wsH *handlers.WebSocketHandler,
) {
	// Auth endpoints
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/logout", middleware.AuthMiddleware(jwtMgr, rdb), authH.Logout)
	}

	// API endpoints
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtMgr, rdb))
	{
		api.GET("/users/me", userH.GetMe)
		api.PUT("/users/me/fcm-token", userH.UpdateFCMToken)

		api.POST("/conversations", convH.CreateConversation)
		api.GET("/conversations", convH.ListConversations)
		api.GET("/conversations/:id", convH.GetConversation)

		api.POST("/messages", messageH.CreateMessage)
		api.GET("/messages/:conversationId", messageH.GetMessages)
		api.DELETE("/messages/:id", messageH.DeleteMessage)
		api.POST("/messages/read", messageH.MarkRead)

		api.POST("/calls/initiate", callH.InitiateCall)
		api.POST("/calls/:id/join", callH.JoinCall)
		api.POST("/calls/:id/end", callH.EndCall)
		api.POST("/calls/:id/leave", callH.LeaveCall)
		api.POST("/calls/:id/decline", callH.DeclineCall)
		api.GET("/calls/history/:conversationId", callH.GetCallHistory)
		api.GET("/calls/active/:conversationId", callH.GetActiveCall)

		api.GET("/notifications", notificationH.GetNotifications)
		api.GET("/notifications/unread-count", notificationH.GetUnreadCount)
		api.PUT("/notifications/:id/read", notificationH.MarkNotificationRead)
	}

	// Токен для WebSocket приходит query-параметром: браузерный
	// WebSocket API не умеет выставлять заголовки
	r.GET("/ws", middleware.WSAuthMiddleware(jwtMgr, rdb), wsH.HandleWebSocket)
}
