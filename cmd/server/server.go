package server

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/handlers"
	"github.com/thereayou/campuslink/internal/push"
	"github.com/thereayou/campuslink/internal/rtc"
	"github.com/thereayou/campuslink/internal/services"
	ws "github.com/thereayou/campuslink/internal/websocket"
	"github.com/thereayou/campuslink/pkg/auth"
)

type Server struct {
	Router     *gin.Engine
	DB         *database.Database
	Redis      *redis.Client
	JWTManager *auth.JWTManager
	Hub        *ws.Hub

	AuthH         *handlers.AuthHandler
	UserH         *handlers.UserHandler
	ConvH         *handlers.ConversationHandler
	MessageH      *handlers.MessageHandler
	CallH         *handlers.CallHandler
	NotificationH *handlers.NotificationHandler
	WebSocketH    *handlers.WebSocketHandler
}

func NewServer() *Server {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println(".env not found, using environment variables")
		}
	}

	dbConn := &database.Database{}
	if err := dbConn.Connect(); err != nil {
		log.Fatalf("Postgres connect failed: %v", err)
	}

	redisOpts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}

	jwtMgr := auth.NewJWTManager(
		os.Getenv("JWT_SECRET"),
		24*time.Hour,
	)

	hub := ws.NewHub()
	// Один Redis обслуживает и блэклист токенов, и межпроцессную шину
	backplane := ws.NewRedisBackplane(rdb)
	hub.SetBackplane(backplane)
	backplane.Run(context.Background(), hub)
	go hub.Run()

	tokens := rtc.NewIssuer(
		os.Getenv("AGORA_APP_ID"),
		os.Getenv("AGORA_APP_CERTIFICATE"),
		time.Hour,
	)

	dispatcher, err := push.NewDispatcher(context.Background(), os.Getenv("FIREBASE_CREDENTIALS"), dbConn)
	if err != nil {
		log.Fatalf("Firebase init failed: %v", err)
	}

	convSvc := services.NewConversationService(dbConn)
	messageSvc := services.NewMessageService(dbConn)
	notificationSvc := services.NewNotificationService(dbConn, dispatcher)
	callSvc := services.NewCallService(dbConn, tokens)

	socketRouter := handlers.NewSocketRouter(convSvc, messageSvc, notificationSvc, hub)

	authH := handlers.NewAuthHandler(dbConn, jwtMgr, rdb)
	userH := handlers.NewUserHandler(dbConn)
	convH := handlers.NewConversationHandler(convSvc)
	messageH := handlers.NewMessageHandler(messageSvc, notificationSvc, hub)
	callH := handlers.NewCallHandler(callSvc, notificationSvc, hub, tokens)
	notificationH := handlers.NewNotificationHandler(notificationSvc)
	wsH := handlers.NewWebSocketHandler(hub, dbConn, socketRouter)

	router := gin.Default()
	APIEndpoints(router, jwtMgr, rdb, authH, userH, convH, messageH, callH, notificationH, wsH)

	return &Server{
		Router:        router,
		DB:            dbConn,
		Redis:         rdb,
		JWTManager:    jwtMgr,
		Hub:           hub,
		AuthH:         authH,
		UserH:         userH,
		ConvH:         convH,
		MessageH:      messageH,
		CallH:         callH,
		NotificationH: notificationH,
		WebSocketH:    wsH,
	}
}

func (s *Server) Run() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server starting on port %s", port)
	if err := s.Router.Run(":" + port); err != nil {
		log.Fatalf("Server run error: %v", err)
	}
}
