package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/middleware"
	ws "github.com/thereayou/campuslink/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS решается на уровне reverse proxy
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	db     *database.Database
	router *SocketRouter
}

func NewWebSocketHandler(hub *ws.Hub, db *database.Database, router *SocketRouter) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, db: db, router: router}
}

// HandleWebSocket апгрейдит соединение и запускает пампы клиента
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(userID.String())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is deactivated"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.router)
}
