package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/handlers/dto"
	"github.com/thereayou/campuslink/internal/middleware"
	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/services"
	ws "github.com/thereayou/campuslink/internal/websocket"
)

type MessageHandler struct {
	messages      *services.MessageService
	notifications *services.NotificationService
	hub           *ws.Hub
}

func NewMessageHandler(messages *services.MessageService, notifications *services.NotificationService, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{messages: messages, notifications: notifications, hub: hub}
}

// CreateMessage — HTTP-путь отправки (альтернатива WebSocket)
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		ConversationID string              `json:"conversation_id" binding:"required"`
		Content        string              `json:"content" binding:"required"`
		Type           string              `json:"type"`
		Attachments    []models.Attachment `json:"attachments"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	convID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	message, conv, err := h.messages.Create(userID, services.CreateMessageInput{
		ConversationID: convID,
		Content:        req.Content,
		Type:           req.Type,
		Attachments:    req.Attachments,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	fanoutNewMessage(h.hub, h.notifications, message, conv)

	c.JSON(http.StatusCreated, dto.NewMessageResponse(message))
}

// fanoutNewMessage рассылает события после успешного сохранения;
// общий для REST-пути и send-message по WebSocket.
// Доставка best-effort: отсутствие получателей не откатывает операцию
func fanoutNewMessage(hub *ws.Hub, notifications *services.NotificationService, message *models.Message, conv *models.Conversation) {
	resp := dto.NewMessageResponse(message)

	if data, err := ws.Encode(ws.EventNewMessage, resp); err == nil {
		hub.SendToRoom(ws.ConversationRoom(conv.ID), data)
	}

	convData, err := ws.Encode(ws.EventConversationUpdated, dto.NewConversationResponse(conv))

	for _, p := range conv.OtherParticipants(message.SenderID) {
		if err == nil {
			hub.SendToUser(p.ID, convData)
		}

		// Офлайн-участникам — push через побочный канал
		if !hub.IsOnline(p.ID) {
			sender := message.Sender
			if _, err := notifications.Notify(services.NotifyInput{
				RecipientID: p.ID,
				SenderID:    &message.SenderID,
				Type:        "message",
				Title:       "New message from " + sender.FullName(),
				Message:     preview(message.Content),
				Data: map[string]string{
					"type":            "new_message",
					"conversation_id": conv.ID.String(),
				},
			}); err != nil {
				log.Printf("Message notification for %s failed: %v", p.ID, err)
			}
		}
	}
}

func preview(content string) string {
	if len(content) > 100 {
		return content[:100] + "..."
	}
	return content
}

// GetMessages получает историю сообщений беседы
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	convID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if b := c.Query("before"); b != "" {
		if parsed, err := time.Parse(time.RFC3339, b); err == nil {
			before = &parsed
		}
	}

	messages, err := h.messages.List(convID, userID, limit, before)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, dto.NewMessageResponse(&messages[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}

// DeleteMessage — мягкое удаление с рассылкой по комнате беседы
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	message, err := h.messages.Delete(messageID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := ws.Encode(ws.EventMessageDeleted, gin.H{
		"message_id":      message.ID,
		"conversation_id": message.ConversationID,
	}); err == nil {
		h.hub.SendToRoom(ws.ConversationRoom(message.ConversationID), data)
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// MarkRead отмечает сообщения прочитанными; повторная отметка — no-op
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		MessageIDs     []string `json:"message_ids" binding:"required"`
		ConversationID string   `json:"conversation_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	convID, err := uuid.Parse(req.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	messageIDs := make([]uuid.UUID, 0, len(req.MessageIDs))
	for _, raw := range req.MessageIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
			return
		}
		messageIDs = append(messageIDs, id)
	}

	if err := h.messages.MarkAsRead(userID, messageIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark messages read"})
		return
	}

	if data, err := ws.Encode(ws.EventMessagesRead, gin.H{
		"message_ids":     messageIDs,
		"user_id":         userID,
		"conversation_id": convID,
	}); err == nil {
		h.hub.SendToRoom(ws.ConversationRoom(convID), data)
	}

	c.JSON(http.StatusOK, gin.H{"message": "messages marked as read"})
}
