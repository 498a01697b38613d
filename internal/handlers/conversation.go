package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/handlers/dto"
	"github.com/thereayou/campuslink/internal/middleware"
	"github.com/thereayou/campuslink/internal/services"
)

type ConversationHandler struct {
	conversations *services.ConversationService
}

func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// CreateConversation создает групповую беседу или возвращает личную
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Type          string   `json:"type" binding:"required,oneof=direct group"`
		ParticipantID string   `json:"participant_id"`
		Name          string   `json:"name"`
		MemberIDs     []string `json:"member_ids"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type == "direct" {
		otherID, err := uuid.Parse(req.ParticipantID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
			return
		}

		conv, err := h.conversations.CreateDirect(userID, otherID)
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, dto.NewConversationResponse(conv))
		return
	}

	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group conversation requires a name"})
		return
	}

	memberIDs := make([]uuid.UUID, 0, len(req.MemberIDs))
	for _, raw := range req.MemberIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
			return
		}
		memberIDs = append(memberIDs, id)
	}

	conv, err := h.conversations.CreateGroup(userID, req.Name, memberIDs)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.NewConversationResponse(conv))
}

func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	convs, err := h.conversations.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get conversations"})
		return
	}

	result := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		result = append(result, dto.NewConversationResponse(&convs[i]))
	}

	c.JSON(http.StatusOK, gin.H{"conversations": result})
}

func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	convID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	conv, err := h.conversations.Get(convID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NewConversationResponse(conv))
}
