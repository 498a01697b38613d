package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/handlers/dto"
	"github.com/thereayou/campuslink/internal/middleware"
	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/rtc"
	"github.com/thereayou/campuslink/internal/services"
	ws "github.com/thereayou/campuslink/internal/websocket"
)

type CallHandler struct {
	calls         *services.CallService
	notifications *services.NotificationService
	hub           *ws.Hub
	appID         string
}

func NewCallHandler(calls *services.CallService, notifications *services.NotificationService, hub *ws.Hub, tokens rtc.TokenIssuer) *CallHandler {
	return &CallHandler{calls: calls, notifications: notifications, hub: hub, appID: tokens.AppID()}
}

func (h *CallHandler) sessionResponse(s *services.CallSession) dto.CallSessionResponse {
	return dto.CallSessionResponse{
		Call:        dto.NewCallResponse(s.Call),
		AgoraToken:  s.Token,
		ChannelName: s.ChannelName,
		UID:         s.UID,
		AppID:       h.appID,
	}
}

// InitiateCall создает звонок и зовет остальных участников беседы
func (h *CallHandler) InitiateCall(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		ConversationID string `json:"conversation_id" binding:"required"`
		Type           string `json:"type" binding:"required"`
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

	session, conv, err := h.calls.Initiate(userID, convID, models.CallType(req.Type))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.fanoutIncomingCall(session.Call, conv, userID)

	c.JSON(http.StatusCreated, h.sessionResponse(session))
}

// fanoutIncomingCall шлет приглашение в личные комнаты и в комнату
// беседы; офлайн-участникам дублирует его push-уведомлением
func (h *CallHandler) fanoutIncomingCall(call *models.Call, conv *models.Conversation, initiatorID uuid.UUID) {
	payload := gin.H{
		"call":            dto.NewCallResponse(call),
		"conversation_id": conv.ID,
		"caller":          dto.NewUserInfo(&call.Initiator),
	}

	data, err := ws.Encode(ws.EventIncomingCall, payload)
	if err != nil {
		return
	}

	h.hub.SendToRoomExcept(ws.ConversationRoom(conv.ID), initiatorID, data)

	for _, p := range conv.OtherParticipants(initiatorID) {
		h.hub.SendToUser(p.ID, data)

		if !h.hub.IsOnline(p.ID) {
			callLabel := "Audio call"
			if call.Type == models.CallVideo {
				callLabel = "Video call"
			}
			if _, err := h.notifications.Notify(services.NotifyInput{
				RecipientID: p.ID,
				SenderID:    &call.InitiatorID,
				Type:        "call",
				Title:       "Incoming call",
				Message:     callLabel + " from " + call.Initiator.FullName(),
				Data: map[string]string{
					"type":            "incoming_call",
					"call_id":         call.ID.String(),
					"conversation_id": conv.ID.String(),
					"call_type":       string(call.Type),
				},
			}); err != nil {
				log.Printf("Call notification for %s failed: %v", p.ID, err)
			}
		}
	}
}

// JoinCall добавляет пользователя в ongoing-звонок и выдает токен
func (h *CallHandler) JoinCall(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	session, err := h.calls.Join(callID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := ws.Encode(ws.EventUserJoinedCall, gin.H{
		"call_id": callID,
		"user_id": userID,
	}); err == nil {
		h.hub.SendToRoomExcept(ws.CallRoom(callID), userID, data)
	}

	c.JSON(http.StatusOK, h.sessionResponse(session))
}

// EndCall завершает звонок для всех; доступно любому участнику
func (h *CallHandler) EndCall(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	call, err := h.calls.End(callID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := ws.Encode(ws.EventCallEnded, gin.H{
		"call_id":  call.ID,
		"ended_by": userID,
		"duration": call.Duration,
	}); err == nil {
		h.hub.SendToRoom(ws.CallRoom(call.ID), data)
		h.hub.SendToRoom(ws.ConversationRoom(call.ConversationID), data)
	}

	c.JSON(http.StatusOK, dto.NewCallResponse(call))
}

// LeaveCall выводит участника; пустой звонок завершается сам
func (h *CallHandler) LeaveCall(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	call, err := h.calls.Leave(callID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := ws.Encode(ws.EventUserLeftCall, gin.H{
		"call_id": call.ID,
		"user_id": userID,
	}); err == nil {
		h.hub.SendToRoom(ws.CallRoom(call.ID), data)
	}

	if call.Status == models.CallEnded {
		if data, err := ws.Encode(ws.EventCallEnded, gin.H{
			"call_id":  call.ID,
			"ended_by": userID,
			"duration": call.Duration,
		}); err == nil {
			h.hub.SendToRoom(ws.ConversationRoom(call.ConversationID), data)
		}
	}

	c.JSON(http.StatusOK, dto.NewCallResponse(call))
}

// DeclineCall — отказ вызываемого; missed только если никто не вошел
func (h *CallHandler) DeclineCall(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid call id"})
		return
	}

	call, err := h.calls.Decline(callID, userID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := ws.Encode(ws.EventCallDeclined, gin.H{
		"call_id":     call.ID,
		"declined_by": userID,
	}); err == nil {
		h.hub.SendToRoom(ws.ConversationRoom(call.ConversationID), data)
	}

	c.JSON(http.StatusOK, dto.NewCallResponse(call))
}

// GetCallHistory — завершенные звонки беседы, новые первыми
func (h *CallHandler) GetCallHistory(c *gin.Context) {
	convID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	calls, err := h.calls.History(convID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get call history"})
		return
	}

	result := make([]dto.CallResponse, 0, len(calls))
	for i := range calls {
		result = append(result, dto.NewCallResponse(&calls[i]))
	}

	c.JSON(http.StatusOK, gin.H{"calls": result})
}

// GetActiveCall возвращает текущий ongoing-звонок беседы, если есть
func (h *CallHandler) GetActiveCall(c *gin.Context) {
	convID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	call, err := h.calls.Active(convID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get active call"})
		return
	}

	if call == nil {
		c.JSON(http.StatusOK, gin.H{"call": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"call": dto.NewCallResponse(call)})
}
