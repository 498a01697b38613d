package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/services"
	ws "github.com/thereayou/campuslink/internal/websocket"
)

// SocketRouter разбирает события клиента и выполняет их.
// Все мутации идут через сервисы: WebSocket — только транспорт
type SocketRouter struct {
	conversations *services.ConversationService
	messages      *services.MessageService
	notifications *services.NotificationService
	hub           *ws.Hub
}

func NewSocketRouter(conversations *services.ConversationService, messages *services.MessageService, notifications *services.NotificationService, hub *ws.Hub) *SocketRouter {
	return &SocketRouter{
		conversations: conversations,
		messages:      messages,
		notifications: notifications,
		hub:           hub,
	}
}

func (r *SocketRouter) HandleMessage(client *ws.Client, msg *ws.Message) error {
	switch msg.Event {
	case ws.EventJoinConversation:
		return r.joinConversation(client, msg)
	case ws.EventLeaveConversation:
		return r.leaveConversation(client, msg)
	case ws.EventSendMessage:
		return r.sendMessage(client, msg)
	case ws.EventTypingStart:
		return r.typing(client, msg, ws.EventUserTyping)
	case ws.EventTypingStop:
		return r.typing(client, msg, ws.EventUserStoppedTyping)
	case ws.EventMessageRead:
		return r.messageRead(client, msg)
	case ws.EventJoinCall:
		return r.joinCallRoom(client, msg)
	case ws.EventLeaveCall:
		return r.leaveCallRoom(client, msg)
	case ws.EventCallInitiate, ws.EventCallAccept, ws.EventCallReject, ws.EventCallEnd:
		return r.legacySignal(client, msg)
	case ws.EventPing:
		return client.SendEvent(ws.EventPong, nil)
	default:
		return ws.ErrInvalidEvent
	}
}

type conversationPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

// joinConversation пускает в комнату только участника беседы
func (r *SocketRouter) joinConversation(client *ws.Client, msg *ws.Message) error {
	var p conversationPayload
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	if _, err := r.conversations.Get(p.ConversationID, client.UserID); err != nil {
		return err
	}

	r.hub.JoinRoom(client, ws.ConversationRoom(p.ConversationID))
	return nil
}

func (r *SocketRouter) leaveConversation(client *ws.Client, msg *ws.Message) error {
	var p conversationPayload
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	r.hub.LeaveRoom(client, ws.ConversationRoom(p.ConversationID))
	return nil
}

func (r *SocketRouter) sendMessage(client *ws.Client, msg *ws.Message) error {
	var p struct {
		ConversationID uuid.UUID           `json:"conversation_id"`
		Content        string              `json:"content"`
		Type           string              `json:"type"`
		Attachments    []models.Attachment `json:"attachments"`
	}
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	message, conv, err := r.messages.Create(client.UserID, services.CreateMessageInput{
		ConversationID: p.ConversationID,
		Content:        p.Content,
		Type:           p.Type,
		Attachments:    p.Attachments,
	})
	if err != nil {
		return err
	}

	fanoutNewMessage(r.hub, r.notifications, message, conv)
	return nil
}

// typing ретранслируется только по комнате: печать вне открытой
// беседы никого не интересует, в базу не пишем
func (r *SocketRouter) typing(client *ws.Client, msg *ws.Message, event ws.EventType) error {
	var p conversationPayload
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	room := ws.ConversationRoom(p.ConversationID)
	if !client.IsInRoom(room) {
		return ws.ErrNotInRoom
	}

	data, err := ws.Encode(event, map[string]interface{}{
		"conversation_id": p.ConversationID,
		"user_id":         client.UserID,
	})
	if err != nil {
		return err
	}

	r.hub.SendToRoomExcept(room, client.UserID, data)
	return nil
}

func (r *SocketRouter) messageRead(client *ws.Client, msg *ws.Message) error {
	var p struct {
		ConversationID uuid.UUID   `json:"conversation_id"`
		MessageIDs     []uuid.UUID `json:"message_ids"`
	}
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	if err := r.messages.MarkAsRead(client.UserID, p.MessageIDs); err != nil {
		return err
	}

	data, err := ws.Encode(ws.EventMessageReadUpdate, map[string]interface{}{
		"conversation_id": p.ConversationID,
		"message_ids":     p.MessageIDs,
		"user_id":         client.UserID,
	})
	if err != nil {
		return err
	}

	r.hub.SendToRoom(ws.ConversationRoom(p.ConversationID), data)
	return nil
}

type callPayload struct {
	CallID uuid.UUID `json:"call_id"`
}

// joinCallRoom подписывает соединение на сигналинг звонка.
// Членство в самом звонке оформляется через REST join
func (r *SocketRouter) joinCallRoom(client *ws.Client, msg *ws.Message) error {
	var p callPayload
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	r.hub.JoinRoom(client, ws.CallRoom(p.CallID))
	return nil
}

func (r *SocketRouter) leaveCallRoom(client *ws.Client, msg *ws.Message) error {
	var p callPayload
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	r.hub.LeaveRoom(client, ws.CallRoom(p.CallID))
	return nil
}

// legacySignal — сквозная ретрансляция сигналинга для старых клиентов,
// которые не перешли на REST-эндпоинты звонков. Состояние звонка в базе
// эти события не трогают
func (r *SocketRouter) legacySignal(client *ws.Client, msg *ws.Message) error {
	var p struct {
		ConversationID uuid.UUID `json:"conversation_id"`
		To             uuid.UUID `json:"to"`
	}
	if err := msg.UnmarshalData(&p); err != nil {
		return err
	}

	var out ws.EventType
	switch msg.Event {
	case ws.EventCallInitiate:
		out = ws.EventIncomingCall
	case ws.EventCallAccept:
		out = ws.EventCallAccepted
	case ws.EventCallReject:
		out = ws.EventCallRejected
	case ws.EventCallEnd:
		out = ws.EventCallEnded
	default:
		return ws.ErrInvalidEvent
	}

	// Payload уходит как есть, меняются только тип события и отправитель
	forwarded := ws.Message{
		Event:     out,
		UserID:    client.UserID,
		Data:      msg.Data,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(forwarded)
	if err != nil {
		return err
	}

	if p.To != uuid.Nil {
		r.hub.SendToUser(p.To, data)
		return nil
	}

	if p.ConversationID != uuid.Nil {
		conv, err := r.conversations.Get(p.ConversationID, client.UserID)
		if err != nil {
			return err
		}
		for _, other := range conv.OtherParticipants(client.UserID) {
			r.hub.SendToUser(other.ID, data)
		}
		return nil
	}

	return ws.ErrInvalidEvent
}
