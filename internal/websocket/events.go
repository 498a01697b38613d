package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType определяет события протокола
type EventType string

const (
	// Системные
	EventPing  EventType = "ping"
	EventPong  EventType = "pong"
	EventError EventType = "error"

	// Клиент -> сервер
	EventJoinConversation  EventType = "join-conversation"
	EventLeaveConversation EventType = "leave-conversation"
	EventSendMessage       EventType = "send-message"
	EventTypingStart       EventType = "typing-start"
	EventTypingStop        EventType = "typing-stop"
	EventMessageRead       EventType = "message-read"
	EventJoinCall          EventType = "join-call"
	EventLeaveCall         EventType = "leave-call"

	// Легаси-сигналинг для старых клиентов без REST-эндпоинтов звонков
	EventCallInitiate EventType = "call-initiate"
	EventCallAccept   EventType = "call-accept"
	EventCallReject   EventType = "call-reject"
	EventCallEnd      EventType = "call-end"

	// Сервер -> клиент: сообщения
	EventNewMessage          EventType = "new-message"
	EventMessageDeleted      EventType = "message-deleted"
	EventMessagesRead        EventType = "messages-read"
	EventMessageReadUpdate   EventType = "message-read-update"
	EventUserTyping          EventType = "user-typing"
	EventUserStoppedTyping   EventType = "user-stopped-typing"
	EventConversationUpdated EventType = "conversation-updated"

	// Сервер -> клиент: звонки
	EventIncomingCall   EventType = "incoming-call"
	EventCallAccepted   EventType = "call-accepted"
	EventCallRejected   EventType = "call-rejected"
	EventUserJoinedCall EventType = "user-joined-call"
	EventUserLeftCall   EventType = "user-left-call"
	EventCallEnded      EventType = "call-ended"
	EventCallDeclined   EventType = "call-declined"
)

type Message struct {
	Event     EventType       `json:"event"`
	UserID    uuid.UUID       `json:"user_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Encode собирает событие в проводной формат
func Encode(event EventType, data interface{}) ([]byte, error) {
	msg := Message{
		Event:     event,
		Timestamp: time.Now(),
	}

	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = jsonData
	}

	return json.Marshal(msg)
}
