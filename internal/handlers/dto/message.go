package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/models"
)

type UserInfo struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
	}
}

type MessageResponse struct {
	ID             uuid.UUID           `json:"id"`
	ConversationID uuid.UUID           `json:"conversation_id"`
	SenderID       uuid.UUID           `json:"sender_id"`
	Content        string              `json:"content"`
	Type           string              `json:"type"`
	IsDeleted      bool                `json:"is_deleted"`
	Attachments    []models.Attachment `json:"attachments"`
	ReadBy         []uuid.UUID         `json:"read_by"`
	CreatedAt      time.Time           `json:"created_at"`
	Sender         UserInfo            `json:"sender"`
}

func NewMessageResponse(m *models.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Type:           m.Type,
		IsDeleted:      m.IsDeleted,
		Attachments:    m.Attachments,
		ReadBy:         m.ReadBy(),
		CreatedAt:      m.CreatedAt,
		Sender:         NewUserInfo(&m.Sender),
	}
}

type ConversationResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name,omitempty"`
	Type            string     `json:"type"`
	Avatar          string     `json:"avatar,omitempty"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	Participants    []UserInfo `json:"participants"`
	CreatedAt       time.Time  `json:"created_at"`
}

func NewConversationResponse(c *models.Conversation) ConversationResponse {
	participants := make([]UserInfo, 0, len(c.Participants))
	for i := range c.Participants {
		participants = append(participants, NewUserInfo(&c.Participants[i]))
	}

	return ConversationResponse{
		ID:              c.ID,
		Name:            c.Name,
		Type:            c.Type,
		Avatar:          c.Avatar,
		LastMessage:     c.LastMessage,
		LastMessageTime: c.LastMessageTime,
		Participants:    participants,
		CreatedAt:       c.CreatedAt,
	}
}
