package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeletedMessageContent подставляется вместо текста при мягком удалении
const DeletedMessageContent = "This message was deleted"

type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type Message struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID    `gorm:"not null;index:idx_messages_conversation"`
	SenderID       uuid.UUID    `gorm:"not null;index"`
	Content        string       `gorm:"not null"`
	Type           string       `gorm:"default:'text';check:type IN ('text','image','file','system')"`
	IsDeleted      bool         `gorm:"default:false"`
	Attachments    []Attachment `gorm:"serializer:json"`
	CreatedAt      time.Time    `gorm:"index:idx_messages_conversation"`

	// Связи
	Sender User          `gorm:"foreignKey:SenderID"`
	Reads  []MessageRead `gorm:"foreignKey:MessageID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ReadBy собирает множество прочитавших в список id
func (m *Message) ReadBy() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.Reads))
	for _, r := range m.Reads {
		ids = append(ids, r.UserID)
	}
	return ids
}

func (m *Message) IsReadBy(userID uuid.UUID) bool {
	for _, r := range m.Reads {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// MessageRead — строка множества readBy; составной ключ делает отметку идемпотентной
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time
}
