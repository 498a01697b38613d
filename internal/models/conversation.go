package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Conversation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string
	Type            string `gorm:"not null;check:type IN ('direct','group')"`
	Avatar          string
	LastMessage     string
	LastMessageTime *time.Time
	CreatedBy       uuid.UUID
	CreatedAt       time.Time

	// Связи
	Participants []User    `gorm:"many2many:conversation_participants"`
	Messages     []Message `gorm:"foreignKey:ConversationID"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// OtherParticipants возвращает всех участников кроме указанного
func (c *Conversation) OtherParticipants(userID uuid.UUID) []User {
	others := make([]User, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.ID != userID {
			others = append(others, p)
		}
	}
	return others
}
