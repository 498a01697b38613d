package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RecipientID uuid.UUID         `gorm:"not null;index:idx_notifications_recipient"`
	SenderID    *uuid.UUID        `gorm:"type:uuid"`
	Type        string            `gorm:"not null;check:type IN ('message','call','announcement','system')"`
	Title       string            `gorm:"not null"`
	Message     string            `gorm:"not null"`
	Data        map[string]string `gorm:"serializer:json"`
	IsRead      bool              `gorm:"default:false;index"`
	CreatedAt   time.Time         `gorm:"index:idx_notifications_recipient"`

	// Связи
	Sender *User `gorm:"foreignKey:SenderID"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
