package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CallType string

const (
	CallAudio CallType = "audio"
	CallVideo CallType = "video"
)

func (t CallType) Valid() bool {
	return t == CallAudio || t == CallVideo
}

type CallStatus string

const (
	CallOngoing CallStatus = "ongoing"
	CallEnded   CallStatus = "ended"
	CallMissed  CallStatus = "missed"
)

// Terminal: из ended и missed переходов нет
func (s CallStatus) Terminal() bool {
	return s == CallEnded || s == CallMissed
}

// callTransitions — таблица допустимых переходов статуса звонка
var callTransitions = map[CallStatus][]CallStatus{
	CallOngoing: {CallEnded, CallMissed},
}

type Call struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID  `gorm:"not null;index"`
	InitiatorID    uuid.UUID  `gorm:"not null;index"`
	Type           CallType   `gorm:"not null"`
	Status         CallStatus `gorm:"default:'ongoing'"`
	ChannelName    string     `gorm:"not null"`
	StartTime      time.Time
	EndTime        *time.Time
	Duration       int `gorm:"default:0"` // секунды

	// Связи
	Initiator    User   `gorm:"foreignKey:InitiatorID"`
	Participants []User `gorm:"many2many:call_participants"`
}

func (c *Call) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.StartTime.IsZero() {
		c.StartTime = time.Now()
	}
	return nil
}

// CanTransition проверяет переход по таблице, единая точка для всех guard-ов
func (c *Call) CanTransition(to CallStatus) bool {
	for _, next := range callTransitions[c.Status] {
		if next == to {
			return true
		}
	}
	return false
}

func (c *Call) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
