package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/models"
)

type CallResponse struct {
	ID             uuid.UUID         `json:"id"`
	ConversationID uuid.UUID         `json:"conversation_id"`
	InitiatorID    uuid.UUID         `json:"initiator_id"`
	Type           models.CallType   `json:"type"`
	Status         models.CallStatus `json:"status"`
	ChannelName    string            `json:"channel_name"`
	StartTime      time.Time         `json:"start_time"`
	EndTime        *time.Time        `json:"end_time,omitempty"`
	Duration       int               `json:"duration"`
	Initiator      UserInfo          `json:"initiator"`
	Participants   []UserInfo        `json:"participants"`
}

func NewCallResponse(c *models.Call) CallResponse {
	participants := make([]UserInfo, 0, len(c.Participants))
	for i := range c.Participants {
		participants = append(participants, NewUserInfo(&c.Participants[i]))
	}

	return CallResponse{
		ID:             c.ID,
		ConversationID: c.ConversationID,
		InitiatorID:    c.InitiatorID,
		Type:           c.Type,
		Status:         c.Status,
		ChannelName:    c.ChannelName,
		StartTime:      c.StartTime,
		EndTime:        c.EndTime,
		Duration:       c.Duration,
		Initiator:      NewUserInfo(&c.Initiator),
		Participants:   participants,
	}
}

// CallSessionResponse — ответ initiate/join: все для входа в медиа-канал
type CallSessionResponse struct {
	Call        CallResponse `json:"call"`
	AgoraToken  string       `json:"agoraToken"`
	ChannelName string       `json:"channelName"`
	UID         uint32       `json:"uid"`
	AppID       string       `json:"appId"`
}
