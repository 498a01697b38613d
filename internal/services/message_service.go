package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/models"
)

type MessageService struct {
	db *database.Database
}

func NewMessageService(db *database.Database) *MessageService {
	return &MessageService{db: db}
}

type CreateMessageInput struct {
	ConversationID uuid.UUID
	Content        string
	Type           string
	Attachments    []models.Attachment
}

// Create сохраняет сообщение и обновляет денормализованные поля беседы.
// Рассылка по комнатам — дело вызывающего, и только после успешного сохранения
func (s *MessageService) Create(senderID uuid.UUID, in CreateMessageInput) (*models.Message, *models.Conversation, error) {
	conv, err := s.db.GetConversation(in.ConversationID.String())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrConversationNotFound
		}
		return nil, nil, err
	}

	if !conv.HasParticipant(senderID) {
		return nil, nil, ErrNotParticipant
	}

	if in.Content == "" {
		return nil, nil, ErrEmptyContent
	}

	msgType := in.Type
	if msgType == "" {
		msgType = "text"
	}

	message := &models.Message{
		ConversationID: in.ConversationID,
		SenderID:       senderID,
		Content:        in.Content,
		Type:           msgType,
		Attachments:    in.Attachments,
		CreatedAt:      time.Now(),
	}

	if err := s.db.SaveMessage(message); err != nil {
		return nil, nil, err
	}

	if err := s.db.UpdateConversationLastMessage(conv.ID.String(), in.Content, message.CreatedAt); err != nil {
		return nil, nil, err
	}
	conv.LastMessage = in.Content
	conv.LastMessageTime = &message.CreatedAt

	full, err := s.db.GetMessage(message.ID.String())
	if err != nil {
		return nil, nil, err
	}

	return full, conv, nil
}

func (s *MessageService) List(conversationID, userID uuid.UUID, limit int, before *time.Time) ([]models.Message, error) {
	conv, err := s.db.GetConversation(conversationID.String())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.db.GetConversationMessages(conversationID.String(), limit, before)
}

// Delete — мягкое удаление: строка остается, контент заменяется заглушкой
func (s *MessageService) Delete(messageID, userID uuid.UUID) (*models.Message, error) {
	message, err := s.db.GetMessage(messageID.String())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}

	if message.SenderID != userID {
		return nil, ErrNotSender
	}

	message.IsDeleted = true
	message.Content = models.DeletedMessageContent

	if err := s.db.UpdateMessage(message); err != nil {
		return nil, err
	}

	return message, nil
}

// MarkAsRead идемпотентно добавляет читателя: readBy только растет
func (s *MessageService) MarkAsRead(userID uuid.UUID, messageIDs []uuid.UUID) error {
	return s.db.MarkMessagesRead(messageIDs, userID)
}
