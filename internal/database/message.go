package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thereayou/campuslink/internal/models"
)

// SaveMessage пишет сообщение и сразу отмечает его прочитанным отправителем
func (d *Database) SaveMessage(message *models.Message) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Create(&models.MessageRead{
			MessageID: message.ID,
			UserID:    message.SenderID,
			ReadAt:    time.Now(),
		}).Error
	})
}

func (d *Database) GetMessage(id string) (*models.Message, error) {
	var message models.Message
	if err := d.db.Preload("Sender").Preload("Reads").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (d *Database) UpdateMessage(message *models.Message) error {
	return d.db.Save(message).Error
}

// GetConversationMessages получает сообщения беседы с пагинацией
func (d *Database) GetConversationMessages(conversationID string, limit int, before *time.Time) ([]models.Message, error) {
	var messages []models.Message

	query := d.db.Where("conversation_id = ?", conversationID)

	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Preload("Reads").
		Find(&messages).Error

	if err != nil {
		return nil, err
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// MarkMessagesRead добавляет читателя в readBy; повторная отметка — no-op
func (d *Database) MarkMessagesRead(messageIDs []uuid.UUID, userID uuid.UUID) error {
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now()
	reads := make([]models.MessageRead, 0, len(messageIDs))
	for _, id := range messageIDs {
		reads = append(reads, models.MessageRead{
			MessageID: id,
			UserID:    userID,
			ReadAt:    now,
		})
	}

	return d.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reads).Error
}
