package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/campuslink/internal/models"
)

func (d *Database) CreateConversation(conv *models.Conversation) error {
	return d.db.Create(conv).Error
}

func (d *Database) GetConversation(id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := d.db.Preload("Participants").First(&conv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations возвращает беседы пользователя, свежие первыми
func (d *Database) GetUserConversations(userID string) ([]models.Conversation, error) {
	var convs []models.Conversation

	err := d.db.
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("last_message_time DESC NULLS LAST").
		Preload("Participants").
		Find(&convs).Error

	return convs, err
}

func (d *Database) AddConversationParticipant(conversationID string, user *models.User) error {
	var conv models.Conversation
	if err := d.db.First(&conv, "id = ?", conversationID).Error; err != nil {
		return err
	}
	return d.db.Model(&conv).Association("Participants").Append(user)
}

// GetOrCreateDirectConversation дедуплицирует личные беседы поиском, не констрейнтом
func (d *Database) GetOrCreateDirectConversation(user1ID, user2ID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation

	err := d.db.
		Joins("JOIN conversation_participants cp1 ON cp1.conversation_id = conversations.id").
		Joins("JOIN conversation_participants cp2 ON cp2.conversation_id = conversations.id").
		Where("conversations.type = 'direct' AND cp1.user_id = ? AND cp2.user_id = ?", user1ID, user2ID).
		First(&conv).Error

	if err == nil {
		d.db.Model(&conv).Association("Participants").Find(&conv.Participants)
		return &conv, nil
	}

	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	conv = models.Conversation{
		Type:      "direct",
		CreatedBy: user1ID,
		CreatedAt: time.Now(),
	}

	if err := d.db.Create(&conv).Error; err != nil {
		return nil, err
	}

	for _, id := range []uuid.UUID{user1ID, user2ID} {
		var user models.User
		if err := d.db.First(&user, "id = ?", id).Error; err != nil {
			return nil, err
		}
		if err := d.db.Model(&conv).Association("Participants").Append(&user); err != nil {
			return nil, err
		}
	}

	d.db.Model(&conv).Association("Participants").Find(&conv.Participants)

	return &conv, nil
}

// UpdateConversationLastMessage обновляет денормализованные поля для списков
func (d *Database) UpdateConversationLastMessage(id string, content string, at time.Time) error {
	return d.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message":      content,
			"last_message_time": at,
		}).Error
}

// DeleteConversation каскадно удаляет сообщения; звонки намеренно не трогаем
func (d *Database) DeleteConversation(id string) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id IN (?)",
			tx.Model(&models.Message{}).Select("id").Where("conversation_id = ?", id),
		).Delete(&models.MessageRead{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}

		var conv models.Conversation
		if err := tx.First(&conv, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&conv).Association("Participants").Clear(); err != nil {
			return err
		}

		return tx.Delete(&conv).Error
	})
}
