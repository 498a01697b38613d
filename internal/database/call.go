package database

import (
	"gorm.io/gorm"

	"github.com/thereayou/campuslink/internal/models"
)

func (d *Database) CreateCall(call *models.Call) error {
	return d.db.Create(call).Error
}

func (d *Database) GetCall(id string) (*models.Call, error) {
	var call models.Call
	err := d.db.
		Preload("Initiator").
		Preload("Participants").
		First(&call, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &call, nil
}

func (d *Database) UpdateCall(call *models.Call) error {
	return d.db.Save(call).Error
}

func (d *Database) AddCallParticipant(call *models.Call, user *models.User) error {
	return d.db.Model(call).Association("Participants").Append(user)
}

func (d *Database) RemoveCallParticipant(call *models.Call, user *models.User) error {
	return d.db.Model(call).Association("Participants").Delete(user)
}

// GetCallHistory возвращает последние звонки беседы, свежие первыми
func (d *Database) GetCallHistory(conversationID string, limit int) ([]models.Call, error) {
	var calls []models.Call

	err := d.db.
		Where("conversation_id = ?", conversationID).
		Order("start_time DESC").
		Limit(limit).
		Preload("Initiator").
		Preload("Participants").
		Find(&calls).Error

	return calls, err
}

// GetActiveCall находит текущий ongoing-звонок беседы, если он есть
func (d *Database) GetActiveCall(conversationID string) (*models.Call, error) {
	var call models.Call

	err := d.db.
		Where("conversation_id = ? AND status = ?", conversationID, models.CallOngoing).
		Order("start_time DESC").
		Preload("Initiator").
		Preload("Participants").
		First(&call).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &call, nil
}
