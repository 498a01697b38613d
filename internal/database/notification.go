package database

import (
	"github.com/thereayou/campuslink/internal/models"
)

func (d *Database) CreateNotification(n *models.Notification) error {
	return d.db.Create(n).Error
}

func (d *Database) GetNotifications(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification

	err := d.db.
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Find(&notifications).Error

	return notifications, err
}

func (d *Database) GetUnreadNotificationCount(userID string) (int64, error) {
	var count int64
	err := d.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (d *Database) MarkNotificationRead(id string, userID string) error {
	return d.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("is_read", true).Error
}
