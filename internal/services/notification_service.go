package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/push"
)

type NotificationService struct {
	db         *database.Database
	dispatcher *push.Dispatcher
}

func NewNotificationService(db *database.Database, dispatcher *push.Dispatcher) *NotificationService {
	return &NotificationService{db: db, dispatcher: dispatcher}
}

type NotifyInput struct {
	RecipientID uuid.UUID
	SenderID    *uuid.UUID
	Type        string
	Title       string
	Message     string
	Data        map[string]string
}

// Notify пишет уведомление и отдает его в push-канал.
// Пуш не влияет на результат: его ошибки остаются внутри диспетчера
func (s *NotificationService) Notify(in NotifyInput) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		Data:        in.Data,
		CreatedAt:   time.Now(),
	}

	if err := s.db.CreateNotification(n); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(in.RecipientID, push.Notification{
		Title: in.Title,
		Body:  in.Message,
		Data:  in.Data,
	})

	return n, nil
}

func (s *NotificationService) List(userID uuid.UUID, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.db.GetNotifications(userID.String(), limit)
}

func (s *NotificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.db.GetUnreadNotificationCount(userID.String())
}

func (s *NotificationService) MarkRead(id, userID uuid.UUID) error {
	return s.db.MarkNotificationRead(id.String(), userID.String())
}
