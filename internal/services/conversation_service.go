package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/models"
)

type ConversationService struct {
	db *database.Database
}

func NewConversationService(db *database.Database) *ConversationService {
	return &ConversationService{db: db}
}

// CreateDirect возвращает существующую личную беседу или создает новую.
// Беседа с самим собой запрещена: в личной беседе ровно два участника
func (s *ConversationService) CreateDirect(userID, otherID uuid.UUID) (*models.Conversation, error) {
	if userID == otherID {
		return nil, ErrSelfConversation
	}

	if _, err := s.db.GetUser(otherID.String()); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.db.GetOrCreateDirectConversation(userID, otherID)
}

func (s *ConversationService) CreateGroup(userID uuid.UUID, name string, memberIDs []uuid.UUID) (*models.Conversation, error) {
	conv := &models.Conversation{
		Name:      name,
		Type:      "group",
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	if err := s.db.CreateConversation(conv); err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	for _, id := range append([]uuid.UUID{userID}, memberIDs...) {
		if seen[id] {
			continue
		}
		seen[id] = true

		user, err := s.db.GetUser(id.String())
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := s.db.AddConversationParticipant(conv.ID.String(), user); err != nil {
			return nil, err
		}
	}

	return s.db.GetConversation(conv.ID.String())
}

func (s *ConversationService) List(userID uuid.UUID) ([]models.Conversation, error) {
	return s.db.GetUserConversations(userID.String())
}

// Get отдает беседу только ее участнику
func (s *ConversationService) Get(conversationID, userID uuid.UUID) (*models.Conversation, error) {
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

	return conv, nil
}
