package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/rtc"
)

const callHistoryLimit = 20

type CallService struct {
	db     *database.Database
	tokens rtc.TokenIssuer
}

func NewCallService(db *database.Database, tokens rtc.TokenIssuer) *CallService {
	return &CallService{db: db, tokens: tokens}
}

// CallSession — все, что нужно клиенту для входа в медиа-канал
type CallSession struct {
	Call        *models.Call
	Token       string
	ChannelName string
	UID         uint32
}

// Initiate создает звонок сразу в статусе ongoing: "ringing" — это
// интерпретация клиентом полученного incoming-call, не состояние в базе
func (s *CallService) Initiate(userID, conversationID uuid.UUID, callType models.CallType) (*CallSession, *models.Conversation, error) {
	if !callType.Valid() {
		return nil, nil, ErrInvalidCallType
	}

	conv, err := s.db.GetConversation(conversationID.String())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrConversationNotFound
		}
		return nil, nil, err
	}

	if !conv.HasParticipant(userID) {
		return nil, nil, ErrNotParticipant
	}

	initiator, err := s.db.GetUser(userID.String())
	if err != nil {
		return nil, nil, err
	}

	call := &models.Call{
		ConversationID: conversationID,
		InitiatorID:    userID,
		Type:           callType,
		Status:         models.CallOngoing,
		ChannelName:    rtc.DeriveChannel(conversationID),
		StartTime:      time.Now(),
		Participants:   []models.User{*initiator},
	}

	if err := s.db.CreateCall(call); err != nil {
		return nil, nil, err
	}

	// Падение эмитента токена не откатывает звонок: вошедшие позже
	// получат токен при join, инициатор — при повторной попытке
	session, err := s.session(call, userID)
	if err != nil {
		return nil, nil, err
	}

	return session, conv, nil
}

// Join добавляет участника; присоединиться можно только к ongoing-звонку
func (s *CallService) Join(callID, userID uuid.UUID) (*CallSession, error) {
	call, err := s.getCall(callID)
	if err != nil {
		return nil, err
	}

	if call.Status != models.CallOngoing {
		return nil, ErrCallEnded
	}

	if !call.HasParticipant(userID) {
		user, err := s.db.GetUser(userID.String())
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		if err := s.db.AddCallParticipant(call, user); err != nil {
			return nil, err
		}
		call.Participants = append(call.Participants, *user)
	}

	return s.session(call, userID)
}

// Leave убирает участника; последний вышедший завершает звонок
func (s *CallService) Leave(callID, userID uuid.UUID) (*models.Call, error) {
	call, err := s.getCall(callID)
	if err != nil {
		return nil, err
	}

	if call.Status.Terminal() {
		return call, nil
	}

	if call.HasParticipant(userID) {
		user, err := s.db.GetUser(userID.String())
		if err != nil {
			return nil, err
		}
		if err := s.db.RemoveCallParticipant(call, user); err != nil {
			return nil, err
		}

		remaining := call.Participants[:0]
		for _, p := range call.Participants {
			if p.ID != userID {
				remaining = append(remaining, p)
			}
		}
		call.Participants = remaining
	}

	if len(call.Participants) == 0 {
		if err := s.finish(call, models.CallEnded); err != nil {
			return nil, err
		}
	}

	return call, nil
}

// End завершает звонок; может любой участник, не только инициатор
func (s *CallService) End(callID, userID uuid.UUID) (*models.Call, error) {
	call, err := s.getCall(callID)
	if err != nil {
		return nil, err
	}

	if call.InitiatorID != userID && !call.HasParticipant(userID) {
		return nil, ErrNotCallParticipant
	}

	if !call.CanTransition(models.CallEnded) {
		return nil, ErrCallEnded
	}

	if err := s.finish(call, models.CallEnded); err != nil {
		return nil, err
	}

	return call, nil
}

// Decline переводит звонок в missed, только пока никто кроме
// инициатора не успел войти; иначе статус не меняется
func (s *CallService) Decline(callID, userID uuid.UUID) (*models.Call, error) {
	call, err := s.getCall(callID)
	if err != nil {
		return nil, err
	}

	if call.Status != models.CallOngoing {
		return nil, ErrCallNotOngoing
	}

	if len(call.Participants) > 1 {
		return call, nil
	}

	if err := s.finish(call, models.CallMissed); err != nil {
		return nil, err
	}

	return call, nil
}

func (s *CallService) History(conversationID uuid.UUID) ([]models.Call, error) {
	return s.db.GetCallHistory(conversationID.String(), callHistoryLimit)
}

// Active возвращает текущий ongoing-звонок беседы или nil
func (s *CallService) Active(conversationID uuid.UUID) (*models.Call, error) {
	return s.db.GetActiveCall(conversationID.String())
}

func (s *CallService) getCall(callID uuid.UUID) (*models.Call, error) {
	call, err := s.db.GetCall(callID.String())
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return call, nil
}

// finish — единственное место терминальных переходов; длительность
// считается один раз и больше не пересчитывается
func (s *CallService) finish(call *models.Call, to models.CallStatus) error {
	if !call.CanTransition(to) {
		return ErrCallEnded
	}

	now := time.Now()
	call.Status = to
	call.EndTime = &now
	if to == models.CallEnded {
		call.Duration = int(now.Sub(call.StartTime).Seconds())
		if call.Duration < 0 {
			call.Duration = 0
		}
	}

	return s.db.UpdateCall(call)
}

func (s *CallService) session(call *models.Call, userID uuid.UUID) (*CallSession, error) {
	uid := rtc.DeriveUID(userID)

	token, err := s.tokens.Issue(call.ChannelName, uid, rtc.RolePublisher)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}

	return &CallSession{
		Call:        call,
		Token:       token,
		ChannelName: call.ChannelName,
		UID:         uid,
	}, nil
}
