package handlers

import (
	"errors"
	"net/http"

	"github.com/thereayou/campuslink/internal/services"
)

// statusForError переводит ошибки сервисов в HTTP-статусы
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrCallNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotSender),
		errors.Is(err, services.ErrNotCallParticipant):
		return http.StatusForbidden

	case errors.Is(err, services.ErrCallEnded),
		errors.Is(err, services.ErrCallNotOngoing),
		errors.Is(err, services.ErrInvalidCallType),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrSelfConversation):
		return http.StatusBadRequest

	case errors.Is(err, services.ErrTokenIssue):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
