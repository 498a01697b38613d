package services

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrCallNotFound         = errors.New("call not found")
	ErrUserNotFound         = errors.New("user not found")

	ErrNotParticipant     = errors.New("access denied")
	ErrNotSender          = errors.New("can only delete own messages")
	ErrNotCallParticipant = errors.New("only call participants can end the call")

	ErrCallEnded      = errors.New("call has ended")
	ErrCallNotOngoing = errors.New("call is not ongoing")

	ErrInvalidCallType  = errors.New("call type must be audio or video")
	ErrEmptyContent     = errors.New("message content is required")
	ErrSelfConversation = errors.New("cannot start a conversation with yourself")

	// ErrTokenIssue — отказ внешнего эмитента медиа-токенов
	ErrTokenIssue = errors.New("media token issue failed")
)
