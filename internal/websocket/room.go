package websocket

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// RoomKind разделяет пространства имён комнат, коллизии id невозможны
type RoomKind uint8

const (
	RoomConversation RoomKind = iota + 1
	RoomCall
	RoomUser
)

func (k RoomKind) String() string {
	switch k {
	case RoomConversation:
		return "conversation"
	case RoomCall:
		return "call"
	case RoomUser:
		return "user"
	default:
		return "unknown"
	}
}

// RoomKey — типизированный адрес широковещательной группы
type RoomKey struct {
	Kind RoomKind
	ID   uuid.UUID
}

func ConversationRoom(id uuid.UUID) RoomKey {
	return RoomKey{Kind: RoomConversation, ID: id}
}

func CallRoom(id uuid.UUID) RoomKey {
	return RoomKey{Kind: RoomCall, ID: id}
}

// PersonalRoom адресует все соединения пользователя независимо от его комнат
func PersonalRoom(userID uuid.UUID) RoomKey {
	return RoomKey{Kind: RoomUser, ID: userID}
}

func (k RoomKey) String() string {
	return k.Kind.String() + ":" + k.ID.String()
}

var ErrInvalidRoomKey = errors.New("invalid room key")

// ParseRoomKey разбирает строковую форму, используется бэкплейном
func ParseRoomKey(s string) (RoomKey, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return RoomKey{}, ErrInvalidRoomKey
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return RoomKey{}, ErrInvalidRoomKey
	}

	switch kind {
	case "conversation":
		return ConversationRoom(id), nil
	case "call":
		return CallRoom(id), nil
	case "user":
		return PersonalRoom(id), nil
	default:
		return RoomKey{}, ErrInvalidRoomKey
	}
}
