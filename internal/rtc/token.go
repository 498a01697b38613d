package rtc

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const channelPrefix = "call_"

// maxUID — простое 2^31-1, верхняя граница числовых uid медиа-провайдера
const maxUID = 2147483647

// DeriveChannel — чистая функция от id беседы: все стороны вычисляют
// одну и ту же точку встречи без дополнительного обмена
func DeriveChannel(conversationID uuid.UUID) string {
	return channelPrefix + hex.EncodeToString(conversationID[:])
}

// DeriveUID сводит uuid пользователя к числовому id медиа-провайдера:
// последние 8 hex-символов по модулю maxUID. Детерминированно,
// уникальность вероятностная, коллизии принимаем
func DeriveUID(userID uuid.UUID) uint32 {
	s := hex.EncodeToString(userID[:])
	v, err := strconv.ParseUint(s[len(s)-8:], 16, 64)
	if err != nil {
		// недостижимо для валидного uuid
		return 1
	}

	uid := uint32(v % maxUID)
	if uid == 0 {
		uid = 1
	}
	return uid
}

type Role string

const (
	RolePublisher  Role = "publisher"
	RoleSubscriber Role = "subscriber"
)

// TokenIssuer выдает ограниченные по времени токены доступа к медиа-каналу
type TokenIssuer interface {
	Issue(channelName string, uid uint32, role Role) (string, error)
	AppID() string
}

type Issuer struct {
	appID          string
	appCertificate string
	tokenDuration  time.Duration
}

func NewIssuer(appID, appCertificate string, duration time.Duration) *Issuer {
	return &Issuer{
		appID:          appID,
		appCertificate: appCertificate,
		tokenDuration:  duration,
	}
}

func (i *Issuer) AppID() string {
	return i.appID
}

// Issue подписывает токен сертификатом приложения
func (i *Issuer) Issue(channelName string, uid uint32, role Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"app_id":  i.appID,
		"channel": channelName,
		"uid":     strconv.FormatUint(uint64(uid), 10),
		"role":    string(role),
		"iat":     jwt.NewNumericDate(now),
		"exp":     jwt.NewNumericDate(now.Add(i.tokenDuration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(i.appCertificate))
}
