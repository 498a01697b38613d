package push

import (
	"context"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/thereayou/campuslink/internal/database"
)

const dispatchTimeout = 10 * time.Second

type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Dispatcher шлет push-уведомления по принципу fire-and-forget:
// ошибки логируются и никогда не возвращаются вызывающему
type Dispatcher struct {
	client *messaging.Client
	db     *database.Database
}

// NewDispatcher подключается к FCM; пустой путь к ключу отключает пуши
func NewDispatcher(ctx context.Context, credentialsFile string, db *database.Database) (*Dispatcher, error) {
	if credentialsFile == "" {
		log.Println("FCM credentials not set, push notifications disabled")
		return &Dispatcher{db: db}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{client: client, db: db}, nil
}

// Dispatch отправляет уведомление в отдельной горутине и не блокирует вызывающего
func (d *Dispatcher) Dispatch(recipientID uuid.UUID, n Notification) {
	if d == nil || d.client == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := d.send(ctx, recipientID, n); err != nil {
			log.Printf("Push to %s failed: %v", recipientID, err)
		}
	}()
}

func (d *Dispatcher) send(ctx context.Context, recipientID uuid.UUID, n Notification) error {
	user, err := d.db.GetUser(recipientID.String())
	if err != nil {
		return err
	}

	if user.FCMToken == "" {
		// Пользователь без устройства — молча пропускаем
		return nil
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	_, err = d.client.Send(ctx, msg)
	if err != nil {
		// Протухшая регистрация устройства: чистим токен, чтобы не долбить FCM
		if messaging.IsRegistrationTokenNotRegistered(err) || errorutils.IsInvalidArgument(err) {
			if clearErr := d.db.ClearFCMToken(recipientID.String()); clearErr != nil {
				log.Printf("Failed to clear stale FCM token for %s: %v", recipientID, clearErr)
			} else {
				log.Printf("Removed stale FCM token for user %s", recipientID)
			}
		}
		return err
	}

	return nil
}
