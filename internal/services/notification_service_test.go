package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/push"
)

func TestNotificationService_NotifyReportsPersistFailure(t *testing.T) {
	db := testDB(t)
	_, _, bob := seedDirect(t, db)

	dispatcher, err := push.NewDispatcher(context.Background(), "", db)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	svc := NewNotificationService(db, dispatcher)

	// Тип вне check-констрейнта: запись не проходит, ошибка возвращается
	if _, err := svc.Notify(NotifyInput{
		RecipientID: bob.ID,
		Type:        "carrier-pigeon",
		Title:       "x",
		Message:     "y",
	}); err == nil {
		t.Fatalf("persist failure swallowed by Notify")
	}

	count, err := svc.UnreadCount(bob.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed notification still counted")
	}
}

func TestNotificationService_NotifyPersistsAndCounts(t *testing.T) {
	db := testDB(t)
	_, alice, bob := seedDirect(t, db)

	// Без FCM-ключа диспетчер отключен, Notify не должен падать
	dispatcher, err := push.NewDispatcher(context.Background(), "", db)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	svc := NewNotificationService(db, dispatcher)

	n, err := svc.Notify(NotifyInput{
		RecipientID: bob.ID,
		SenderID:    &alice.ID,
		Type:        "message",
		Title:       "New message from alice",
		Message:     "hello",
		Data:        map[string]string{"type": "new_message"},
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Fatalf("notification id not assigned")
	}
	if n.IsRead {
		t.Fatalf("fresh notification marked read")
	}

	count, err := svc.UnreadCount(bob.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("unread = %d, want 1", count)
	}

	list, err := svc.List(bob.ID, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Title != "New message from alice" {
		t.Fatalf("unexpected notifications %+v", list)
	}

	if err := svc.MarkRead(n.ID, bob.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	count, err = svc.UnreadCount(bob.ID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("unread after read = %d, want 0", count)
	}

	// Чужие уведомления не видны
	other, err := svc.List(alice.ID, 10)
	if err != nil {
		t.Fatalf("List for sender: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("sender sees recipient notifications")
	}
}
