package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/models"
)

func TestMessageService_CreateMarksSenderAsReader(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	svc := NewMessageService(db)

	message, updatedConv, err := svc.Create(alice.ID, CreateMessageInput{
		ConversationID: conv.ID,
		Content:        "hello bob",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if message.Type != "text" {
		t.Fatalf("default type = %q, want text", message.Type)
	}

	// Отправитель сразу в readBy: он очевидно видел свое сообщение
	readBy := message.ReadBy()
	if len(readBy) != 1 || readBy[0] != alice.ID {
		t.Fatalf("readBy after create = %v, want only sender", readBy)
	}

	if updatedConv.LastMessage != "hello bob" {
		t.Fatalf("conversation last message = %q", updatedConv.LastMessage)
	}
	if updatedConv.LastMessageTime == nil {
		t.Fatalf("conversation last message time not set")
	}
}

func TestMessageService_CreateValidation(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	outsider := seedUser(t, db, "mallory")
	svc := NewMessageService(db)

	if _, _, err := svc.Create(alice.ID, CreateMessageInput{ConversationID: conv.ID}); err != ErrEmptyContent {
		t.Fatalf("empty content: err = %v, want ErrEmptyContent", err)
	}

	if _, _, err := svc.Create(outsider.ID, CreateMessageInput{
		ConversationID: conv.ID,
		Content:        "let me in",
	}); err != ErrNotParticipant {
		t.Fatalf("outsider send: err = %v, want ErrNotParticipant", err)
	}

	if _, _, err := svc.Create(alice.ID, CreateMessageInput{
		ConversationID: uuid.New(),
		Content:        "into the void",
	}); err != ErrConversationNotFound {
		t.Fatalf("missing conversation: err = %v, want ErrConversationNotFound", err)
	}
}

func TestMessageService_MarkAsReadIdempotent(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewMessageService(db)

	message, _, err := svc.Create(alice.ID, CreateMessageInput{
		ConversationID: conv.ID,
		Content:        "read me",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.MarkAsRead(bob.ID, []uuid.UUID{message.ID}); err != nil {
			t.Fatalf("MarkAsRead #%d: %v", i+1, err)
		}
	}

	fresh, err := svc.List(conv.ID, bob.ID, 10, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(fresh) != 1 {
		t.Fatalf("messages = %d, want 1", len(fresh))
	}

	readBy := fresh[0].ReadBy()
	if len(readBy) != 2 {
		t.Fatalf("readBy = %v, want sender and bob exactly once", readBy)
	}
	if !fresh[0].IsReadBy(bob.ID) || !fresh[0].IsReadBy(alice.ID) {
		t.Fatalf("readBy missing a reader: %v", readBy)
	}
}

func TestMessageService_DeleteKeepsTombstone(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewMessageService(db)

	message, _, err := svc.Create(alice.ID, CreateMessageInput{
		ConversationID: conv.ID,
		Content:        "regrettable",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Delete(message.ID, bob.ID); err != ErrNotSender {
		t.Fatalf("delete by non-sender: err = %v, want ErrNotSender", err)
	}

	deleted, err := svc.Delete(message.ID, alice.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted.IsDeleted {
		t.Fatalf("message not flagged deleted")
	}
	if deleted.Content != models.DeletedMessageContent {
		t.Fatalf("content = %q, want tombstone", deleted.Content)
	}

	// Строка остается в истории
	list, err := svc.List(conv.ID, bob.ID, 10, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("deleted message vanished from history")
	}
	if list[0].Content != models.DeletedMessageContent {
		t.Fatalf("history content = %q, want tombstone", list[0].Content)
	}
}

func TestMessageService_ListOrderAndPaging(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewMessageService(db)

	contents := []string{"first", "second", "third"}
	for _, c := range contents {
		if _, _, err := svc.Create(alice.ID, CreateMessageInput{
			ConversationID: conv.ID,
			Content:        c,
		}); err != nil {
			t.Fatalf("Create %q: %v", c, err)
		}
	}

	list, err := svc.List(conv.ID, bob.ID, 10, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("messages = %d, want 3", len(list))
	}

	// Хронологический порядок: старые первыми
	for i, c := range contents {
		if list[i].Content != c {
			t.Fatalf("position %d = %q, want %q", i, list[i].Content, c)
		}
	}

	if _, err := svc.List(conv.ID, uuid.New(), 10, nil); err != ErrNotParticipant {
		t.Fatalf("outsider list: err = %v, want ErrNotParticipant", err)
	}
}
