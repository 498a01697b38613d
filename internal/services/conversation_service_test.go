package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestConversationService_DirectIsDeduplicated(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := NewConversationService(db)

	first, err := svc.CreateDirect(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}

	// Повторный запрос с любой стороны возвращает ту же беседу
	second, err := svc.CreateDirect(bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("CreateDirect reversed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("direct conversation duplicated: %s vs %s", first.ID, second.ID)
	}

	if len(first.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(first.Participants))
	}
}

func TestConversationService_DirectWithSelfRejected(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	svc := NewConversationService(db)

	if _, err := svc.CreateDirect(alice.ID, alice.ID); err != ErrSelfConversation {
		t.Fatalf("err = %v, want ErrSelfConversation", err)
	}

	// Однопользовательской "личной" беседы не появилось
	list, err := svc.List(alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("self conversation was created: %d rows", len(list))
	}
}

func TestConversationService_DirectWithUnknownUser(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	svc := NewConversationService(db)

	if _, err := svc.CreateDirect(alice.ID, uuid.New()); err != ErrUserNotFound {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestConversationService_GroupIncludesCreator(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	svc := NewConversationService(db)

	// Создатель указан и в memberIDs — дубликата быть не должно
	conv, err := svc.CreateGroup(alice.ID, "study group", []uuid.UUID{alice.ID, bob.ID, carol.ID})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if conv.Type != "group" {
		t.Fatalf("type = %q", conv.Type)
	}
	if len(conv.Participants) != 3 {
		t.Fatalf("participants = %d, want 3", len(conv.Participants))
	}
	if !conv.HasParticipant(alice.ID) {
		t.Fatalf("creator not in participants")
	}
}

func TestConversationService_GetEnforcesMembership(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	outsider := seedUser(t, db, "mallory")
	svc := NewConversationService(db)

	if _, err := svc.Get(conv.ID, alice.ID); err != nil {
		t.Fatalf("Get by participant: %v", err)
	}
	if _, err := svc.Get(conv.ID, outsider.ID); err != ErrNotParticipant {
		t.Fatalf("Get by outsider: err = %v, want ErrNotParticipant", err)
	}
	if _, err := svc.Get(uuid.New(), alice.ID); err != ErrConversationNotFound {
		t.Fatalf("Get missing: err = %v, want ErrConversationNotFound", err)
	}
}

func TestConversationService_ListSortsByActivity(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	convSvc := NewConversationService(db)
	msgSvc := NewMessageService(db)

	withBob, err := convSvc.CreateDirect(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	withCarol, err := convSvc.CreateDirect(alice.ID, carol.ID)
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}

	// Сообщение в первой беседе поднимает ее наверх
	if _, _, err := msgSvc.Create(alice.ID, CreateMessageInput{
		ConversationID: withBob.ID,
		Content:        "bump",
	}); err != nil {
		t.Fatalf("Create message: %v", err)
	}

	list, err := convSvc.List(alice.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("conversations = %d, want 2", len(list))
	}
	if list[0].ID != withBob.ID {
		t.Fatalf("active conversation not first")
	}
	if list[1].ID != withCarol.ID {
		t.Fatalf("idle conversation not last")
	}
}
