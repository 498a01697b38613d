package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/thereayou/campuslink/internal/models"
)

func TestCallService_InitiateJoinEnd(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	session, gotConv, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if gotConv.ID != conv.ID {
		t.Fatalf("conversation mismatch")
	}
	if session.Call.Status != models.CallOngoing {
		t.Fatalf("new call status = %s, want ongoing", session.Call.Status)
	}
	if !strings.HasPrefix(session.ChannelName, "call_") {
		t.Fatalf("channel %q missing prefix", session.ChannelName)
	}
	if session.Token == "" || session.UID == 0 {
		t.Fatalf("session without token or uid")
	}
	if len(session.Call.Participants) != 1 || session.Call.Participants[0].ID != alice.ID {
		t.Fatalf("initiator must be the only participant after initiate")
	}

	joined, err := svc.Join(session.Call.ID, bob.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if len(joined.Call.Participants) != 2 {
		t.Fatalf("participants after join = %d, want 2", len(joined.Call.Participants))
	}
	if joined.ChannelName != session.ChannelName {
		t.Fatalf("joiner got different channel %q", joined.ChannelName)
	}

	ended, err := svc.End(session.Call.ID, bob.ID)
	if err != nil {
		t.Fatalf("End by non-initiator participant: %v", err)
	}
	if ended.Status != models.CallEnded {
		t.Fatalf("status after end = %s", ended.Status)
	}
	if ended.EndTime == nil {
		t.Fatalf("ended call without end time")
	}
	if ended.Duration < 0 {
		t.Fatalf("negative duration %d", ended.Duration)
	}
}

func TestCallService_JoinEndedCall(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallVideo)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := svc.End(session.Call.ID, alice.ID); err != nil {
		t.Fatalf("End: %v", err)
	}

	if _, err := svc.Join(session.Call.ID, bob.ID); err != ErrCallEnded {
		t.Fatalf("Join ended call: err = %v, want ErrCallEnded", err)
	}
}

func TestCallService_JoinOpenToAnyUser(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	latecomer := seedUser(t, db, "dave")
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	// Вход в ongoing-звонок не требует членства в беседе
	joined, err := svc.Join(session.Call.ID, latecomer.ID)
	if err != nil {
		t.Fatalf("Join by non-member: %v", err)
	}
	if !joined.Call.HasParticipant(latecomer.ID) {
		t.Fatalf("latecomer not among participants")
	}
}

func TestCallService_EndByOutsider(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	outsider := seedUser(t, db, "mallory")
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if _, err := svc.End(session.Call.ID, outsider.ID); err != ErrNotCallParticipant {
		t.Fatalf("End by outsider: err = %v, want ErrNotCallParticipant", err)
	}
}

func TestCallService_DoubleEnd(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if _, err := svc.End(session.Call.ID, alice.ID); err != nil {
		t.Fatalf("first End: %v", err)
	}
	if _, err := svc.End(session.Call.ID, alice.ID); err != ErrCallEnded {
		t.Fatalf("second End: err = %v, want ErrCallEnded", err)
	}
}

func TestCallService_DeclineBeforeAnyoneJoins(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	declined, err := svc.Decline(session.Call.ID, bob.ID)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if declined.Status != models.CallMissed {
		t.Fatalf("declined call status = %s, want missed", declined.Status)
	}
}

func TestCallService_DeclineAfterJoinKeepsCall(t *testing.T) {
	db := testDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	convSvc := NewConversationService(db)
	conv, err := convSvc.CreateGroup(alice.ID, "study group", []uuid.UUID{bob.ID, carol.ID})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	svc := NewCallService(db, staticIssuer{})
	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := svc.Join(session.Call.ID, bob.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	// Отказ третьего не должен ронять начавшийся разговор
	declined, err := svc.Decline(session.Call.ID, carol.ID)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if declined.Status != models.CallOngoing {
		t.Fatalf("call dropped by third-party decline: status = %s", declined.Status)
	}
}

func TestCallService_LastLeaveEndsCall(t *testing.T) {
	db := testDB(t)
	conv, alice, bob := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if _, err := svc.Join(session.Call.ID, bob.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	afterFirst, err := svc.Leave(session.Call.ID, bob.ID)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if afterFirst.Status != models.CallOngoing {
		t.Fatalf("call ended while a participant remains")
	}

	afterLast, err := svc.Leave(session.Call.ID, alice.ID)
	if err != nil {
		t.Fatalf("Leave last: %v", err)
	}
	if afterLast.Status != models.CallEnded {
		t.Fatalf("empty call status = %s, want ended", afterLast.Status)
	}
}

func TestCallService_Active(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	active, err := svc.Active(conv.ID)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active != nil {
		t.Fatalf("phantom active call before initiate")
	}

	session, _, err := svc.Initiate(alice.ID, conv.ID, models.CallAudio)
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	active, err = svc.Active(conv.ID)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active == nil || active.ID != session.Call.ID {
		t.Fatalf("active call not found after initiate")
	}

	if _, err := svc.End(session.Call.ID, alice.ID); err != nil {
		t.Fatalf("End: %v", err)
	}

	active, err = svc.Active(conv.ID)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active != nil {
		t.Fatalf("ended call still reported active")
	}
}

func TestCallService_InvalidType(t *testing.T) {
	db := testDB(t)
	conv, alice, _ := seedDirect(t, db)
	svc := NewCallService(db, staticIssuer{})

	if _, _, err := svc.Initiate(alice.ID, conv.ID, models.CallType("hologram")); err != ErrInvalidCallType {
		t.Fatalf("err = %v, want ErrInvalidCallType", err)
	}
}
