package rtc

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func TestDeriveChannel_Deterministic(t *testing.T) {
	convID := uuid.New()

	a := DeriveChannel(convID)
	b := DeriveChannel(convID)
	if a != b {
		t.Fatalf("same conversation produced different channels: %q vs %q", a, b)
	}

	if !strings.HasPrefix(a, "call_") {
		t.Fatalf("channel %q missing prefix", a)
	}

	other := DeriveChannel(uuid.New())
	if a == other {
		t.Fatalf("different conversations mapped to one channel %q", a)
	}
}

func TestDeriveUID_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		uid := DeriveUID(uuid.New())
		if uid == 0 {
			t.Fatalf("uid must never be zero")
		}
		if uid >= maxUID {
			t.Fatalf("uid %d out of range", uid)
		}
	}
}

func TestDeriveUID_Deterministic(t *testing.T) {
	userID := uuid.New()
	if DeriveUID(userID) != DeriveUID(userID) {
		t.Fatalf("uid derivation is not deterministic")
	}
}

func TestIssuer_IssueAndParse(t *testing.T) {
	issuer := NewIssuer("test-app", "test-certificate", time.Hour)

	channel := DeriveChannel(uuid.New())
	uid := DeriveUID(uuid.New())

	raw, err := issuer.Issue(channel, uid, RolePublisher)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parsed, err := jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-certificate"), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !parsed.Valid {
		t.Fatalf("token invalid")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims["app_id"] != "test-app" {
		t.Fatalf("app_id = %v", claims["app_id"])
	}
	if claims["channel"] != channel {
		t.Fatalf("channel = %v, want %v", claims["channel"], channel)
	}
	if claims["role"] != string(RolePublisher) {
		t.Fatalf("role = %v", claims["role"])
	}
}

func TestIssuer_WrongSecretRejected(t *testing.T) {
	issuer := NewIssuer("test-app", "right-certificate", time.Hour)

	raw, err := issuer.Issue("call_x", 42, RoleSubscriber)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = jwt.Parse(raw, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong-certificate"), nil
	})
	if err == nil {
		t.Fatalf("token verified with wrong certificate")
	}
}
