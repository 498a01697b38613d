package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thereayou/campuslink/internal/database"
	"github.com/thereayou/campuslink/internal/models"
	"github.com/thereayou/campuslink/internal/rtc"
)

// testDB поднимает чистую in-memory sqlite на каждый тест
func testDB(t *testing.T) *database.Database {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return database.NewDatabase(db)
}

func seedUser(t *testing.T, db *database.Database, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@campus.test",
		PasswordHash: "x",
		FirstName:    username,
		IsActive:     true,
	}
	if err := db.SaveUser(user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// seedDirect готовит личную беседу двух пользователей
func seedDirect(t *testing.T, db *database.Database) (*models.Conversation, *models.User, *models.User) {
	t.Helper()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, err := NewConversationService(db).CreateDirect(alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("create direct conversation: %v", err)
	}
	return conv, alice, bob
}

// staticIssuer выдает фиксированный токен, сети не требует
type staticIssuer struct{}

func (staticIssuer) Issue(channel string, uid uint32, role rtc.Role) (string, error) {
	return "test-token", nil
}

func (staticIssuer) AppID() string { return "test-app" }
