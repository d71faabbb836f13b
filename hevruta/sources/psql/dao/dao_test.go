package dao

import (
	"context"
	"testing"
	"time"

	"hevruta/hevruta/sources/psql/models"
	"hevruta/hevruta/utils/logging"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- Helpers ---
func setupTestDB(t *testing.T) *gorm.DB {
	logging.InitLogger() // ensures AppLogger isn't nil
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Thread{}, &models.Message{}, &models.Feedback{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// --- User DAO: legacy read path ---
func TestGetUserLegacyRowMigrates(t *testing.T) {
	db := setupTestDB(t)
	userDAO := NewUserDAO(db)
	ctx := context.Background()

	// Legacy row: uuid key, email only in the email column.
	legacy := models.User{
		ID:    uuid.New().String(),
		Email: "rivka@example.com",
		Role:  models.RoleAdmin,
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	user, err := userDAO.GetUser(ctx, "rivka@example.com")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user == nil {
		t.Fatal("expected legacy user to be found")
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %q", user.Role)
	}

	// The row should now be keyed by email.
	var rekeyed models.User
	if err := db.First(&rekeyed, "id = ?", "rivka@example.com").Error; err != nil {
		t.Fatalf("expected re-keyed row: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", "rivka@example.com").Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 row after migration, got %d", count)
	}
}

func TestGetUserUnknownReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	userDAO := NewUserDAO(db)

	user, err := userDAO.GetUser(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil for unknown email, got %+v", user)
	}
}

func TestUpdateRoleReportsMissingUser(t *testing.T) {
	db := setupTestDB(t)
	userDAO := NewUserDAO(db)
	ctx := context.Background()

	ok, err := userDAO.UpdateRole(ctx, "nobody@example.com", models.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if ok {
		t.Error("expected no rows affected for unknown user")
	}

	if _, err := userDAO.CreateUser(ctx, "dov@example.com", models.RoleUser, nil); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	ok, err = userDAO.UpdateRole(ctx, "dov@example.com", models.RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("expected role update to hit, ok=%v err=%v", ok, err)
	}
	user, _ := userDAO.GetUser(ctx, "dov@example.com")
	if user.Role != models.RoleAdmin {
		t.Errorf("expected admin after update, got %q", user.Role)
	}
}

// --- Thread DAO: owner scoping ---
func TestGetThreadForOwnerScopesByUser(t *testing.T) {
	db := setupTestDB(t)
	threadDAO := NewThreadDAO(db)
	ctx := context.Background()

	thread := &models.Thread{ID: "thread_1", Title: models.DefaultThreadTitle, UserEmail: "owner@example.com"}
	if err := threadDAO.CreateThread(ctx, thread); err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	got, err := threadDAO.GetThreadForOwner(ctx, "thread_1", "owner@example.com")
	if err != nil || got == nil {
		t.Fatalf("owner should see own thread, got=%v err=%v", got, err)
	}

	other, err := threadDAO.GetThreadForOwner(ctx, "thread_1", "intruder@example.com")
	if err != nil {
		t.Fatalf("GetThreadForOwner failed: %v", err)
	}
	if other != nil {
		t.Error("another user's lookup must behave like not-found")
	}
}

func TestDeleteThreadRemovesMessages(t *testing.T) {
	db := setupTestDB(t)
	threadDAO := NewThreadDAO(db)
	messageDAO := NewMessageDAO(db)
	ctx := context.Background()

	thread := &models.Thread{ID: "thread_2", Title: models.DefaultThreadTitle, UserEmail: "owner@example.com"}
	if err := threadDAO.CreateThread(ctx, thread); err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}
	msg := &models.Message{ThreadID: "thread_2", Role: "user", Content: "שלום", UserEmail: "owner@example.com"}
	if err := messageDAO.SaveMessage(ctx, msg); err != nil {
		t.Fatalf("SaveMessage failed: %v", err)
	}

	if err := threadDAO.DeleteThread(ctx, "thread_2"); err != nil {
		t.Fatalf("DeleteThread failed: %v", err)
	}
	var count int64
	db.Model(&models.Message{}).Where("thread_id = ?", "thread_2").Count(&count)
	if count != 0 {
		t.Errorf("expected messages to be deleted with thread, %d remain", count)
	}
}

// --- Message DAO: ordering and first user message ---
func TestGetFirstUserMessage(t *testing.T) {
	db := setupTestDB(t)
	threadDAO := NewThreadDAO(db)
	messageDAO := NewMessageDAO(db)
	ctx := context.Background()

	thread := &models.Thread{ID: "thread_3", Title: models.DefaultThreadTitle, UserEmail: "owner@example.com"}
	if err := threadDAO.CreateThread(ctx, thread); err != nil {
		t.Fatalf("CreateThread failed: %v", err)
	}

	base := time.Now().UTC()
	msgs := []*models.Message{
		{ThreadID: "thread_3", Role: "user", Content: "מה זה חברותא?", UserEmail: "owner@example.com", Timestamp: base},
		{ThreadID: "thread_3", Role: "assistant", Content: "לימוד בזוגות", UserEmail: "owner@example.com", Timestamp: base.Add(time.Second)},
		{ThreadID: "thread_3", Role: "user", Content: "תודה", UserEmail: "owner@example.com", Timestamp: base.Add(2 * time.Second)},
	}
	for _, m := range msgs {
		if err := messageDAO.SaveMessage(ctx, m); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	first, err := messageDAO.GetFirstUserMessage(ctx, "thread_3")
	if err != nil {
		t.Fatalf("GetFirstUserMessage failed: %v", err)
	}
	if first == nil || first.Content != "מה זה חברותא?" {
		t.Errorf("expected the earliest user message, got %+v", first)
	}

	all, err := messageDAO.GetMessagesByThread(ctx, "thread_3")
	if err != nil {
		t.Fatalf("GetMessagesByThread failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(all))
	}
	if all[0].Content != "מה זה חברותא?" || all[2].Content != "תודה" {
		t.Error("messages not in timestamp order")
	}
}

// --- Feedback DAO: upsert by run id ---
func TestFeedbackUpsertByRunID(t *testing.T) {
	db := setupTestDB(t)
	feedbackDAO := NewFeedbackDAO(db)
	ctx := context.Background()

	first := &models.Feedback{
		RunID:         "run_42",
		ThreadID:      "thread_9",
		Rating:        models.RatingLike,
		ReviewerEmail: "owner@example.com",
	}
	fb, created, err := feedbackDAO.UpsertByRunID(ctx, first)
	if err != nil {
		t.Fatalf("UpsertByRunID failed: %v", err)
	}
	if !created {
		t.Error("first submission should create a row")
	}

	second := &models.Feedback{
		RunID:         "run_42",
		Rating:        models.RatingDislike,
		Comment:       "התשובה לא מדויקת",
		ReviewerEmail: "owner@example.com",
	}
	fb, created, err = feedbackDAO.UpsertByRunID(ctx, second)
	if err != nil {
		t.Fatalf("second UpsertByRunID failed: %v", err)
	}
	if created {
		t.Error("resubmission should update, not create")
	}
	if fb.Rating != models.RatingDislike || fb.Comment != "התשובה לא מדויקת" {
		t.Errorf("expected updated rating/comment, got %+v", fb)
	}
	if fb.ThreadID != "thread_9" {
		t.Errorf("thread id should survive a resubmission without one, got %q", fb.ThreadID)
	}

	var count int64
	db.Model(&models.Feedback{}).Where("run_id = ?", "run_42").Count(&count)
	if count != 1 {
		t.Errorf("expected a single row per run id, got %d", count)
	}
}
