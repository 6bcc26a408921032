package services

import (
	"testing"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Token{}, &models.Category{}, &models.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) uuid.UUID {
	t.Helper()
	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     "user",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user.ID
}

func mustCreateTask(t *testing.T, db *gorm.DB, ownerID uuid.UUID, input CreateTaskInput) models.Task {
	t.Helper()
	task, err := NewTaskService().CreateTask(db, ownerID, input)
	if err != nil {
		t.Fatalf("failed to create task %q: %v", input.Title, err)
	}
	return task
}

func mustCreateCategory(t *testing.T, db *gorm.DB, ownerID uuid.UUID, input CreateCategoryInput) models.Category {
	t.Helper()
	category, err := NewCategoryService().CreateCategory(db, ownerID, input)
	if err != nil {
		t.Fatalf("failed to create category %q: %v", input.Name, err)
	}
	return category
}
