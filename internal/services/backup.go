package services

import (
	"errors"
	"log"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const ExportVersion = "1.0"

// ExportData is the versioned backup envelope. Category ids inside Tasks
// refer to the Categories slice and are remapped on import.
type ExportData struct {
	Version    string             `json:"version"`
	ExportDate time.Time          `json:"export_date"`
	User       models.UserSummary `json:"user"`
	Tasks      []models.Task      `json:"tasks"`
	Categories []models.Category  `json:"categories"`
}

type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type BackupService interface {
	Export(db *gorm.DB, ownerID uuid.UUID) (ExportData, error)
	Import(db *gorm.DB, ownerID uuid.UUID, data ExportData) (ImportResult, error)
	DeleteAllData(db *gorm.DB, ownerID uuid.UUID) error
}

type BackupServiceImpl struct {
	taskService     TaskService
	categoryService CategoryService
}

func NewBackupService(taskService TaskService, categoryService CategoryService) *BackupServiceImpl {
	return &BackupServiceImpl{
		taskService:     taskService,
		categoryService: categoryService,
	}
}

func (s *BackupServiceImpl) Export(db *gorm.DB, ownerID uuid.UUID) (ExportData, error) {
	var user models.User
	if err := db.Where("id = ?", ownerID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ExportData{}, ErrNotFound
		}
		return ExportData{}, failOp("export data", err)
	}

	tasks := []models.Task{}
	if err := db.Where("user_id = ?", ownerID).Find(&tasks).Error; err != nil {
		return ExportData{}, failOp("export tasks", err)
	}

	categories := []models.Category{}
	if err := db.Where("user_id = ?", ownerID).Find(&categories).Error; err != nil {
		return ExportData{}, failOp("export categories", err)
	}

	return ExportData{
		Version:    ExportVersion,
		ExportDate: time.Now(),
		User:       user.Summary(),
		Tasks:      tasks,
		Categories: categories,
	}, nil
}

// Import is best-effort: a malformed record is logged and counted as
// skipped, it never aborts the remaining items. Only a structurally invalid
// envelope is rejected outright.
func (s *BackupServiceImpl) Import(db *gorm.DB, ownerID uuid.UUID, data ExportData) (ImportResult, error) {
	if data.Version == "" || data.Tasks == nil || data.Categories == nil {
		return ImportResult{}, ErrInvalidEnvelope
	}

	var result ImportResult

	// Categories first, building the old id -> new id mapping tasks need.
	// A name match under the importing owner reuses the existing category.
	idMap := make(map[string]string, len(data.Categories))
	for _, incoming := range data.Categories {
		oldID := incoming.ID.String()

		var existing models.Category
		err := db.Where("user_id = ? AND name = ?", ownerID, incoming.Name).First(&existing).Error
		if err == nil {
			idMap[oldID] = existing.ID.String()
			result.Skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("import: category %q lookup failed: %v", incoming.Name, err)
			result.Skipped++
			continue
		}

		created, err := s.categoryService.CreateCategory(db, ownerID, CreateCategoryInput{
			Name:        incoming.Name,
			Color:       incoming.Color,
			Description: incoming.Description,
			Icon:        incoming.Icon,
		})
		if err != nil {
			log.Printf("import: skipping category %q: %v", incoming.Name, err)
			result.Skipped++
			continue
		}
		idMap[oldID] = created.ID.String()
		result.Imported++
	}

	for _, incoming := range data.Tasks {
		remapped := make([]string, 0, len(incoming.CategoryIDs))
		for _, oldID := range incoming.CategoryIDs {
			if newID, ok := idMap[oldID]; ok {
				remapped = append(remapped, newID)
			}
		}

		_, err := s.taskService.CreateTask(db, ownerID, CreateTaskInput{
			Title:       incoming.Title,
			Description: incoming.Description,
			Status:      incoming.Status,
			Priority:    incoming.Priority,
			DueDate:     incoming.DueDate,
			CategoryIDs: remapped,
			Tags:        incoming.Tags,
			Subtasks:    incoming.Subtasks,
			SortOrder:   incoming.SortOrder,
		})
		if err != nil {
			log.Printf("import: skipping task %q: %v", incoming.Title, err)
			result.Skipped++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// DeleteAllData is the one unconditional bulk delete: every task and every
// category owned by the user, irreversibly.
func (s *BackupServiceImpl) DeleteAllData(db *gorm.DB, ownerID uuid.UUID) error {
	if err := db.Where("user_id = ?", ownerID).Delete(&models.Task{}).Error; err != nil {
		return failOp("delete all tasks", err)
	}
	if err := db.Where("user_id = ?", ownerID).Delete(&models.Category{}).Error; err != nil {
		return failOp("delete all categories", err)
	}
	return nil
}
