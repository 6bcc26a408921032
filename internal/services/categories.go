package services

import (
	"errors"
	"fmt"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CreateCategoryInput struct {
	Name        string `json:"name" binding:"required,min=1,max=50"`
	Color       string `json:"color"`
	Description string `json:"description" binding:"max=200"`
	Icon        string `json:"icon"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

// CategoryWithCount annotates a category with the number of non-archived
// tasks referencing it.
type CategoryWithCount struct {
	models.Category
	TaskCount int64 `json:"task_count"`
}

type CategoryService interface {
	CreateCategory(db *gorm.DB, ownerID uuid.UUID, input CreateCategoryInput) (models.Category, error)
	GetCategoryByID(db *gorm.DB, ownerID, categoryID uuid.UUID) (models.Category, error)
	ListCategories(db *gorm.DB, ownerID uuid.UUID) ([]CategoryWithCount, error)
	UpdateCategory(db *gorm.DB, ownerID, categoryID uuid.UUID, input UpdateCategoryInput) (models.Category, error)
	DeleteCategory(db *gorm.DB, ownerID, categoryID uuid.UUID) error
}

type CategoryServiceImpl struct{}

func NewCategoryService() *CategoryServiceImpl {
	return &CategoryServiceImpl{}
}

func (s *CategoryServiceImpl) CreateCategory(db *gorm.DB, ownerID uuid.UUID, input CreateCategoryInput) (models.Category, error) {
	if input.Color == "" {
		input.Color = "#808080"
	}
	if err := validateCategoryFields(input.Name, input.Color, input.Description); err != nil {
		return models.Category{}, err
	}

	var existing models.Category
	err := db.Where("user_id = ? AND name = ?", ownerID, input.Name).First(&existing).Error
	if err == nil {
		return models.Category{}, ErrDuplicateCategory
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, failOp("create category", err)
	}

	category := models.Category{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      ownerID,
		Name:        input.Name,
		Color:       input.Color,
		Description: input.Description,
		Icon:        input.Icon,
	}
	if err := db.Create(&category).Error; err != nil {
		return models.Category{}, failOp("create category", err)
	}
	return category, nil
}

func (s *CategoryServiceImpl) GetCategoryByID(db *gorm.DB, ownerID, categoryID uuid.UUID) (models.Category, error) {
	var category models.Category
	if err := db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, ErrNotFound
		}
		return models.Category{}, failOp("get category", err)
	}
	if category.UserID != ownerID {
		return models.Category{}, ErrForbidden
	}
	return category, nil
}

func (s *CategoryServiceImpl) ListCategories(db *gorm.DB, ownerID uuid.UUID) ([]CategoryWithCount, error) {
	categories := []models.Category{}
	err := db.Where("user_id = ?", ownerID).Order("name asc").Find(&categories).Error
	if err != nil {
		return nil, failOp("list categories", err)
	}

	counts := countTasksPerCategory(db, ownerID)

	result := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		result = append(result, CategoryWithCount{
			Category:  category,
			TaskCount: counts[category.ID.String()],
		})
	}
	return result, nil
}

func (s *CategoryServiceImpl) UpdateCategory(db *gorm.DB, ownerID, categoryID uuid.UUID, input UpdateCategoryInput) (models.Category, error) {
	category, err := s.GetCategoryByID(db, ownerID, categoryID)
	if err != nil {
		return models.Category{}, err
	}

	if input.Name != nil && *input.Name != category.Name {
		var existing models.Category
		err := db.Where("user_id = ? AND name = ? AND id <> ?", ownerID, *input.Name, categoryID).
			First(&existing).Error
		if err == nil {
			return models.Category{}, ErrDuplicateCategory
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, failOp("update category", err)
		}
		category.Name = *input.Name
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}

	if err := validateCategoryFields(category.Name, category.Color, category.Description); err != nil {
		return models.Category{}, err
	}

	if err := db.Save(&category).Error; err != nil {
		return models.Category{}, failOp("update category", err)
	}
	return category, nil
}

// DeleteCategory does not cascade: tasks keep a dangling reference to the
// removed id.
func (s *CategoryServiceImpl) DeleteCategory(db *gorm.DB, ownerID, categoryID uuid.UUID) error {
	if _, err := s.GetCategoryByID(db, ownerID, categoryID); err != nil {
		return err
	}
	if err := db.Delete(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		return failOp("delete category", err)
	}
	return nil
}

// countTasksPerCategory favors availability over correctness: any failure
// degrades to an empty map instead of propagating.
func countTasksPerCategory(db *gorm.DB, ownerID uuid.UUID) map[string]int64 {
	tasks := []models.Task{}
	err := db.Select("id", "category_ids").
		Where("user_id = ? AND archived = ?", ownerID, false).
		Find(&tasks).Error
	if err != nil {
		return map[string]int64{}
	}

	counts := make(map[string]int64)
	for _, task := range tasks {
		for _, id := range task.CategoryIDs {
			counts[id]++
		}
	}
	return counts
}

func validateCategoryFields(name, color, description string) error {
	if len(name) < 1 || len(name) > 50 {
		return fmt.Errorf("%w: name must be 1-50 characters", ErrInvalidInput)
	}
	if !models.IsValidHexColor(color) {
		return fmt.Errorf("%w: color must be a #rgb or #rrggbb hex string", ErrInvalidInput)
	}
	if len(description) > 200 {
		return fmt.Errorf("%w: description must be at most 200 characters", ErrInvalidInput)
	}
	return nil
}
