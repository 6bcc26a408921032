package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// TaskFilter narrows ListTasks. Zero values mean "not applied"; Archived
// defaults to false so archived tasks only show up when asked for.
type TaskFilter struct {
	Status   string
	Priority string
	Tag      string
	Search   string
	Archived bool
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

type TaskPage struct {
	Tasks      []models.Task `json:"tasks"`
	Pagination Pagination    `json:"pagination"`
}

type CreateTaskInput struct {
	Title       string              `json:"title" binding:"required,min=1,max=200"`
	Description string              `json:"description" binding:"max=2000"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	CategoryIDs []string            `json:"categories"`
	Tags        []string            `json:"tags"`
	Subtasks    []models.Subtask    `json:"subtasks"`
	SortOrder   int                 `json:"order"`
}

// UpdateTaskInput carries a partial merge; nil pointers leave the field
// untouched.
type UpdateTaskInput struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TaskStatus   `json:"status"`
	Priority    *models.TaskPriority `json:"priority"`
	DueDate     *time.Time           `json:"due_date"`
	CategoryIDs *[]string            `json:"categories"`
	Tags        *[]string            `json:"tags"`
	Subtasks    *[]models.Subtask    `json:"subtasks"`
	SortOrder   *int                 `json:"order"`
	Archived    *bool                `json:"archived"`
}

type OrderUpdate struct {
	TaskID    string `json:"id" binding:"required"`
	SortOrder int    `json:"order"`
}

type StatusCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, ownerID uuid.UUID, input CreateTaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error)
	ListTasks(db *gorm.DB, ownerID uuid.UUID, filter TaskFilter) (TaskPage, error)
	UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, input UpdateTaskInput) (models.Task, error)
	ToggleComplete(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error)
	ToggleArchive(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error)
	BulkUpdateOrder(db *gorm.DB, ownerID uuid.UUID, updates []OrderUpdate) error
	DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error
	BulkDeleteTasks(db *gorm.DB, ownerID uuid.UUID, taskIDs []string) error
	UpcomingTasks(db *gorm.DB, ownerID uuid.UUID, days int) ([]models.Task, error)
	OverdueTasks(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error)
	CountByStatus(db *gorm.DB, ownerID uuid.UUID) (StatusCounts, error)
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// sortColumns maps the filter's sort field names to ORDER BY expressions.
// Priority sorts by rank rather than alphabetically.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"order":     "sort_order",
	"priority":  "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END",
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, ownerID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	if err := validateCreateInput(&input); err != nil {
		return models.Task{}, err
	}

	now := time.Now()
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      ownerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CategoryIDs: input.CategoryIDs,
		Tags:        input.Tags,
		Subtasks:    input.Subtasks,
		SortOrder:   input.SortOrder,
	}
	if task.Status == models.StatusCompleted {
		task.CompletedAt = &now
	}

	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, failOp("create task", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, failOp("get task", err)
	}
	if task.UserID != ownerID {
		return models.Task{}, ErrForbidden
	}
	return task, nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, ownerID uuid.UUID, filter TaskFilter) (TaskPage, error) {
	query := db.Model(&models.Task{}).Where("user_id = ? AND archived = ?", ownerID, filter.Archived)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Tag != "" {
		query = query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", term, term, term)
	}

	// Count and page share the same predicate so totals never drift from
	// the returned rows.
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return TaskPage{}, failOp("count tasks", err)
	}

	sortExpr, ok := sortColumns[filter.SortBy]
	if !ok {
		sortExpr = "created_at"
	}
	order := strings.ToLower(filter.Order)
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	tasks := []models.Task{}
	err := query.
		Order(sortExpr + " " + order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return TaskPage{}, failOp("list tasks", err)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return TaskPage{
		Tasks: tasks,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: pageSize,
			Pages: pages,
		},
	}, nil
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, input UpdateTaskInput) (models.Task, error) {
	task, err := s.GetTaskByID(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if input.Title != nil {
		if len(*input.Title) < 1 || len(*input.Title) > 200 {
			return models.Task{}, fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		if len(*input.Description) > 2000 {
			return models.Task{}, fmt.Errorf("%w: description must be at most 2000 characters", ErrInvalidInput)
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return models.Task{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		task.SetStatus(*input.Status, time.Now())
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return models.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.CategoryIDs != nil {
		if err := validateIDList(*input.CategoryIDs); err != nil {
			return models.Task{}, err
		}
		task.CategoryIDs = *input.CategoryIDs
	}
	if input.Tags != nil {
		task.Tags = *input.Tags
	}
	if input.Subtasks != nil {
		task.Subtasks = *input.Subtasks
	}
	if input.SortOrder != nil {
		task.SortOrder = *input.SortOrder
	}
	if input.Archived != nil {
		task.Archived = *input.Archived
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, failOp("update task", err)
	}
	return task, nil
}

// ToggleComplete flips completed back to pending; anything not completed
// (in_progress included) becomes completed.
func (s *TaskServiceImpl) ToggleComplete(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	task, err := s.GetTaskByID(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if task.Status == models.StatusCompleted {
		task.SetStatus(models.StatusPending, time.Now())
	} else {
		task.SetStatus(models.StatusCompleted, time.Now())
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, failOp("toggle task completion", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) ToggleArchive(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	task, err := s.GetTaskByID(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	task.Archived = !task.Archived

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, failOp("toggle task archive", err)
	}
	return task, nil
}

// BulkUpdateOrder applies each update as a conditional write on
// (id, owner). Ids not owned by the caller match zero rows and are
// silently skipped.
func (s *TaskServiceImpl) BulkUpdateOrder(db *gorm.DB, ownerID uuid.UUID, updates []OrderUpdate) error {
	for _, update := range updates {
		taskID, err := uuid.FromString(update.TaskID)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidID, update.TaskID)
		}
		err = db.Model(&models.Task{}).
			Where("id = ? AND user_id = ?", taskID, ownerID).
			Update("sort_order", update.SortOrder).Error
		if err != nil {
			return failOp("update task order", err)
		}
	}
	return nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	if _, err := s.GetTaskByID(db, ownerID, taskID); err != nil {
		return err
	}
	if err := db.Delete(&models.Task{}, "id = ?", taskID).Error; err != nil {
		return failOp("delete task", err)
	}
	return nil
}

// BulkDeleteTasks filters by owner, so foreign ids are simply not deleted.
func (s *TaskServiceImpl) BulkDeleteTasks(db *gorm.DB, ownerID uuid.UUID, taskIDs []string) error {
	if err := validateIDList(taskIDs); err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return nil
	}
	err := db.Where("user_id = ? AND id IN ?", ownerID, taskIDs).
		Delete(&models.Task{}).Error
	if err != nil {
		return failOp("bulk delete tasks", err)
	}
	return nil
}

func (s *TaskServiceImpl) UpcomingTasks(db *gorm.DB, ownerID uuid.UUID, days int) ([]models.Task, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	limit := now.AddDate(0, 0, days)

	tasks := []models.Task{}
	err := db.Where(
		"user_id = ? AND archived = ? AND status <> ? AND due_date >= ? AND due_date <= ?",
		ownerID, false, models.StatusCompleted, now, limit,
	).Order("due_date asc").Find(&tasks).Error
	if err != nil {
		return nil, failOp("list upcoming tasks", err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) OverdueTasks(db *gorm.DB, ownerID uuid.UUID) ([]models.Task, error) {
	tasks := []models.Task{}
	err := db.Where(
		"user_id = ? AND archived = ? AND status <> ? AND due_date < ?",
		ownerID, false, models.StatusCompleted, time.Now(),
	).Order("due_date asc").Find(&tasks).Error
	if err != nil {
		return nil, failOp("list overdue tasks", err)
	}
	return tasks, nil
}

// CountByStatus is zero-filled: statuses with no matching tasks report 0.
func (s *TaskServiceImpl) CountByStatus(db *gorm.DB, ownerID uuid.UUID) (StatusCounts, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}
	err := db.Model(&models.Task{}).
		Select("status, COUNT(*) as count").
		Where("user_id = ? AND archived = ?", ownerID, false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, failOp("count tasks by status", err)
	}

	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case models.StatusPending:
			counts.Pending = row.Count
		case models.StatusInProgress:
			counts.InProgress = row.Count
		case models.StatusCompleted:
			counts.Completed = row.Count
		}
	}
	return counts, nil
}

func validateCreateInput(input *CreateTaskInput) error {
	if len(input.Title) < 1 || len(input.Title) > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", ErrInvalidInput)
	}
	if len(input.Description) > 2000 {
		return fmt.Errorf("%w: description must be at most 2000 characters", ErrInvalidInput)
	}
	if input.Status == "" {
		input.Status = models.StatusPending
	} else if !input.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	} else if !input.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}
	return validateIDList(input.CategoryIDs)
}

func validateIDList(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.FromString(id); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidID, id)
		}
	}
	return nil
}
