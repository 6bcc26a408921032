package services

import (
	"fmt"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	taskCacheTTL  = 5 * time.Minute
	statsCacheTTL = 1 * time.Minute
)

func taskKey(taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s", taskID)
}

func countsKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("counts:%s", ownerID)
}

func statsKey(ownerID uuid.UUID, name string) string {
	return fmt.Sprintf("stats:%s:%s", ownerID, name)
}

// CachedTaskService decorates a TaskService with read-through caching for
// single-task reads and status counts. Every mutation drops the owner's
// cached entries, stats included, so the reporters never serve data from
// before the write.
type CachedTaskService struct {
	TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, c cache.Cache) *CachedTaskService {
	return &CachedTaskService{TaskService: inner, cache: c}
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	var task models.Task
	if err := s.cache.Get(taskKey(taskID), &task); err == nil {
		// Ownership is enforced on cached entries too.
		if task.UserID != ownerID {
			return models.Task{}, ErrForbidden
		}
		return task, nil
	}

	task, err := s.TaskService.GetTaskByID(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	s.cache.Set(taskKey(taskID), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) CountByStatus(db *gorm.DB, ownerID uuid.UUID) (StatusCounts, error) {
	var counts StatusCounts
	if err := s.cache.Get(countsKey(ownerID), &counts); err == nil {
		return counts, nil
	}

	counts, err := s.TaskService.CountByStatus(db, ownerID)
	if err != nil {
		return StatusCounts{}, err
	}
	s.cache.Set(countsKey(ownerID), counts, statsCacheTTL)
	return counts, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, ownerID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	task, err := s.TaskService.CreateTask(db, ownerID, input)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidateOwner(ownerID)
	return task, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, ownerID, taskID uuid.UUID, input UpdateTaskInput) (models.Task, error) {
	task, err := s.TaskService.UpdateTask(db, ownerID, taskID, input)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidateTask(ownerID, taskID)
	return task, nil
}

func (s *CachedTaskService) ToggleComplete(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	task, err := s.TaskService.ToggleComplete(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidateTask(ownerID, taskID)
	return task, nil
}

func (s *CachedTaskService) ToggleArchive(db *gorm.DB, ownerID, taskID uuid.UUID) (models.Task, error) {
	task, err := s.TaskService.ToggleArchive(db, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidateTask(ownerID, taskID)
	return task, nil
}

func (s *CachedTaskService) BulkUpdateOrder(db *gorm.DB, ownerID uuid.UUID, updates []OrderUpdate) error {
	if err := s.TaskService.BulkUpdateOrder(db, ownerID, updates); err != nil {
		return err
	}
	for _, update := range updates {
		if taskID, err := uuid.FromString(update.TaskID); err == nil {
			s.cache.Delete(taskKey(taskID))
		}
	}
	s.invalidateOwner(ownerID)
	return nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, ownerID, taskID uuid.UUID) error {
	if err := s.TaskService.DeleteTask(db, ownerID, taskID); err != nil {
		return err
	}
	s.invalidateTask(ownerID, taskID)
	return nil
}

func (s *CachedTaskService) BulkDeleteTasks(db *gorm.DB, ownerID uuid.UUID, taskIDs []string) error {
	if err := s.TaskService.BulkDeleteTasks(db, ownerID, taskIDs); err != nil {
		return err
	}
	for _, id := range taskIDs {
		if taskID, err := uuid.FromString(id); err == nil {
			s.cache.Delete(taskKey(taskID))
		}
	}
	s.invalidateOwner(ownerID)
	return nil
}

func (s *CachedTaskService) invalidateTask(ownerID, taskID uuid.UUID) {
	s.cache.Delete(taskKey(taskID))
	s.invalidateOwner(ownerID)
}

func (s *CachedTaskService) invalidateOwner(ownerID uuid.UUID) {
	s.cache.Delete(countsKey(ownerID))
	s.cache.DeletePattern(statsKey(ownerID, "*"))
}

// CachedStatsService holds reporter output for a short TTL. Task mutations
// routed through CachedTaskService evict these keys eagerly.
type CachedStatsService struct {
	StatsService
	cache cache.Cache
}

func NewCachedStatsService(inner StatsService, c cache.Cache) *CachedStatsService {
	return &CachedStatsService{StatsService: inner, cache: c}
}

func (s *CachedStatsService) GeneralStats(db *gorm.DB, ownerID uuid.UUID) (GeneralStats, error) {
	var stats GeneralStats
	key := statsKey(ownerID, "general")
	if err := s.cache.Get(key, &stats); err == nil {
		return stats, nil
	}

	stats, err := s.StatsService.GeneralStats(db, ownerID)
	if err != nil {
		return GeneralStats{}, err
	}
	s.cache.Set(key, stats, statsCacheTTL)
	return stats, nil
}

func (s *CachedStatsService) ByPriority(db *gorm.DB, ownerID uuid.UUID) ([]PriorityStats, error) {
	var stats []PriorityStats
	key := statsKey(ownerID, "priority")
	if err := s.cache.Get(key, &stats); err == nil {
		return stats, nil
	}

	stats, err := s.StatsService.ByPriority(db, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, stats, statsCacheTTL)
	return stats, nil
}
