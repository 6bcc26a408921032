package services

import (
	"math"
	"sort"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type GeneralStats struct {
	TotalTasks      int64   `json:"total_tasks"`
	CompletedTasks  int64   `json:"completed_tasks"`
	PendingTasks    int64   `json:"pending_tasks"`
	InProgressTasks int64   `json:"in_progress_tasks"`
	OverdueTasks    int64   `json:"overdue_tasks"`
	TasksThisWeek   int64   `json:"tasks_this_week"`
	TasksThisMonth  int64   `json:"tasks_this_month"`
	CompletionRate  float64 `json:"completion_rate"`
}

type PriorityStats struct {
	Priority   models.TaskPriority `json:"priority"`
	Total      int64               `json:"total"`
	Completed  int64               `json:"completed"`
	Pending    int64               `json:"pending"`
	InProgress int64               `json:"in_progress"`
}

// CategoryStatusCount is one row per (category, status) pair observed among
// the owner's non-archived tasks. Category is nil when the referenced id no
// longer resolves.
type CategoryStatusCount struct {
	Category *models.Category  `json:"category"`
	Status   models.TaskStatus `json:"status"`
	Count    int64             `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type StatsService interface {
	GeneralStats(db *gorm.DB, ownerID uuid.UUID) (GeneralStats, error)
	ByPriority(db *gorm.DB, ownerID uuid.UUID) ([]PriorityStats, error)
	ByCategory(db *gorm.DB, ownerID uuid.UUID) ([]CategoryStatusCount, error)
	WeeklyProductivity(db *gorm.DB, ownerID uuid.UUID) ([]DailyCount, error)
	MonthlyProductivity(db *gorm.DB, ownerID uuid.UUID) ([]DailyCount, error)
}

type StatsServiceImpl struct{}

func NewStatsService() *StatsServiceImpl {
	return &StatsServiceImpl{}
}

// startOfWeek is the most recent Monday 00:00 local time.
func startOfWeek(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

func (s *StatsServiceImpl) GeneralStats(db *gorm.DB, ownerID uuid.UUID) (GeneralStats, error) {
	counts, err := NewTaskService().CountByStatus(db, ownerID)
	if err != nil {
		return GeneralStats{}, err
	}

	stats := GeneralStats{
		CompletedTasks:  counts.Completed,
		PendingTasks:    counts.Pending,
		InProgressTasks: counts.InProgress,
	}
	stats.TotalTasks = counts.Pending + counts.InProgress + counts.Completed

	now := time.Now()
	active := func() *gorm.DB {
		return db.Model(&models.Task{}).Where("user_id = ? AND archived = ?", ownerID, false)
	}

	err = active().
		Where("status <> ? AND due_date < ?", models.StatusCompleted, now).
		Count(&stats.OverdueTasks).Error
	if err != nil {
		return GeneralStats{}, failOp("count overdue tasks", err)
	}

	if err := active().Where("created_at >= ?", startOfWeek(now)).Count(&stats.TasksThisWeek).Error; err != nil {
		return GeneralStats{}, failOp("count tasks this week", err)
	}
	if err := active().Where("created_at >= ?", startOfMonth(now)).Count(&stats.TasksThisMonth).Error; err != nil {
		return GeneralStats{}, failOp("count tasks this month", err)
	}

	if stats.TotalTasks > 0 {
		rate := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = math.Round(rate*10) / 10
	}

	return stats, nil
}

// ByPriority is computed from a single count grouped by (priority, status),
// zero-filled so every priority reports a row.
func (s *StatsServiceImpl) ByPriority(db *gorm.DB, ownerID uuid.UUID) ([]PriorityStats, error) {
	var rows []struct {
		Priority models.TaskPriority
		Status   models.TaskStatus
		Count    int64
	}
	err := db.Model(&models.Task{}).
		Select("priority, status, COUNT(*) as count").
		Where("user_id = ? AND archived = ?", ownerID, false).
		Group("priority").Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, failOp("count tasks by priority", err)
	}

	byPriority := map[models.TaskPriority]*PriorityStats{}
	order := []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
	for _, p := range order {
		byPriority[p] = &PriorityStats{Priority: p}
	}

	for _, row := range rows {
		entry, ok := byPriority[row.Priority]
		if !ok {
			continue
		}
		entry.Total += row.Count
		switch row.Status {
		case models.StatusCompleted:
			entry.Completed += row.Count
		case models.StatusPending:
			entry.Pending += row.Count
		case models.StatusInProgress:
			entry.InProgress += row.Count
		}
	}

	result := make([]PriorityStats, 0, len(order))
	for _, p := range order {
		result = append(result, *byPriority[p])
	}
	return result, nil
}

// ByCategory groups (category id, status) pairs in memory because category
// references live in a JSON column, then resolves the category rows in one
// query. Unresolvable ids produce rows with a nil category.
func (s *StatsServiceImpl) ByCategory(db *gorm.DB, ownerID uuid.UUID) ([]CategoryStatusCount, error) {
	tasks := []models.Task{}
	err := db.Select("id", "status", "category_ids").
		Where("user_id = ? AND archived = ?", ownerID, false).
		Find(&tasks).Error
	if err != nil {
		return nil, failOp("load tasks for category stats", err)
	}

	type key struct {
		categoryID string
		status     models.TaskStatus
	}
	grouped := map[key]int64{}
	for _, task := range tasks {
		for _, categoryID := range task.CategoryIDs {
			grouped[key{categoryID, task.Status}]++
		}
	}
	if len(grouped) == 0 {
		return []CategoryStatusCount{}, nil
	}

	ids := make([]string, 0, len(grouped))
	seen := map[string]bool{}
	for k := range grouped {
		if !seen[k.categoryID] {
			seen[k.categoryID] = true
			ids = append(ids, k.categoryID)
		}
	}

	categories := []models.Category{}
	if err := db.Where("user_id = ? AND id IN ?", ownerID, ids).Find(&categories).Error; err != nil {
		return nil, failOp("resolve categories", err)
	}
	resolved := map[string]*models.Category{}
	for i := range categories {
		resolved[categories[i].ID.String()] = &categories[i]
	}

	result := make([]CategoryStatusCount, 0, len(grouped))
	for k, count := range grouped {
		result = append(result, CategoryStatusCount{
			Category: resolved[k.categoryID],
			Status:   k.status,
			Count:    count,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		ci, cj := "", ""
		if result[i].Category != nil {
			ci = result[i].Category.Name
		}
		if result[j].Category != nil {
			cj = result[j].Category.Name
		}
		if ci != cj {
			return ci < cj
		}
		return result[i].Status < result[j].Status
	})
	return result, nil
}

func (s *StatsServiceImpl) WeeklyProductivity(db *gorm.DB, ownerID uuid.UUID) ([]DailyCount, error) {
	return s.productivitySince(db, ownerID, startOfWeek(time.Now()))
}

func (s *StatsServiceImpl) MonthlyProductivity(db *gorm.DB, ownerID uuid.UUID) ([]DailyCount, error) {
	return s.productivitySince(db, ownerID, startOfMonth(time.Now()))
}

// productivitySince buckets completion timestamps per calendar day in
// memory, keeping one code path for the postgres and sqlite drivers. Days
// with no completions are omitted.
func (s *StatsServiceImpl) productivitySince(db *gorm.DB, ownerID uuid.UUID, since time.Time) ([]DailyCount, error) {
	tasks := []models.Task{}
	err := db.Select("id", "completed_at").
		Where("user_id = ? AND status = ? AND completed_at >= ?",
			ownerID, models.StatusCompleted, since).
		Find(&tasks).Error
	if err != nil {
		return nil, failOp("load productivity data", err)
	}

	buckets := map[string]int64{}
	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		buckets[task.CompletedAt.Local().Format("2006-01-02")]++
	}

	result := make([]DailyCount, 0, len(buckets))
	for day, count := range buckets {
		result = append(result, DailyCount{Date: day, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}
