package services

import (
	"testing"
	"time"

	"taskify/backend/internal/models"
)

func TestGeneralStatsEmpty(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	stats, err := service.GeneralStats(db, owner)
	if err != nil {
		t.Fatalf("GeneralStats failed: %v", err)
	}
	if stats.TotalTasks != 0 {
		t.Errorf("expected 0 total tasks, got %d", stats.TotalTasks)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("expected completion rate 0 with no tasks, got %v", stats.CompletionRate)
	}
}

func TestGeneralStats(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	yesterday := time.Now().AddDate(0, 0, -1)
	mustCreateTask(t, db, owner, CreateTaskInput{
		Title:    "Overdue report",
		Priority: models.PriorityHigh,
		DueDate:  &yesterday,
	})
	mustCreateTask(t, db, owner, CreateTaskInput{
		Title:    "Finished chore",
		Priority: models.PriorityLow,
		Status:   models.StatusCompleted,
	})

	stats, err := service.GeneralStats(db, owner)
	if err != nil {
		t.Fatalf("GeneralStats failed: %v", err)
	}
	if stats.TotalTasks != 2 {
		t.Errorf("expected 2 total tasks, got %d", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 || stats.PendingTasks != 1 {
		t.Errorf("unexpected status split: %+v", stats)
	}
	if stats.OverdueTasks != 1 {
		t.Errorf("expected 1 overdue task, got %d", stats.OverdueTasks)
	}
	if stats.CompletionRate != 50.0 {
		t.Errorf("expected completion rate 50.0, got %v", stats.CompletionRate)
	}
	if stats.TasksThisMonth != 2 {
		t.Errorf("expected 2 tasks created this month, got %d", stats.TasksThisMonth)
	}
}

func TestCompletionRateRounding(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	mustCreateTask(t, db, owner, CreateTaskInput{Title: "A", Status: models.StatusCompleted})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "B"})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "C"})

	stats, err := service.GeneralStats(db, owner)
	if err != nil {
		t.Fatalf("GeneralStats failed: %v", err)
	}
	// 1/3 completed rounds to one decimal place.
	if stats.CompletionRate != 33.3 {
		t.Errorf("expected completion rate 33.3, got %v", stats.CompletionRate)
	}
}

func TestByPriorityZeroFill(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	mustCreateTask(t, db, owner, CreateTaskInput{Title: "A", Priority: models.PriorityHigh})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "B", Priority: models.PriorityHigh, Status: models.StatusCompleted})

	rows, err := service.ByPriority(db, owner)
	if err != nil {
		t.Fatalf("ByPriority failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected one row per priority, got %d", len(rows))
	}
	if rows[0].Priority != models.PriorityLow || rows[1].Priority != models.PriorityMedium || rows[2].Priority != models.PriorityHigh {
		t.Errorf("rows out of order: %+v", rows)
	}
	if rows[0].Total != 0 || rows[1].Total != 0 {
		t.Errorf("expected empty priorities to report zero, got %+v", rows)
	}
	if rows[2].Total != 2 || rows[2].Completed != 1 || rows[2].Pending != 1 {
		t.Errorf("unexpected high priority counts: %+v", rows[2])
	}
}

func TestByCategory(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	work := mustCreateCategory(t, db, owner, CreateCategoryInput{Name: "Work"})
	home := mustCreateCategory(t, db, owner, CreateCategoryInput{Name: "Home"})

	mustCreateTask(t, db, owner, CreateTaskInput{Title: "A", CategoryIDs: []string{work.ID.String()}})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "B", CategoryIDs: []string{work.ID.String()}})
	mustCreateTask(t, db, owner, CreateTaskInput{
		Title:       "C",
		Status:      models.StatusCompleted,
		CategoryIDs: []string{home.ID.String()},
	})

	rows, err := service.ByCategory(db, owner)
	if err != nil {
		t.Fatalf("ByCategory failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 (category, status) rows, got %d", len(rows))
	}
	// Sorted by category name: Home before Work.
	if rows[0].Category == nil || rows[0].Category.Name != "Home" || rows[0].Count != 1 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Category == nil || rows[1].Category.Name != "Work" || rows[1].Count != 2 {
		t.Errorf("unexpected second row: %+v", rows[1])
	}
}

func TestByCategoryDanglingReference(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	statsService := NewStatsService()
	categoryService := NewCategoryService()

	doomed := mustCreateCategory(t, db, owner, CreateCategoryInput{Name: "Doomed"})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "Orphan", CategoryIDs: []string{doomed.ID.String()}})

	if err := categoryService.DeleteCategory(db, owner, doomed.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	rows, err := statsService.ByCategory(db, owner)
	if err != nil {
		t.Fatalf("ByCategory failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for the dangling reference, got %d", len(rows))
	}
	if rows[0].Category != nil {
		t.Errorf("expected nil category for a dangling id, got %+v", rows[0].Category)
	}
	if rows[0].Count != 1 {
		t.Errorf("expected count 1, got %d", rows[0].Count)
	}
}

func TestWeeklyProductivity(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	mustCreateTask(t, db, owner, CreateTaskInput{Title: "A", Status: models.StatusCompleted})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "B", Status: models.StatusCompleted})
	mustCreateTask(t, db, owner, CreateTaskInput{Title: "Still open"})

	days, err := service.WeeklyProductivity(db, owner)
	if err != nil {
		t.Fatalf("WeeklyProductivity failed: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected a single bucket for today, got %d", len(days))
	}
	today := time.Now().Local().Format("2006-01-02")
	if days[0].Date != today {
		t.Errorf("expected bucket %s, got %s", today, days[0].Date)
	}
	if days[0].Count != 2 {
		t.Errorf("expected 2 completions today, got %d", days[0].Count)
	}
}

func TestProductivityOmitsEmptyDays(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "alice")
	service := NewStatsService()

	days, err := service.MonthlyProductivity(db, owner)
	if err != nil {
		t.Fatalf("MonthlyProductivity failed: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected no buckets without completions, got %+v", days)
	}
}

func TestStartOfWeekIsMonday(t *testing.T) {
	// Wednesday 2026-01-07 should fold back to Monday 2026-01-05.
	wednesday := time.Date(2026, 1, 7, 15, 30, 0, 0, time.UTC)
	got := startOfWeek(wednesday)
	want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Sunday belongs to the week that started six days earlier.
	sunday := time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC)
	got = startOfWeek(sunday)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	// Monday is its own week start.
	monday := time.Date(2026, 1, 5, 23, 59, 0, 0, time.UTC)
	got = startOfWeek(monday)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
