package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is owned by exactly one user and is only visible to that user.
// CategoryIDs, Tags and Subtasks live in JSON columns; deleting a category
// leaves a dangling reference behind.
type Task struct {
	ID          uuid.UUID    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index:idx_tasks_owner_status;index:idx_tasks_owner_priority;index:idx_tasks_owner_due;index:idx_tasks_owner_archived"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status" gorm:"not null;default:'pending';index:idx_tasks_owner_status"`
	Priority    TaskPriority `json:"priority" gorm:"not null;default:'medium';index:idx_tasks_owner_priority"`
	DueDate     *time.Time   `json:"due_date" gorm:"index:idx_tasks_owner_due"`
	CategoryIDs []string     `json:"categories" gorm:"serializer:json;type:text"`
	Tags        []string     `json:"tags" gorm:"serializer:json;type:text"`
	Subtasks    []Subtask    `json:"subtasks" gorm:"serializer:json;type:text"`
	SortOrder   int          `json:"order" gorm:"column:sort_order;not null;default:0"`
	Archived    bool         `json:"archived" gorm:"not null;default:false;index:idx_tasks_owner_archived"`
	CompletedAt *time.Time   `json:"completed_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SetStatus keeps CompletedAt in lockstep with Status: the pointer is
// non-nil iff the status is completed.
func (t *Task) SetStatus(status TaskStatus, now time.Time) {
	if status == StatusCompleted && t.Status != StatusCompleted {
		t.CompletedAt = &now
	} else if status != StatusCompleted {
		t.CompletedAt = nil
	}
	t.Status = status
}
