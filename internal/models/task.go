// internal/models/task.go
package models

import "time"

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
// Status is the completion flag: true once the task is done.
type Task struct {
	ID                    int64        `json:"id"`
	UserID                int64        `json:"user_id"`
	ParentTaskID          *int64       `json:"parent_task_id,omitempty"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	DateTime              *time.Time   `json:"date_time,omitempty"`
	Priority              TaskPriority `json:"priority"`
	Status                bool         `json:"status"`
	Position              int          `json:"position"`
	Category              *string      `json:"category,omitempty"`
	Tags                  []string     `json:"tags"`
	ReminderEnabled       bool         `json:"reminder_enabled"`
	ReminderMinutesBefore int          `json:"reminder_minutes_before"`
	LastRemindedAt        *time.Time   `json:"last_reminded_at,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// TaskCreate is the payload for POST /api/tasks.
type TaskCreate struct {
	Title                 string       `json:"title" binding:"required"`
	Description           string       `json:"description"`
	DateTime              *time.Time   `json:"date_time"`
	Priority              TaskPriority `json:"priority"`
	Position              int          `json:"position"`
	Category              *string      `json:"category"`
	Tags                  []string     `json:"tags"`
	ParentTaskID          *int64       `json:"parent_task_id"`
	ReminderEnabled       bool         `json:"reminder_enabled"`
	ReminderMinutesBefore *int         `json:"reminder_minutes_before"`
}

// TaskUpdate is a partial update; nil fields are left alone.
type TaskUpdate struct {
	Title                 *string       `json:"title"`
	Description           *string       `json:"description"`
	DateTime              *time.Time    `json:"date_time"`
	Priority              *TaskPriority `json:"priority"`
	Status                *bool         `json:"status"`
	Position              *int          `json:"position"`
	Category              *string       `json:"category"`
	Tags                  *[]string     `json:"tags"`
	ReminderEnabled       *bool         `json:"reminder_enabled"`
	ReminderMinutesBefore *int          `json:"reminder_minutes_before"`
}

// TaskFilter defines the available parameters for filtering tasks.
// Tasks are always scoped to UserID.
type TaskFilter struct {
	UserID   int64
	Status   *bool
	Priority *TaskPriority
	Category *string
	ParentID *int64
	// TopLevel limits the result to tasks without a parent.
	TopLevel bool
}

// Reminder is a task whose reminder window has opened, joined with the owner's chat.
type Reminder struct {
	TaskID   int64
	Title    string
	DateTime time.Time
	ChatID   int64
}
