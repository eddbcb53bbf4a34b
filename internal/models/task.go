package models

import "time"

// TaskType classifies how often a task is meant to recur.
type TaskType string

const (
	TaskDaily      TaskType = "daily"
	TaskWeekly     TaskType = "weekly"
	TaskRepeatable TaskType = "repeatable"
)

// Valid reports whether the type is one of the known recurrence kinds.
func (t TaskType) Valid() bool {
	switch t {
	case TaskDaily, TaskWeekly, TaskRepeatable:
		return true
	}
	return false
}

// TaskStatus tracks the completion state of a task.
type TaskStatus string

const (
	TaskOpen    TaskStatus = "open"
	TaskDone    TaskStatus = "done"
	TaskSkipped TaskStatus = "skipped"
)

// Valid reports whether the status is a known completion state.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskOpen, TaskDone, TaskSkipped:
		return true
	}
	return false
}

// Task is a recurring to-do item with an XP reward granted on completion.
type Task struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Type      TaskType   `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Status    TaskStatus `db:"status" json:"status"`
	RewardXP  int        `db:"reward_xp" json:"reward_xp"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskFilter narrows down task listings.
type TaskFilter struct {
	UserID   string
	Type     TaskType
	Status   TaskStatus
	Page     int
	PageSize int
}
