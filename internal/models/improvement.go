package models

import "time"

// ImprovementStatus tracks the lifecycle of an improvement request.
type ImprovementStatus string

const (
	ImprovementOpen       ImprovementStatus = "open"
	ImprovementInProgress ImprovementStatus = "in_progress"
	ImprovementResolved   ImprovementStatus = "resolved"
	ImprovementRejected   ImprovementStatus = "rejected"
)

// Valid reports whether the status is a known lifecycle state.
func (s ImprovementStatus) Valid() bool {
	switch s {
	case ImprovementOpen, ImprovementInProgress, ImprovementResolved, ImprovementRejected:
		return true
	}
	return false
}

// Improvement is a user-filed request to improve the tracker itself.
type Improvement struct {
	ID          string            `db:"id" json:"id"`
	UserID      string            `db:"user_id" json:"user_id"`
	Status      ImprovementStatus `db:"status" json:"status"`
	Title       string            `db:"title" json:"title"`
	Description string            `db:"description" json:"description"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// ImprovementFilter narrows down improvement listings.
type ImprovementFilter struct {
	UserID   string
	Status   ImprovementStatus
	Page     int
	PageSize int
}
