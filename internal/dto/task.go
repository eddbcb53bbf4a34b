package dto

import "github.com/noah-isme/leveling-api/internal/models"

// CreateTaskRequest is the payload for adding a recurring task.
type CreateTaskRequest struct {
	Type     models.TaskType   `json:"type" validate:"required,oneof=daily weekly repeatable"`
	Title    string            `json:"title" validate:"required,min=1,max=160"`
	Status   models.TaskStatus `json:"status" validate:"omitempty,oneof=open done skipped"`
	RewardXP *int              `json:"reward_xp" validate:"omitempty,gte=0"`
}

// UpdateTaskRequest patches a task; omitted fields keep their stored value.
type UpdateTaskRequest struct {
	Type     *models.TaskType   `json:"type" validate:"omitempty,oneof=daily weekly repeatable"`
	Title    *string            `json:"title" validate:"omitempty,min=1,max=160"`
	Status   *models.TaskStatus `json:"status" validate:"omitempty,oneof=open done skipped"`
	RewardXP *int               `json:"reward_xp" validate:"omitempty,gte=0"`
}
