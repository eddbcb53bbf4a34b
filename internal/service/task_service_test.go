package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type mockTaskRepo struct {
	tasks   map[string]*models.Task
	deleted []string
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: map[string]*models.Task{}}
}

func (m *mockTaskRepo) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	var out []models.Task
	for _, task := range m.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, len(out), nil
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		return task, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTaskRepo) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = "t-new"
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) Update(ctx context.Context, task *models.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepo) Delete(ctx context.Context, id, userID string) error {
	delete(m.tasks, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func testTaskService(repo *mockTaskRepo) *TaskService {
	return NewTaskService(repo, validator.New(), zap.NewNop())
}

func TestTaskServiceCreateDefaults(t *testing.T) {
	repo := newMockTaskRepo()
	svc := testTaskService(repo)

	task, err := svc.Create(context.Background(), "u1", dto.CreateTaskRequest{Type: models.TaskDaily, Title: "  Morning run  "})
	require.NoError(t, err)
	assert.Equal(t, "Morning run", task.Title)
	assert.Equal(t, models.TaskOpen, task.Status)
	assert.Equal(t, 0, task.RewardXP)
}

func TestTaskServiceCreateRejectsBadType(t *testing.T) {
	repo := newMockTaskRepo()
	svc := testTaskService(repo)

	_, err := svc.Create(context.Background(), "u1", dto.CreateTaskRequest{Type: "monthly", Title: "Plan"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceUpdatePartial(t *testing.T) {
	repo := newMockTaskRepo()
	repo.tasks["t1"] = &models.Task{ID: "t1", UserID: "u1", Type: models.TaskDaily, Title: "Morning run", Status: models.TaskOpen, RewardXP: 10}
	svc := testTaskService(repo)

	done := models.TaskDone
	task, err := svc.Update(context.Background(), "u1", "t1", dto.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, task.Status)
	// Untouched fields keep their stored value.
	assert.Equal(t, "Morning run", task.Title)
	assert.Equal(t, 10, task.RewardXP)
}

func TestTaskServiceGetForeignHidden(t *testing.T) {
	repo := newMockTaskRepo()
	repo.tasks["t1"] = &models.Task{ID: "t1", UserID: "other"}
	svc := testTaskService(repo)

	_, err := svc.Get(context.Background(), "u1", "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTaskServiceDelete(t *testing.T) {
	repo := newMockTaskRepo()
	repo.tasks["t1"] = &models.Task{ID: "t1", UserID: "u1"}
	svc := testTaskService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1", "t1"))
	assert.Equal(t, []string{"t1"}, repo.deleted)
}
