package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leveling-api/internal/models"
)

func TestListTasks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "status", "reward_xp", "created_at", "updated_at"}).
		AddRow("t1", "u1", "daily", "Morning run", "open", 10, now, now)
	mock.ExpectQuery("SELECT (.+) FROM tasks WHERE 1=1 AND user_id = \\$1 AND status = \\$2 ORDER BY updated_at DESC").
		WithArgs("u1", models.TaskOpen).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tasks WHERE 1=1 AND user_id = \\$1 AND status = \\$2").
		WithArgs("u1", models.TaskOpen).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tasks, total, err := repo.List(context.Background(), models.TaskFilter{UserID: "u1", Status: models.TaskOpen})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.TaskDaily, tasks[0].Type)
	assert.Equal(t, 10, tasks[0].RewardXP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(1, 1))

	task := &models.Task{UserID: "u1", Type: models.TaskWeekly, Title: "Review week", Status: models.TaskOpen, RewardXP: 25}
	err := repo.Create(context.Background(), task)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.False(t, task.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("DELETE FROM tasks WHERE id = \\$1 AND user_id = \\$2").
		WithArgs("t1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "t1", "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
