package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
)

func TestListActivities(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "category", "polarity", "base_units", "weights", "caps", "active", "created_at", "updated_at"}).
		AddRow("a1", "u1", "Deep work", "study", "positive", nil, []byte(`{"knowledge":0.6,"clarity":0.2}`), []byte(`{}`), true, now, now)
	mock.ExpectQuery("SELECT (.+) FROM activities WHERE 1=1 AND user_id = \\$1 ORDER BY title ASC").
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM activities WHERE 1=1 AND user_id = \\$1").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	activities, total, err := repo.List(context.Background(), models.ActivityFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, engine.PolarityPositive, activities[0].Polarity)
	assert.InDelta(t, 0.6, activities[0].Weights["knowledge"], 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateActivity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectExec("INSERT INTO activities").WillReturnResult(sqlmock.NewResult(1, 1))

	activity := &models.Activity{UserID: "u1", Title: "Run", Category: "training", Polarity: engine.PolarityPositive, Active: true}
	err := repo.Create(context.Background(), activity)
	require.NoError(t, err)
	assert.NotEmpty(t, activity.ID)
	assert.False(t, activity.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountEntries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM entries WHERE activity_id = \\$1").
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountEntries(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
