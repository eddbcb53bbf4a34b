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
	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type mockActivityRepo struct {
	activities  map[string]*models.Activity
	entryCounts map[string]int
	deleted     []string
	lastCreated *models.Activity
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: map[string]*models.Activity{}, entryCounts: map[string]int{}}
}

func (m *mockActivityRepo) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	var out []models.Activity
	for _, a := range m.activities {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockActivityRepo) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	if a, ok := m.activities[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = "a-new"
	}
	m.activities[activity.ID] = activity
	m.lastCreated = activity
	return nil
}

func (m *mockActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	m.activities[activity.ID] = activity
	return nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id, userID string) error {
	delete(m.activities, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockActivityRepo) CountEntries(ctx context.Context, id string) (int, error) {
	return m.entryCounts[id], nil
}

func testActivityService(repo *mockActivityRepo) *ActivityService {
	return NewActivityService(repo, nil, validator.New(), zap.NewNop())
}

func TestActivityServiceCreateDefaults(t *testing.T) {
	repo := newMockActivityRepo()
	svc := testActivityService(repo)

	activity, err := svc.Create(context.Background(), "u1", dto.CreateActivityRequest{Title: "Deep Work", Category: " Study "})
	require.NoError(t, err)
	assert.Equal(t, engine.PolarityPositive, activity.Polarity)
	assert.Equal(t, "study", activity.Category)
	assert.True(t, activity.Active)
}

func TestActivityServiceGetForeignHidden(t *testing.T) {
	repo := newMockActivityRepo()
	repo.activities["a1"] = &models.Activity{ID: "a1", UserID: "other"}
	svc := testActivityService(repo)

	_, err := svc.Get(context.Background(), "u1", "a1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestActivityServiceDeleteBlockedByEntries(t *testing.T) {
	repo := newMockActivityRepo()
	repo.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1"}
	repo.entryCounts["a1"] = 3
	svc := testActivityService(repo)

	err := svc.Delete(context.Background(), "u1", "a1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestActivityServiceDelete(t *testing.T) {
	repo := newMockActivityRepo()
	repo.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1"}
	svc := testActivityService(repo)

	require.NoError(t, svc.Delete(context.Background(), "u1", "a1"))
	assert.Equal(t, []string{"a1"}, repo.deleted)
}

func TestActivityServiceUpdatePartial(t *testing.T) {
	repo := newMockActivityRepo()
	repo.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Title: "Old", Category: "study", Polarity: engine.PolarityPositive, Active: true}
	svc := testActivityService(repo)

	newTitle := "New title"
	activity, err := svc.Update(context.Background(), "u1", "a1", dto.UpdateActivityRequest{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "New title", activity.Title)
	assert.Equal(t, "study", activity.Category)
}
