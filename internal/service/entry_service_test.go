package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/dto"
	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type mockEntryStore struct {
	entries    map[string]*models.Entry
	activities map[string]*models.Activity
	deleted    []string
}

func newMockEntryStore() *mockEntryStore {
	return &mockEntryStore{
		entries:    map[string]*models.Entry{},
		activities: map[string]*models.Activity{},
	}
}

func (m *mockEntryStore) detail(entry *models.Entry) *models.EntryDetail {
	activity := m.activities[entry.ActivityID]
	return &models.EntryDetail{
		Entry:         *entry,
		ActivityTitle: activity.Title,
		Category:      activity.Category,
		Polarity:      activity.Polarity,
		BaseUnits:     activity.BaseUnits,
		Weights:       activity.Weights,
		Caps:          activity.Caps,
	}
}

func (m *mockEntryStore) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error) {
	var out []models.EntryDetail
	for _, entry := range m.entries {
		if filter.UserID != "" && entry.UserID != filter.UserID {
			continue
		}
		out = append(out, *m.detail(entry))
	}
	return out, len(out), nil
}

func (m *mockEntryStore) FindByID(ctx context.Context, id string) (*models.EntryDetail, error) {
	if entry, ok := m.entries[id]; ok {
		return m.detail(entry), nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEntryStore) Create(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = "e" + time.Now().Format("150405.000000")
	}
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockEntryStore) Update(ctx context.Context, entry *models.Entry) error {
	stored := *entry
	m.entries[entry.ID] = &stored
	return nil
}

func (m *mockEntryStore) Delete(ctx context.Context, id, userID string) error {
	delete(m.entries, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockActivityFinder struct {
	store *mockEntryStore
}

func (m *mockActivityFinder) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	if activity, ok := m.store.activities[id]; ok {
		return activity, nil
	}
	return nil, sql.ErrNoRows
}

type recordingScheduler struct {
	scheduled []string
}

func (r *recordingScheduler) Schedule(userID string) {
	r.scheduled = append(r.scheduled, userID)
}

func testEntryService(store *mockEntryStore, scheduler *recordingScheduler) *EntryService {
	return NewEntryService(store, &mockActivityFinder{store: store}, scheduler, nil, validator.New(), zap.NewNop())
}

func TestEntryServiceCreate(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Title: "Deep work", Category: "study", Polarity: engine.PolarityPositive, Active: true}
	scheduler := &recordingScheduler{}
	svc := testEntryService(store, scheduler)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), "u1", dto.CreateEntryRequest{
		ActivityID: "a1",
		StartAt:    start,
		EndAt:      start.Add(90 * time.Minute),
		Origin:     engine.OriginTimer,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, detail.DurationMin)
	assert.Equal(t, "Deep work", detail.ActivityTitle)
	assert.Equal(t, []string{"u1"}, scheduler.scheduled)
}

func TestEntryServiceCreateInvalidPeriod(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Active: true}
	scheduler := &recordingScheduler{}
	svc := testEntryService(store, scheduler)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "u1", dto.CreateEntryRequest{ActivityID: "a1", StartAt: start, EndAt: start})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidPeriod.Code, appErrors.FromError(err).Code)
	assert.Empty(t, scheduler.scheduled)
}

func TestEntryServiceCreateForeignActivity(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "other", Active: true}
	svc := testEntryService(store, &recordingScheduler{})

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "u1", dto.CreateEntryRequest{ActivityID: "a1", StartAt: start, EndAt: start.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEntryServiceCreateInactiveActivity(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Active: false}
	svc := testEntryService(store, &recordingScheduler{})

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), "u1", dto.CreateEntryRequest{ActivityID: "a1", StartAt: start, EndAt: start.Add(time.Hour)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEntryServiceUpdateRejectsInvertedPeriod(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Active: true}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.entries["e1"] = &models.Entry{ID: "e1", UserID: "u1", ActivityID: "a1", StartAt: start, EndAt: start.Add(time.Hour), DurationMin: 60}
	scheduler := &recordingScheduler{}
	svc := testEntryService(store, scheduler)

	badEnd := start.Add(-time.Minute)
	_, err := svc.Update(context.Background(), "u1", "e1", dto.UpdateEntryRequest{EndAt: &badEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidPeriod.Code, appErrors.FromError(err).Code)
	assert.Empty(t, scheduler.scheduled)
}

func TestEntryServiceUpdateRecomputesDuration(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Active: true}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.entries["e1"] = &models.Entry{ID: "e1", UserID: "u1", ActivityID: "a1", StartAt: start, EndAt: start.Add(time.Hour), DurationMin: 60}
	scheduler := &recordingScheduler{}
	svc := testEntryService(store, scheduler)

	newEnd := start.Add(2 * time.Hour)
	detail, err := svc.Update(context.Background(), "u1", "e1", dto.UpdateEntryRequest{EndAt: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, 120, detail.DurationMin)
	assert.Equal(t, []string{"u1"}, scheduler.scheduled)
}

func TestEntryServiceDeleteSchedulesRebuild(t *testing.T) {
	store := newMockEntryStore()
	store.activities["a1"] = &models.Activity{ID: "a1", UserID: "u1", Active: true}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.entries["e1"] = &models.Entry{ID: "e1", UserID: "u1", ActivityID: "a1", StartAt: start, EndAt: start.Add(time.Hour)}
	scheduler := &recordingScheduler{}
	svc := testEntryService(store, scheduler)

	require.NoError(t, svc.Delete(context.Background(), "u1", "e1"))
	assert.Equal(t, []string{"e1"}, store.deleted)
	assert.Equal(t, []string{"u1"}, scheduler.scheduled)
}
