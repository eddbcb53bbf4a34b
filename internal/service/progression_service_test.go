package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
)

type mockProgressionStore struct {
	configs  []models.AttributeConfig
	history  []models.EntryDetail
	progress map[string][]models.AttributeProgress
	deleted  []string
}

func newMockProgressionStore() *mockProgressionStore {
	return &mockProgressionStore{progress: map[string][]models.AttributeProgress{}}
}

func (m *mockProgressionStore) ListAllDetail(ctx context.Context, userID string) ([]models.EntryDetail, error) {
	return m.history, nil
}

func (m *mockProgressionStore) ListConfigs(ctx context.Context) ([]models.AttributeConfig, error) {
	return m.configs, nil
}

func (m *mockProgressionStore) ListProgress(ctx context.Context, userID string) ([]models.AttributeProgress, error) {
	return m.progress[userID], nil
}

func (m *mockProgressionStore) ReplaceProgress(ctx context.Context, userID string, progress []models.AttributeProgress) error {
	m.progress[userID] = progress
	return nil
}

func (m *mockProgressionStore) DeleteProgress(ctx context.Context, userID string) error {
	delete(m.progress, userID)
	m.deleted = append(m.deleted, userID)
	return nil
}

func entryAt(id string, start time.Time, minutes int, category string, weights models.WeightMap) models.EntryDetail {
	return models.EntryDetail{
		Entry: models.Entry{
			ID:          id,
			UserID:      "u1",
			ActivityID:  "a1",
			StartAt:     start,
			EndAt:       start.Add(time.Duration(minutes) * time.Minute),
			DurationMin: minutes,
			Origin:      engine.OriginManual,
		},
		Category: category,
		Polarity: engine.PolarityPositive,
		Weights:  weights,
	}
}

func testProgressionService(store *mockProgressionStore) *ProgressionService {
	return NewProgressionService(store, store, nil, nil, zap.NewNop(), ProgressionConfig{Location: time.UTC})
}

func TestProgressionRebuildPersistsStates(t *testing.T) {
	store := newMockProgressionStore()
	store.configs = []models.AttributeConfig{
		{Key: "knowledge", Unit: "min", PointsPerUnit: 0.1, DailySaturation: 240, ThresholdMin: 80, ThresholdMax: 160},
	}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.history = []models.EntryDetail{
		entryAt("e1", start, 120, "study", models.WeightMap{"knowledge": 1}),
	}
	svc := testProgressionService(store)

	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	progress := store.progress["u1"]
	require.Len(t, progress, 1)
	assert.Equal(t, "knowledge", progress[0].Attribute)
	// 120 min within saturation at 0.1 pt/min.
	assert.InDelta(t, 12.0, progress[0].RP, 1e-9)
	assert.Equal(t, 0, progress[0].Tier)
	assert.Equal(t, 0, progress[0].Subtier)
}

func TestProgressionRebuildIsIdempotent(t *testing.T) {
	store := newMockProgressionStore()
	store.configs = []models.AttributeConfig{
		{Key: "vitality", Unit: "min", PointsPerUnit: 0.2, DailySaturation: 60, ThresholdMin: 80, ThresholdMax: 160},
	}
	start := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	store.history = []models.EntryDetail{
		entryAt("e1", start, 60, "training", models.WeightMap{"vitality": 1}),
		entryAt("e2", start.Add(2*time.Hour), 60, "training", models.WeightMap{"vitality": 1}),
	}
	svc := testProgressionService(store)

	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	first := store.progress["u1"]
	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	second := store.progress["u1"]

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Tier, second[0].Tier)
	assert.Equal(t, first[0].Subtier, second[0].Subtier)
	assert.InDelta(t, first[0].RP, second[0].RP, 1e-9)
	// 60 full + 60 half-credited minutes at 0.2 pt/min.
	assert.InDelta(t, 18.0, first[0].RP, 1e-9)
}

func TestProgressionRebuildFallbackRatesForUnknownAttribute(t *testing.T) {
	store := newMockProgressionStore()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.history = []models.EntryDetail{
		entryAt("e1", start, 120, "social", models.WeightMap{"charisma": 1}),
	}
	svc := testProgressionService(store)

	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	progress := store.progress["u1"]
	require.Len(t, progress, 1)
	assert.Equal(t, "charisma", progress[0].Attribute)
	// No config row: fallback saturation 60 credits 60 full and 60 half
	// minutes, at the fallback 0.2 pt/min.
	assert.InDelta(t, 18.0, progress[0].RP, 1e-9)
}

func TestToActivityInputsBaseUnits(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	short := entryAt("e1", start, 0, "study", models.WeightMap{"knowledge": 1})
	inputs := toActivityInputs([]models.EntryDetail{short})
	require.Len(t, inputs, 1)
	// Sub-minute sessions still count as a single unit.
	assert.InDelta(t, 1.0, inputs[0].BaseUnits, 1e-9)

	override := 5.0
	counted := entryAt("e2", start, 90, "study", models.WeightMap{"knowledge": 1})
	counted.BaseUnits = &override
	inputs = toActivityInputs([]models.EntryDetail{counted})
	require.Len(t, inputs, 1)
	assert.InDelta(t, 5.0, inputs[0].BaseUnits, 1e-9)

	zero := 0.0
	ignored := entryAt("e3", start, 90, "study", models.WeightMap{"knowledge": 1})
	ignored.BaseUnits = &zero
	inputs = toActivityInputs([]models.EntryDetail{ignored})
	require.Len(t, inputs, 1)
	// A zero override is meaningless and yields the duration instead.
	assert.InDelta(t, 90.0, inputs[0].BaseUnits, 1e-9)
}

func TestProgressionRebuildUsesCategoryDefaults(t *testing.T) {
	store := newMockProgressionStore()
	store.configs = []models.AttributeConfig{
		{Key: "knowledge", Unit: "min", PointsPerUnit: 0.1, DailySaturation: 240, ThresholdMin: 80, ThresholdMax: 160},
	}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store.history = []models.EntryDetail{
		entryAt("e1", start, 100, "study", nil),
	}
	svc := testProgressionService(store)

	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	progress := store.progress["u1"]
	require.Len(t, progress, 1)
	assert.Equal(t, "knowledge", progress[0].Attribute)
	assert.InDelta(t, 10.0, progress[0].RP, 1e-9)
}

func TestProgressionRebuildSkipsNegativePolarity(t *testing.T) {
	store := newMockProgressionStore()
	store.configs = []models.AttributeConfig{
		{Key: "knowledge", Unit: "min", PointsPerUnit: 0.1, DailySaturation: 240, ThresholdMin: 80, ThresholdMax: 160},
	}
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	bad := entryAt("e1", start, 120, "study", models.WeightMap{"knowledge": 1})
	bad.Polarity = engine.PolarityNegative
	store.history = []models.EntryDetail{bad}
	svc := testProgressionService(store)

	require.NoError(t, svc.Rebuild(context.Background(), "u1"))
	assert.Empty(t, store.progress["u1"])
}

func TestProgressionThresholds(t *testing.T) {
	store := newMockProgressionStore()
	store.configs = []models.AttributeConfig{
		{Key: "knowledge", Unit: "min", PointsPerUnit: 0.1, DailySaturation: 300, ThresholdMin: 80, ThresholdMax: 160},
		{Key: "discipline", Unit: "event", PointsPerUnit: 1, DailySaturation: 3, ThresholdMin: 80, ThresholdMax: 160},
	}
	svc := testProgressionService(store)

	thresholds, err := svc.Thresholds(context.Background())
	require.NoError(t, err)
	// 0.1*300*7 = 210 clamps to 160; 1*3*7 = 21 clamps to 80.
	assert.InDelta(t, 160.0, thresholds["knowledge"], 1e-9)
	assert.InDelta(t, 80.0, thresholds["discipline"], 1e-9)
}

func TestProgressionReset(t *testing.T) {
	store := newMockProgressionStore()
	store.progress["u1"] = []models.AttributeProgress{{UserID: "u1", Attribute: "knowledge", Tier: 1}}
	svc := testProgressionService(store)

	require.NoError(t, svc.Reset(context.Background(), "u1"))
	assert.Empty(t, store.progress["u1"])
	assert.Equal(t, []string{"u1"}, store.deleted)
}
