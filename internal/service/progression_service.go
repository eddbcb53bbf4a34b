package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type progressionEntryRepository interface {
	ListAllDetail(ctx context.Context, userID string) ([]models.EntryDetail, error)
}

type progressionAttributeRepository interface {
	ListConfigs(ctx context.Context) ([]models.AttributeConfig, error)
	ListProgress(ctx context.Context, userID string) ([]models.AttributeProgress, error)
	ReplaceProgress(ctx context.Context, userID string, progress []models.AttributeProgress) error
	DeleteProgress(ctx context.Context, userID string) error
}

// ProgressionConfig tunes the progression engine.
type ProgressionConfig struct {
	DefaultThreshold       float64
	DefaultPointsPerUnit   float64
	DefaultDailySaturation float64
	Location               *time.Location
}

// ProgressionService maintains the per-user tier/subtier state derived from
// the entry history. State is always recomputed by replaying the history, so
// edits and deletes anywhere in the past stay consistent.
type ProgressionService struct {
	entries progressionEntryRepository
	attrs   progressionAttributeRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	config  ProgressionConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressionService constructs a ProgressionService.
func NewProgressionService(entries progressionEntryRepository, attrs progressionAttributeRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, config ProgressionConfig) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DefaultThreshold <= 0 {
		config.DefaultThreshold = engine.DefaultThreshold
	}
	if config.DefaultPointsPerUnit <= 0 {
		config.DefaultPointsPerUnit = engine.DefaultPointsPerUnit
	}
	if config.DefaultDailySaturation <= 0 {
		config.DefaultDailySaturation = engine.DefaultDailySaturation
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &ProgressionService{
		entries: entries,
		attrs:   attrs,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		config:  config,
		locks:   map[string]*sync.Mutex{},
	}
}

// Snapshot returns the persisted progression state of a user.
func (s *ProgressionService) Snapshot(ctx context.Context, userID string) ([]models.AttributeProgress, error) {
	cacheKey := fmt.Sprintf("progress:%s", userID)
	var cached []models.AttributeProgress
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	progress, err := s.attrs.ListProgress(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progression state")
	}
	if progress == nil {
		progress = []models.AttributeProgress{}
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, progress, 0)
	}
	return progress, nil
}

// Thresholds returns the promotion threshold per configured attribute.
func (s *ProgressionService) Thresholds(ctx context.Context) (map[string]float64, error) {
	configs, err := s.attrs.ListConfigs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attribute configs")
	}
	out := make(map[string]float64, len(configs))
	for _, cfg := range configs {
		out[cfg.Key] = engine.AttributeConfig{
			PointsPerUnit:   cfg.PointsPerUnit,
			DailySaturation: cfg.DailySaturation,
			ThresholdMin:    cfg.ThresholdMin,
			ThresholdMax:    cfg.ThresholdMax,
		}.Threshold()
	}
	return out, nil
}

// Rebuild replays the full entry history of a user and swaps in the
// resulting state. Concurrent rebuilds for the same user are serialized.
func (s *ProgressionService) Rebuild(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	outcome := "success"
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveRebuild(outcome, time.Since(start))
		}
	}()

	configs, err := s.attrs.ListConfigs(ctx)
	if err != nil {
		outcome = "error"
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attribute configs")
	}
	history, err := s.entries.ListAllDetail(ctx, userID)
	if err != nil {
		outcome = "error"
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load entry history")
	}

	tracker := engine.NewTracker(toEngineConfigs(configs),
		engine.WithDefaultThreshold(s.config.DefaultThreshold),
		engine.WithFallbackRates(s.config.DefaultPointsPerUnit, s.config.DefaultDailySaturation),
		engine.WithLocation(s.config.Location),
	)
	tracker.RebuildFromHistory(toActivityInputs(history))

	progress := make([]models.AttributeProgress, 0, len(tracker.States()))
	for attr, state := range tracker.States() {
		progress = append(progress, models.AttributeProgress{
			UserID:     userID,
			Attribute:  attr,
			Tier:       state.Tier,
			Subtier:    state.Subtier,
			RP:         state.RP,
			LastUpdate: state.LastUpdate,
			PromotedAt: state.PromotedAt,
		})
	}

	if err := s.attrs.ReplaceProgress(ctx, userID, progress); err != nil {
		outcome = "error"
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist progression state")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s*", userID))
	}

	s.logger.Info("progression rebuilt",
		zap.String("user_id", userID),
		zap.Int("entries", len(history)),
		zap.Int("attributes", len(progress)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Reset clears the progression state of a user.
func (s *ProgressionService) Reset(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.attrs.DeleteProgress(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset progression state")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("progress:%s*", userID))
	}
	return nil
}

func (s *ProgressionService) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[userID]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[userID] = lock
	return lock
}

func toEngineConfigs(configs []models.AttributeConfig) map[string]engine.AttributeConfig {
	out := make(map[string]engine.AttributeConfig, len(configs))
	for _, cfg := range configs {
		out[cfg.Key] = engine.AttributeConfig{
			Unit:            cfg.Unit,
			PointsPerUnit:   cfg.PointsPerUnit,
			DailySaturation: cfg.DailySaturation,
			ThresholdMin:    cfg.ThresholdMin,
			ThresholdMax:    cfg.ThresholdMax,
		}
	}
	return out
}

// toActivityInputs normalizes entry rows for the progression replay. Weights
// fall back to the category defaults when the activity carries none, and
// negative-polarity entries never feed progression. Base units take the
// explicit override when it is positive, otherwise the duration in minutes,
// otherwise 1 so sub-minute entries still count once.
func toActivityInputs(history []models.EntryDetail) []engine.ActivityInput {
	inputs := make([]engine.ActivityInput, 0, len(history))
	for _, detail := range history {
		if detail.Polarity == engine.PolarityNegative {
			continue
		}
		weights := map[string]float64(detail.Weights)
		if len(weights) == 0 {
			weights = models.CategoryWeights(detail.Category)
		}
		if len(weights) == 0 {
			continue
		}
		baseUnits := float64(detail.DurationMin)
		if baseUnits <= 0 {
			baseUnits = 1
		}
		if detail.BaseUnits != nil && *detail.BaseUnits > 0 {
			baseUnits = *detail.BaseUnits
		}
		inputs = append(inputs, engine.ActivityInput{
			ID:        detail.ID,
			Timestamp: detail.StartAt,
			BaseUnits: baseUnits,
			Weights:   weights,
			Caps:      detail.Caps,
		})
	}
	return inputs
}
