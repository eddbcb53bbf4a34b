package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/leveling-api/internal/engine"
	"github.com/noah-isme/leveling-api/internal/models"
	appErrors "github.com/noah-isme/leveling-api/pkg/errors"
)

type analyticsEntryRepository interface {
	ListDetailTouching(ctx context.Context, userID string, from, to time.Time) ([]models.EntryDetail, error)
}

// AnalyticsService produces the calendar reporting views: per-day usage,
// coverage and normalized net score over a trailing window.
type AnalyticsService struct {
	entries    analyticsEntryRepository
	aggregator *engine.Aggregator
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cacheTTL   time.Duration
	loc        *time.Location
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(entries analyticsEntryRepository, aggregator *engine.Aggregator, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration, loc *time.Location) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aggregator == nil {
		aggregator = engine.NewAggregator(engine.AggregatorConfig{})
	}
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{
		entries:    entries,
		aggregator: aggregator,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		cacheTTL:   cacheTTL,
		loc:        loc,
	}
}

// Month returns the calendar view for one month. Sessions crossing the month
// boundaries contribute only the part that lands inside the month's days.
func (s *AnalyticsService) Month(ctx context.Context, filter models.MonthFilter) (*models.MonthView, error) {
	if filter.Year < 1970 || filter.Month < time.January || filter.Month > time.December {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}

	cacheKey := fmt.Sprintf("analytics:month:%s:%04d-%02d", filter.UserID, filter.Year, filter.Month)
	var cached models.MonthView
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	monthStart := time.Date(filter.Year, filter.Month, 1, 0, 0, 0, 0, s.loc)
	monthEnd := monthStart.AddDate(0, 1, 0)
	windowStart := s.aggregator.WindowStart(monthEnd)

	records, err := s.sessions(ctx, filter.UserID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	windowRecords, err := s.sessions(ctx, filter.UserID, windowStart, monthEnd)
	if err != nil {
		return nil, err
	}

	view := &models.MonthView{
		Year:        filter.Year,
		Month:       int(filter.Month),
		WindowStart: windowStart.In(s.loc).Format("2006-01-02"),
		Days:        s.aggregator.Month(records, windowRecords, filter.Year, filter.Month),
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, view, s.cacheTTL)
	}
	return view, nil
}

// Day returns the reporting record for a single calendar day.
func (s *AnalyticsService) Day(ctx context.Context, filter models.DayFilter) (*models.DayView, error) {
	day, err := time.ParseInLocation("2006-01-02", filter.Day, s.loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be formatted YYYY-MM-DD")
	}

	cacheKey := fmt.Sprintf("analytics:day:%s:%s", filter.UserID, filter.Day)
	var cached models.DayView
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	dayEnd := day.AddDate(0, 0, 1)
	windowStart := s.aggregator.WindowStart(dayEnd)

	records, err := s.sessions(ctx, filter.UserID, day, dayEnd)
	if err != nil {
		return nil, err
	}
	windowRecords, err := s.sessions(ctx, filter.UserID, windowStart, dayEnd)
	if err != nil {
		return nil, err
	}

	view := &models.DayView{
		WindowStart: windowStart.In(s.loc).Format("2006-01-02"),
		Summary:     s.aggregator.Day(records, windowRecords, day),
		GeneratedAt: time.Now().UTC(),
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, view, s.cacheTTL)
	}
	return view, nil
}

// SystemMetrics exposes the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) sessions(ctx context.Context, userID string, from, to time.Time) ([]engine.SessionRecord, error) {
	start := time.Now()
	details, err := s.entries.ListDetailTouching(ctx, userID, from, to)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("entries_touching", time.Since(start))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	return toSessionRecords(details), nil
}

// toSessionRecords maps entry rows to aggregation inputs. The weight sum is
// the unsigned magnitude of the activity's resolved weights; polarity is kept
// separate and applied by the aggregator. Sessions with no resolvable weights
// keep a zero weight sum, so they count toward time spent but not scoring.
func toSessionRecords(details []models.EntryDetail) []engine.SessionRecord {
	records := make([]engine.SessionRecord, 0, len(details))
	for _, detail := range details {
		weights := map[string]float64(detail.Weights)
		if len(weights) == 0 {
			weights = models.CategoryWeights(detail.Category)
		}
		var weightSum float64
		for _, w := range weights {
			if w > 0 {
				weightSum += w
			}
		}
		records = append(records, engine.SessionRecord{
			ID:        detail.ID,
			Category:  models.NormalizeCategory(detail.Category),
			Polarity:  detail.Polarity,
			Origin:    detail.Origin,
			Start:     detail.StartAt,
			End:       detail.EndAt,
			WeightSum: weightSum,
		})
	}
	return records
}
